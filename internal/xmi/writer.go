// Package xmi serializes a UML model into XMI 2.1 as consumed by Eclipse
// UML2 based tooling. The writer walks the namespace tree depth-first and
// emits elements in arena order within each package, so output is
// byte-for-byte reproducible for identical models.
package xmi

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"cuml/internal/identity"
	"cuml/internal/uml"
)

const (
	xmiNS = "http://schema.omg.org/spec/XMI/2.1"
	umlNS = "http://www.eclipse.org/uml2/3.0.0/UML"

	// ownershipSource marks associations carrying synthesized owned ends.
	ownershipSource = "ownership"
)

// Writer emits one model. It is single-use: Write may only be called once.
type Writer struct {
	model *uml.Model
	enc   *xml.Encoder
}

func NewWriter(model *uml.Model) *Writer {
	return &Writer{model: model}
}

// Write serializes the model to w, indented for diffability.
func (wr *Writer) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	wr.enc = xml.NewEncoder(w)
	wr.enc.Indent("", "  ")

	root := start("xmi:XMI",
		attr("xmi:version", "2.1"),
		attr("xmlns:xmi", xmiNS),
		attr("xmlns:uml", umlNS))
	if err := wr.enc.EncodeToken(root); err != nil {
		return err
	}

	if err := wr.writeModel(); err != nil {
		return err
	}

	if err := wr.enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return wr.enc.Flush()
}

func (wr *Writer) writeModel() error {
	m := start("uml:Model",
		attr("xmi:id", identity.For("model:"+wr.model.Name)),
		attr("name", wr.model.Name))
	if err := wr.enc.EncodeToken(m); err != nil {
		return err
	}

	if err := wr.writeNamespace(wr.model.Root); err != nil {
		return err
	}
	for _, assoc := range wr.model.Associations {
		if err := wr.writeAssociation(assoc); err != nil {
			return err
		}
	}
	for _, dep := range wr.model.Dependencies {
		if err := wr.writeDependency(dep); err != nil {
			return err
		}
	}

	return wr.enc.EncodeToken(m.End())
}

// writeNamespace emits the elements attached to ns, then recurses into child
// packages. The root node itself produces no package wrapper.
func (wr *Writer) writeNamespace(ns *uml.Namespace) error {
	for _, el := range ns.Elements {
		if err := wr.writeElement(el); err != nil {
			return err
		}
	}
	for _, child := range ns.Children() {
		pkg := start("packagedElement",
			attr("xmi:type", "uml:Package"),
			attr("xmi:id", identity.For("package:"+strings.Join(child.Path(), "::"))),
			attr("name", child.Name))
		if err := wr.enc.EncodeToken(pkg); err != nil {
			return err
		}
		if err := wr.writeNamespace(child); err != nil {
			return err
		}
		if err := wr.enc.EncodeToken(pkg.End()); err != nil {
			return err
		}
	}
	return nil
}

func umlType(kind uml.ElementKind) string {
	switch kind {
	case uml.KindEnumeration:
		return "uml:Enumeration"
	case uml.KindDataType:
		return "uml:DataType"
	default:
		return "uml:Class"
	}
}

func (wr *Writer) writeElement(el *uml.Element) error {
	attrs := []xml.Attr{
		attr("xmi:type", umlType(el.Kind)),
		attr("xmi:id", el.ID),
		attr("name", el.Name),
	}
	if el.Visibility != "" {
		attrs = append(attrs, attr("visibility", string(el.Visibility)))
	}
	if el.IsAbstract {
		attrs = append(attrs, attr("isAbstract", "true"))
	}
	node := start("packagedElement", attrs...)
	if err := wr.enc.EncodeToken(node); err != nil {
		return err
	}

	for _, m := range el.MembersInOrder() {
		if err := wr.writeAttribute(el, m); err != nil {
			return err
		}
	}
	for _, op := range el.Operations {
		if err := wr.writeOperation(op); err != nil {
			return err
		}
	}
	for _, lit := range el.Literals {
		if err := wr.writeEmpty("ownedLiteral",
			attr("xmi:id", identity.For("literal:"+el.QualifiedName+"::"+lit)),
			attr("name", lit)); err != nil {
			return err
		}
	}
	for _, gen := range wr.model.GeneralizationsOf(el.ID) {
		if err := wr.writeEmpty("generalization",
			attr("xmi:id", gen.ID),
			attr("general", gen.General)); err != nil {
			return err
		}
	}

	return wr.enc.EncodeToken(node.End())
}

func (wr *Writer) writeAttribute(owner *uml.Element, m *uml.Member) error {
	attrs := []xml.Attr{
		attr("xmi:id", identity.For("attr:" + owner.QualifiedName + "::" + m.Name)),
		attr("name", m.Name),
	}
	if m.Visibility != "" {
		attrs = append(attrs, attr("visibility", string(m.Visibility)))
	}
	if m.TypeRef != "" {
		attrs = append(attrs, attr("type", m.TypeRef))
	}
	if m.IsStatic {
		attrs = append(attrs, attr("isStatic", "true"))
	}
	node := start("ownedAttribute", attrs...)
	if err := wr.enc.EncodeToken(node); err != nil {
		return err
	}
	if err := wr.writeBounds(identity.For("attr:"+owner.QualifiedName+"::"+m.Name), m.Multiplicity); err != nil {
		return err
	}
	return wr.enc.EncodeToken(node.End())
}

func (wr *Writer) writeOperation(op *uml.Operation) error {
	attrs := []xml.Attr{
		attr("xmi:id", op.ID),
		attr("name", op.Name),
	}
	if op.Visibility != "" {
		attrs = append(attrs, attr("visibility", string(op.Visibility)))
	}
	if op.IsStatic {
		attrs = append(attrs, attr("isStatic", "true"))
	}
	if op.IsAbstract {
		attrs = append(attrs, attr("isAbstract", "true"))
	}
	node := start("ownedOperation", attrs...)
	if err := wr.enc.EncodeToken(node); err != nil {
		return err
	}

	for i, p := range op.Parameters {
		pattrs := []xml.Attr{
			attr("xmi:id", identity.ForOrdinal(op.ID+":param:"+p.Name, i)),
		}
		if p.Name != "" {
			pattrs = append(pattrs, attr("name", p.Name))
		}
		if p.TypeRef != "" {
			pattrs = append(pattrs, attr("type", p.TypeRef))
		}
		pattrs = append(pattrs, attr("direction", p.Direction))
		if err := wr.writeEmpty("ownedParameter", pattrs...); err != nil {
			return err
		}
	}
	if op.ReturnType != "" {
		rattrs := []xml.Attr{
			attr("xmi:id", identity.For(op.ID + ":return")),
		}
		if op.ReturnRef != "" {
			rattrs = append(rattrs, attr("type", op.ReturnRef))
		}
		rattrs = append(rattrs, attr("direction", "return"))
		if err := wr.writeEmpty("ownedParameter", rattrs...); err != nil {
			return err
		}
	}

	return wr.enc.EncodeToken(node.End())
}

func (wr *Writer) writeAssociation(assoc *uml.Association) error {
	ids := make([]string, len(assoc.Ends))
	for i, end := range assoc.Ends {
		ids[i] = end.ID
	}
	node := start("packagedElement",
		attr("xmi:type", "uml:Association"),
		attr("xmi:id", assoc.ID),
		attr("name", assoc.Name),
		attr("memberEnd", strings.Join(ids, " ")))
	if err := wr.enc.EncodeToken(node); err != nil {
		return err
	}

	if assoc.OwnershipAnnotated {
		ann := start("eAnnotations",
			attr("xmi:id", identity.For("ann:"+assoc.ID)),
			attr("source", ownershipSource))
		if err := wr.enc.EncodeToken(ann); err != nil {
			return err
		}
		if err := wr.enc.EncodeToken(ann.End()); err != nil {
			return err
		}
	}

	for _, end := range assoc.Ends {
		attrs := []xml.Attr{
			attr("xmi:id", end.ID),
			attr("name", end.Role),
			attr("type", end.Element),
			attr("association", assoc.ID),
		}
		if end.Aggregation != uml.AggregationNone {
			attrs = append(attrs, attr("aggregation", string(end.Aggregation)))
		}
		endNode := start("ownedEnd", attrs...)
		if err := wr.enc.EncodeToken(endNode); err != nil {
			return err
		}
		if err := wr.writeBounds(end.ID, end.Multiplicity); err != nil {
			return err
		}
		if err := wr.enc.EncodeToken(endNode.End()); err != nil {
			return err
		}
	}

	return wr.enc.EncodeToken(node.End())
}

// writeBounds emits lowerValue/upperValue for a multiplicity: 1..1 for
// single-valued ends, 0..* for collections.
func (wr *Writer) writeBounds(ownerID string, mult uml.Multiplicity) error {
	lower, upper := "1", "1"
	if mult == uml.MultMany {
		lower, upper = "0", "*"
	}
	if err := wr.writeEmpty("lowerValue",
		attr("xmi:type", "uml:LiteralInteger"),
		attr("xmi:id", identity.For("lower:"+ownerID)),
		attr("value", lower)); err != nil {
		return err
	}
	return wr.writeEmpty("upperValue",
		attr("xmi:type", "uml:LiteralUnlimitedNatural"),
		attr("xmi:id", identity.For("upper:"+ownerID)),
		attr("value", upper))
}

func (wr *Writer) writeDependency(dep *uml.Dependency) error {
	return wr.writeEmpty("packagedElement",
		attr("xmi:type", "uml:Dependency"),
		attr("xmi:id", dep.ID),
		attr("name", dep.Name),
		attr("client", dep.Client),
		attr("supplier", dep.Supplier))
}

func (wr *Writer) writeEmpty(name string, attrs ...xml.Attr) error {
	node := start(name, attrs...)
	if err := wr.enc.EncodeToken(node); err != nil {
		return err
	}
	return wr.enc.EncodeToken(node.End())
}

func start(name string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Marshal is a convenience wrapper rendering the model to a string, used by
// tests and the inspect command.
func Marshal(model *uml.Model) (string, error) {
	var sb strings.Builder
	if err := NewWriter(model).Write(&sb); err != nil {
		return "", fmt.Errorf("xmi: %w", err)
	}
	return sb.String(), nil
}
