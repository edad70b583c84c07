// Package notation renders a diagram placement file next to the XMI output:
// one shape node per packaged classifier, laid out on a fixed grid. The grid
// is purely positional; routing and styling are left to the consuming editor.
package notation

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cuml/internal/config"
	"cuml/internal/identity"
	"cuml/internal/uml"
)

const notationNS = "http://www.eclipse.org/gmf/runtime/1.0.2/notation"

// Writer lays the model's elements onto a grid and serializes the diagram.
type Writer struct {
	model  *uml.Model
	layout config.LayoutConfig
}

func NewWriter(model *uml.Model, layout config.LayoutConfig) *Writer {
	return &Writer{model: model, layout: layout}
}

// Write serializes the diagram to w. Elements appear in arena order, so the
// grid placement is reproducible for identical models.
func (wr *Writer) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "notation:Diagram"},
		Attr: []xml.Attr{
			attr("xmi:version", "2.1"),
			attr("xmlns:xmi", "http://schema.omg.org/spec/XMI/2.1"),
			attr("xmlns:notation", notationNS),
			attr("xmi:id", identity.For("diagram:"+wr.model.Name)),
			attr("name", wr.model.Name),
			attr("type", "Class"),
			attr("measurementUnit", "Pixel"),
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	for i, el := range wr.model.Elements {
		if err := wr.writeShape(enc, i, el); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func (wr *Writer) writeShape(enc *xml.Encoder, index int, el *uml.Element) error {
	x, y := wr.layout.Position(index)

	shape := xml.StartElement{
		Name: xml.Name{Local: "children"},
		Attr: []xml.Attr{
			attr("xmi:type", "notation:Shape"),
			attr("xmi:id", identity.For("shape:"+el.ID)),
			attr("type", shapeType(el.Kind)),
			attr("elementRef", el.ID),
		},
	}
	if err := enc.EncodeToken(shape); err != nil {
		return err
	}

	bounds := xml.StartElement{
		Name: xml.Name{Local: "layoutConstraint"},
		Attr: []xml.Attr{
			attr("xmi:type", "notation:Bounds"),
			attr("xmi:id", identity.For("bounds:"+el.ID)),
			attr("x", strconv.Itoa(x)),
			attr("y", strconv.Itoa(y)),
			attr("width", strconv.Itoa(wr.layout.Width)),
			attr("height", strconv.Itoa(wr.layout.Height)),
		},
	}
	if err := enc.EncodeToken(bounds); err != nil {
		return err
	}
	if err := enc.EncodeToken(bounds.End()); err != nil {
		return err
	}
	return enc.EncodeToken(shape.End())
}

func shapeType(kind uml.ElementKind) string {
	switch kind {
	case uml.KindEnumeration:
		return "Enumeration"
	case uml.KindDataType:
		return "DataType"
	default:
		return "Class"
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Marshal renders the diagram to a string.
func Marshal(model *uml.Model, layout config.LayoutConfig) (string, error) {
	var sb strings.Builder
	if err := NewWriter(model, layout).Write(&sb); err != nil {
		return "", fmt.Errorf("notation: %w", err)
	}
	return sb.String(), nil
}
