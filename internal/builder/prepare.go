package builder

import (
	"strings"

	"cuml/internal/cpptype"
	"cuml/internal/errors"
	"cuml/internal/facts"
	"cuml/internal/identity"
	"cuml/internal/uml"
)

// prepareElements creates one empty model node per input type, with identity
// and namespace placement, before any detail is attached.
func (p *Pipeline) prepareElements(fs *facts.FactSet) error {
	for i := range fs.Types {
		fact := &fs.Types[i]
		qname := fact.BestName()

		var id string
		if qname == "" {
			// A record with no name at all cannot have a content-derived id.
			id = identity.Fallback()
			qname = "anonymous_" + strings.TrimPrefix(id, "id_")[:8]
		} else {
			if p.model.ElementByQualifiedName(qname) != nil {
				p.diag(errors.FactsInvalid, qname, "duplicate type record skipped")
				continue
			}
			claimed, err := p.reg.Claim("type:" + qname)
			if err != nil {
				return err
			}
			id = claimed
		}

		segments := fact.Namespace
		simple := qname
		if len(segments) == 0 {
			segments, simple = cpptype.SplitQualifiedName(qname)
		} else {
			_, simple = cpptype.SplitQualifiedName(qname)
		}

		ns := p.model.Root.EnsurePath(segments)
		el := &uml.Element{
			ID:            id,
			Name:          simple,
			QualifiedName: qname,
			Kind:          kindOf(fact),
			IsAbstract:    fact.IsAbstract,
		}
		if !ns.IsRoot() {
			el.Visibility = uml.ParseVisibility(fact.Visibility, uml.VisibilityPublic)
		}
		ns.Attach(el)
		p.model.AddElement(el)
		p.prepared = append(p.prepared, prepared{fact: fact, el: el})
	}
	return nil
}

// kindOf maps analyzer kind spellings onto the model's element kinds.
// Interfaces become classes, typedefs and structs become datatypes, matching
// how the target tool renders them.
func kindOf(fact *facts.TypeFact) uml.ElementKind {
	kind := strings.ToLower(fact.Kind)
	switch {
	case strings.Contains(kind, "enum"):
		return uml.KindEnumeration
	case strings.Contains(kind, "typedef"), strings.Contains(kind, "alias"):
		return uml.KindDataType
	case strings.Contains(kind, "interface"):
		return uml.KindClass
	case strings.Contains(kind, "struct"), strings.Contains(kind, "datatype"):
		return uml.KindDataType
	default:
		return uml.KindClass
	}
}
