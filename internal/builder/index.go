package builder

import (
	"cuml/internal/cpptype"
	"cuml/internal/uml"
)

// nameIndex is the by-qualified-name lookup consumed by relationship
// inference. Registration order is preserved so suffix matching over the
// known-name list stays deterministic.
type nameIndex struct {
	order   []string
	byQName map[string]*uml.Element
}

func newNameIndex() *nameIndex {
	return &nameIndex{byQName: make(map[string]*uml.Element)}
}

func (ix *nameIndex) register(e *uml.Element) {
	if e.QualifiedName == "" {
		return
	}
	if _, dup := ix.byQName[e.QualifiedName]; dup {
		return
	}
	ix.byQName[e.QualifiedName] = e
	ix.order = append(ix.order, e.QualifiedName)
}

// matchAll resolves every known element referenced anywhere in a raw type
// expression, in match order: the outer type first, then nested template
// arguments.
func (ix *nameIndex) matchAll(raw string) []*uml.Element {
	if raw == "" {
		return nil
	}
	if e, ok := ix.byQName[raw]; ok {
		return []*uml.Element{e}
	}
	tokens := cpptype.ExtractIdentifiers(raw)
	names := cpptype.MatchKnown(tokens, ix.order)
	out := make([]*uml.Element, 0, len(names))
	for _, n := range names {
		out = append(out, ix.byQName[n])
	}
	return out
}

// resolve returns the primary (first) match for a raw type expression, or
// nil when nothing is known under that name.
func (ix *nameIndex) resolve(raw string) *uml.Element {
	matches := ix.matchAll(raw)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}
