package builder

import (
	"cuml/internal/errors"
	"cuml/internal/uml"
)

// applyCompliance is the final gate before the model leaves the pipeline.
// It re-checks structural invariants the inference phases are supposed to
// uphold, drops anything that fails with a diagnostic, and prunes synthetic
// placeholders nothing ended up referencing. Only a duplicated operation
// identity is treated as fatal: that means the registry itself was bypassed.
func (p *Pipeline) applyCompliance() error {
	p.filterAssociations()
	p.stripRootVisibility()
	if err := p.checkOperationIdentities(); err != nil {
		return err
	}
	p.pruneUnreferencedStubs()
	return nil
}

func (p *Pipeline) filterAssociations() {
	kept := p.model.Associations[:0]
	for _, assoc := range p.model.Associations {
		if len(assoc.Ends) < 2 {
			p.diag(errors.DegenerateAssociation, assoc.Name,
				"association finalized with fewer than two ends; dropped")
			continue
		}
		a, b := assoc.Ends[0], assoc.Ends[1]
		if a.ID == b.ID || (a.Element == b.Element && a.Role == b.Role) {
			a.Opposite, b.Opposite = "", ""
			p.diag(errors.DegenerateAssociation, assoc.Name,
				"association ends are not distinct; dropped")
			continue
		}
		kept = append(kept, assoc)
	}
	p.model.Associations = kept
}

// stripRootVisibility clears the visibility attribute on elements owned
// directly by the model root, where it must not be serialized at all.
func (p *Pipeline) stripRootVisibility() {
	for _, e := range p.model.Elements {
		if e.Namespace != nil && e.Namespace.IsRoot() {
			e.Visibility = ""
		}
	}
}

// checkOperationIdentities verifies that no two operations of the same class
// share an id. The ordinal folded into every operation key makes collisions
// impossible through the normal path, so a hit here is an internal fault.
func (p *Pipeline) checkOperationIdentities() error {
	for _, e := range p.model.Elements {
		seen := make(map[string]string, len(e.Operations))
		for _, op := range e.Operations {
			if prior, dup := seen[op.ID]; dup {
				return errors.New(errors.DuplicateIdentity,
					"operations "+prior+" and "+op.Signature+" of "+e.QualifiedName+" share an id", nil).
					WithDetails(map[string]string{"id": op.ID, "class": e.QualifiedName})
			}
			seen[op.ID] = op.Signature
		}
	}
	return nil
}

// pruneUnreferencedStubs compacts away synthetic placeholder elements that
// no surviving relationship or type reference points at.
func (p *Pipeline) pruneUnreferencedStubs() {
	referenced := make(map[string]struct{})
	mark := func(id string) {
		if id != "" {
			referenced[id] = struct{}{}
		}
	}
	for _, assoc := range p.model.Associations {
		for _, end := range assoc.Ends {
			mark(end.Element)
		}
	}
	for _, dep := range p.model.Dependencies {
		mark(dep.Client)
		mark(dep.Supplier)
	}
	for _, gen := range p.model.Generalizations {
		mark(gen.Specific)
		mark(gen.General)
	}
	for _, e := range p.model.Elements {
		if e.Synthetic {
			continue
		}
		mark(e.UnderlyingRef)
		for _, m := range e.MembersInOrder() {
			mark(m.TypeRef)
		}
		for _, op := range e.Operations {
			mark(op.ReturnRef)
			for _, param := range op.Parameters {
				mark(param.TypeRef)
			}
		}
	}

	p.model.Compact(func(e *uml.Element) bool {
		if !e.Synthetic {
			return true
		}
		_, ok := referenced[e.ID]
		if !ok {
			p.log.Debug("pruned unreferenced placeholder", "type", e.QualifiedName)
		}
		return ok
	})
}
