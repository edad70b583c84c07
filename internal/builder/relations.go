package builder

import (
	"fmt"
	"strings"

	"cuml/internal/cpptype"
	"cuml/internal/errors"
	"cuml/internal/identity"
	"cuml/internal/uml"
)

// resolveMemberTypes fills each member's type reference from the known
// elements and settles its multiplicity: containers and arrays imply *
// toward the element type, everything else stays at the default 1.
func (p *Pipeline) resolveMemberTypes() {
	for _, pr := range p.prepared {
		for _, m := range pr.el.MembersInOrder() {
			if m.Raw == "" {
				continue
			}
			an := cpptype.Analyze(m.Raw)
			if p.opts.Profile.IsContainer(an.TemplateBase) || an.IsArray {
				m.Multiplicity = uml.MultMany
			}
			if tgt := p.index.resolve(m.Raw); tgt != nil {
				m.TypeRef = tgt.ID
			}
		}
	}
}

// inferFieldAssociations derives one association per (owner field, known
// target element) pair: aggregation from the field's pointer/ownership
// shape, multiplicity from its container shape, opposite linking when the
// target declares a matching partner field.
func (p *Pipeline) inferFieldAssociations() {
	for _, pr := range p.prepared {
		owner := pr.el
		for _, m := range owner.MembersInOrder() {
			if m.Raw == "" {
				continue
			}
			if _, done := p.consumed[owner.ID+"|"+m.Name]; done {
				continue
			}
			an := cpptype.Analyze(m.Raw)
			aggr := p.classifyField(an)
			for _, tgt := range p.index.matchAll(m.Raw) {
				p.addFieldAssociation(owner, m, tgt, aggr, m.Multiplicity)
			}
		}
	}
}

// classifyField maps a field's type shape onto an aggregation kind: owning
// smart pointers are composite, other smart pointers and raw pointer or
// reference fields are shared, plain value fields are none.
func (p *Pipeline) classifyField(an cpptype.Analysis) uml.Aggregation {
	if p.opts.Profile.IsSmartPointer(an.TemplateBase) {
		if p.opts.Profile.IsOwningPointer(an.TemplateBase) {
			return uml.AggregationComposite
		}
		return uml.AggregationShared
	}
	if an.IsPointer || an.IsReference || an.IsRValueRef {
		return uml.AggregationShared
	}
	return uml.AggregationNone
}

func (p *Pipeline) addFieldAssociation(owner *uml.Element, m *uml.Member, tgt *uml.Element, aggr uml.Aggregation, mult uml.Multiplicity) {
	opp := p.findOpposite(owner, m, tgt)

	key := "assoc:" + owner.QualifiedName + ":" + m.Name + ":" + tgt.QualifiedName
	name := owner.QualifiedName + "::" + m.Name + "->" + tgt.QualifiedName
	if opp != nil {
		key += ":" + opp.Name
		name += "::" + opp.Name
	}

	src := &uml.MemberEnd{
		ID:           identity.For(key + ":end:" + owner.ID + ":" + m.Name),
		Element:      owner.ID,
		Role:         m.Name,
		Aggregation:  aggr,
		Multiplicity: uml.MultOne,
		Ownership:    uml.OwnershipClass,
	}

	var dst *uml.MemberEnd
	switch {
	case opp != nil:
		dst = &uml.MemberEnd{
			ID:           identity.For(key + ":end:" + tgt.ID + ":" + opp.Name),
			Element:      tgt.ID,
			Role:         opp.Name,
			Aggregation:  uml.AggregationNone,
			Multiplicity: mult,
			Ownership:    uml.OwnershipClass,
		}
	case !p.opts.Strict:
		role := expectedRole(owner)
		dst = &uml.MemberEnd{
			ID:           identity.For(key + ":end:" + tgt.ID + ":" + role),
			Element:      tgt.ID,
			Role:         role,
			Aggregation:  uml.AggregationNone,
			Multiplicity: mult,
			Ownership:    uml.OwnershipOwnedEnd,
		}
	default:
		// Strict mode suppresses owned-end synthesis; with only one usable
		// end the association cannot be finalized.
		return
	}

	assoc := &uml.Association{
		ID:   identity.For(key),
		Name: name,
		Ends: []*uml.MemberEnd{src, dst},
	}
	if dst.Ownership == uml.OwnershipOwnedEnd {
		assoc.OwnershipAnnotated = p.opts.OwnershipAnnotations
	}
	if opp != nil {
		src.Opposite = dst.ID
		dst.Opposite = src.ID
	}

	if !p.admitAssociation(assoc) {
		return
	}
	if opp != nil {
		p.consumed[tgt.ID+"|"+opp.Name] = struct{}{}
	}
	p.classOwnedPairs[pairKey(owner.ID, tgt.ID)] = struct{}{}
}

// findOpposite looks for a field on the target whose resolved type is the
// owner and whose role matches the opposite convention: an explicit
// oppositeRole hint on either field wins, otherwise the target field must be
// named after the owner. Opposite ends are only linked when both are real
// fields.
func (p *Pipeline) findOpposite(owner *uml.Element, m *uml.Member, tgt *uml.Element) *uml.Member {
	if tgt.ID == owner.ID {
		// A self-referential field cannot be its own opposite.
		return nil
	}
	expected := expectedRole(owner)
	for _, tm := range tgt.MembersInOrder() {
		if tm.TypeRef != owner.ID {
			continue
		}
		if tm.OppositeRole == m.Name || (m.OppositeRole != "" && m.OppositeRole == tm.Name) {
			return tm
		}
		if tm.OppositeRole == "" && m.OppositeRole == "" && tm.Name == expected {
			return tm
		}
	}
	return nil
}

// admitAssociation applies the degeneracy checks and registers the
// association. Dropped associations leave no dangling opposite links.
func (p *Pipeline) admitAssociation(assoc *uml.Association) bool {
	if len(assoc.Ends) < 2 {
		return false
	}
	a, b := assoc.Ends[0], assoc.Ends[1]
	if a.ID == b.ID || (a.Element == b.Element && a.Role == b.Role) {
		a.Opposite, b.Opposite = "", ""
		p.diag(errors.DegenerateAssociation, assoc.Name,
			"association ends collapse onto the same element and role")
		return false
	}
	for _, end := range assoc.Ends {
		if err := p.reg.AssertUnique(end.ID, "member-ends"); err != nil {
			a.Opposite, b.Opposite = "", ""
			p.diag(errors.DegenerateAssociation, assoc.Name,
				"duplicate member-end identity")
			return false
		}
	}
	p.model.Associations = append(p.model.Associations, assoc)
	p.assocPairs[pairKey(a.Element, b.Element)] = struct{}{}
	return true
}

// inferDeclaredRelations models analyzer-supplied relations that have no
// field backing on either side: both ends are synthetic. A class-owned
// association between the same pair always wins the tie-break.
func (p *Pipeline) inferDeclaredRelations() {
	for _, pr := range p.prepared {
		owner := pr.el
		for _, rel := range pr.fact.Relations {
			if rel.Target == "" {
				continue
			}
			tgt := p.index.resolve(rel.Target)
			if tgt == nil {
				if !p.opts.PlaceholderStubs {
					p.diag(errors.UnresolvableTypeReference, owner.QualifiedName,
						fmt.Sprintf("relation target %q matches no known type", rel.Target))
					continue
				}
				tgt = p.ensureStub(rel.Target)
			}
			if p.hasFieldBetween(owner, tgt) || p.hasFieldBetween(tgt, owner) {
				// Field-backed sides are covered by field association
				// inference.
				continue
			}
			if p.opts.Strict {
				// Both ends would be synthetic, which strict mode forbids.
				continue
			}
			if _, owned := p.classOwnedPairs[pairKey(owner.ID, tgt.ID)]; owned {
				p.diag(errors.RelationSuppressed,
					owner.QualifiedName+"->"+tgt.QualifiedName,
					"non-field relation suppressed by class-owned association")
				continue
			}

			role := rel.Role
			if role == "" {
				role = expectedRole(tgt)
			}
			backRole := expectedRole(owner)
			key := "rel:" + owner.QualifiedName + ":" + role + ":" + tgt.QualifiedName
			assoc := &uml.Association{
				ID:   identity.For(key),
				Name: owner.QualifiedName + "::" + role + "->" + tgt.QualifiedName,
				Ends: []*uml.MemberEnd{
					{
						ID:           identity.For(key + ":end:" + owner.ID + ":" + role),
						Element:      owner.ID,
						Role:         role,
						Aggregation:  uml.AggregationNone,
						Multiplicity: uml.MultOne,
						Ownership:    uml.OwnershipOwnedEnd,
					},
					{
						ID:           identity.For(key + ":end:" + tgt.ID + ":" + backRole),
						Element:      tgt.ID,
						Role:         backRole,
						Aggregation:  uml.AggregationNone,
						Multiplicity: uml.MultOne,
						Ownership:    uml.OwnershipOwnedEnd,
					},
				},
				OwnershipAnnotated: p.opts.OwnershipAnnotations,
			}
			p.admitAssociation(assoc)
		}
	}
}

func (p *Pipeline) hasFieldBetween(from, to *uml.Element) bool {
	for _, m := range from.MembersInOrder() {
		if m.TypeRef == to.ID {
			return true
		}
	}
	return false
}

// resolveExternalReferences resolves operation return and parameter types,
// plus members still unresolved after the element pass. Unknown names get a
// placeholder stub when stubs are enabled; otherwise the raw name string is
// kept and the reference stays unresolved.
func (p *Pipeline) resolveExternalReferences() {
	for _, pr := range p.prepared {
		for _, m := range pr.el.MembersInOrder() {
			if m.Raw != "" && m.TypeRef == "" {
				m.TypeRef = p.refFor(pr.el, m.Raw)
			}
		}
		for _, op := range pr.el.Operations {
			if op.ReturnType != "" && op.ReturnRef == "" {
				op.ReturnRef = p.refFor(pr.el, op.ReturnType)
			}
			for i := range op.Parameters {
				param := &op.Parameters[i]
				if param.TypeName != "" && param.TypeRef == "" {
					param.TypeRef = p.refFor(pr.el, param.TypeName)
				}
			}
		}
	}
}

func (p *Pipeline) refFor(owner *uml.Element, raw string) string {
	if tgt := p.index.resolve(raw); tgt != nil {
		return tgt.ID
	}
	display := p.displayType(raw)
	if display == "" {
		return ""
	}
	if !p.opts.PlaceholderStubs {
		p.diag(errors.UnresolvableTypeReference, owner.QualifiedName,
			fmt.Sprintf("type %q matches no known element", display))
		return ""
	}
	return p.ensureStub(display).ID
}

// ensureStub returns the placeholder datatype for an undefined external
// type, creating it on first use. Stubs are synthetic and are pruned by the
// compliance filter if nothing ends up referencing them.
func (p *Pipeline) ensureStub(name string) *uml.Element {
	if e := p.index.byQName[name]; e != nil {
		return e
	}
	segments, simple := cpptype.SplitQualifiedName(name)
	ns := p.model.Root.EnsurePath(segments)
	el := &uml.Element{
		ID:            identity.For("type:" + name),
		Name:          simple,
		QualifiedName: name,
		Kind:          uml.KindDataType,
		Synthetic:     true,
	}
	if !ns.IsRoot() {
		el.Visibility = uml.VisibilityPublic
	}
	ns.Attach(el)
	p.model.AddElement(el)
	p.index.register(el)
	return el
}

// inferDependencies derives client -> supplier edges for operation return
// and parameter type usages that are not already captured as an association.
// Deduplication is by exact (client, supplier) pair.
func (p *Pipeline) inferDependencies() {
	for _, pr := range p.prepared {
		client := pr.el
		for _, op := range client.Operations {
			refs := make([]string, 0, len(op.Parameters)+1)
			if op.ReturnRef != "" {
				refs = append(refs, op.ReturnRef)
			}
			for _, param := range op.Parameters {
				if param.TypeRef != "" {
					refs = append(refs, param.TypeRef)
				}
			}
			for _, ref := range refs {
				p.addDependency(client, ref)
			}
		}
	}
}

func (p *Pipeline) addDependency(client *uml.Element, supplierID string) {
	if supplierID == client.ID {
		return
	}
	supplier := p.model.ElementByID(supplierID)
	if supplier == nil {
		return
	}
	if _, ok := p.assocPairs[pairKey(client.ID, supplierID)]; ok {
		return
	}
	dkey := client.ID + "->" + supplierID
	if _, ok := p.depPairs[dkey]; ok {
		return
	}
	p.depPairs[dkey] = struct{}{}
	p.model.Dependencies = append(p.model.Dependencies, &uml.Dependency{
		ID:       identity.For("dep:" + client.QualifiedName + ":" + supplier.QualifiedName),
		Name:     "dep_" + client.QualifiedName + "_to_" + supplier.QualifiedName,
		Client:   client.ID,
		Supplier: supplierID,
	})
}

// inferGeneralizations derives inheritance edges from declared base lists
// and alias underlying types. Any edge that would close a cycle is dropped
// and reported; the element itself is retained.
func (p *Pipeline) inferGeneralizations() {
	for _, pr := range p.prepared {
		el := pr.el
		for _, base := range pr.fact.Bases {
			if base.Name == "" {
				continue
			}
			general := p.index.resolve(base.Name)
			if general == nil {
				if !p.opts.PlaceholderStubs {
					p.diag(errors.UnresolvableTypeReference, el.QualifiedName,
						fmt.Sprintf("base type %q matches no known type", base.Name))
					continue
				}
				general = p.ensureStub(p.displayType(base.Name))
			}
			access := strings.ToLower(base.Access)
			if access == "" {
				access = "public"
			}
			p.addGeneralization(el, general, access, base.IsVirtual)
		}

		if el.Underlying != "" {
			if target := p.index.resolve(el.Underlying); target != nil && target.ID != el.ID {
				el.UnderlyingRef = target.ID
				p.addGeneralization(el, target, "", false)
			} else if target == nil && p.opts.PlaceholderStubs {
				stub := p.ensureStub(p.displayType(el.Underlying))
				el.UnderlyingRef = stub.ID
				p.addGeneralization(el, stub, "", false)
			}
		}
	}
}

func (p *Pipeline) addGeneralization(specific, general *uml.Element, access string, virtual bool) {
	if specific.ID == general.ID || p.wouldCycle(specific.ID, general.ID) {
		p.diag(errors.CyclicGeneralization,
			specific.QualifiedName+"->"+general.QualifiedName,
			"inheritance edge would close a cycle; dropped")
		return
	}
	for _, g := range p.model.Generalizations {
		if g.Specific == specific.ID && g.General == general.ID {
			return
		}
	}
	p.model.Generalizations = append(p.model.Generalizations, &uml.Generalization{
		ID:        identity.For("gen:" + specific.QualifiedName + ":" + general.QualifiedName),
		Specific:  specific.ID,
		General:   general.ID,
		Access:    access,
		IsVirtual: virtual,
	})
}

// wouldCycle reports whether adding specific -> general closes a cycle,
// i.e. whether specific is already reachable from general over existing
// generalization edges.
func (p *Pipeline) wouldCycle(specific, general string) bool {
	stack := []string{general}
	seen := map[string]struct{}{}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == specific {
			return true
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		for _, g := range p.model.Generalizations {
			if g.Specific == cur {
				stack = append(stack, g.General)
			}
		}
	}
	return false
}

// expectedRole is the conventional role name for an element on the far side
// of a relationship: its simple name, template suffix stripped, first rune
// lower-cased.
func expectedRole(e *uml.Element) string {
	name, _ := cpptype.ParseTemplateArgs(cpptype.SimpleName(e.QualifiedName))
	if name == "" {
		name = e.Name
	}
	if name == "" {
		return "end"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
