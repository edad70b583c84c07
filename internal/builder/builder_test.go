package builder

import (
	"testing"

	"cuml/internal/errors"
	"cuml/internal/facts"
	"cuml/internal/uml"
)

func build(t *testing.T, opts Options, fs *facts.FactSet) (*uml.Model, []errors.Diagnostic) {
	t.Helper()
	model, diags, err := New(opts).Build(fs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return model, diags
}

func classFact(name string, members ...facts.MemberFact) facts.TypeFact {
	return facts.TypeFact{QualifiedName: name, Kind: "class", Members: members}
}

func hasDiag(diags []errors.Diagnostic, code errors.ErrorCode) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestPointerFieldBecomesSharedAssociation(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "b", Type: "B*"}),
		classFact("B"),
	}}
	model, _ := build(t, Options{PlaceholderStubs: true, OwnershipAnnotations: true}, fs)

	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	assoc := model.Associations[0]
	if len(assoc.Ends) != 2 {
		t.Fatalf("got %d ends, want 2", len(assoc.Ends))
	}
	src, dst := assoc.Ends[0], assoc.Ends[1]
	if src.Role != "b" || src.Aggregation != uml.AggregationShared {
		t.Errorf("source end = %q/%s, want b/shared", src.Role, src.Aggregation)
	}
	if src.Ownership != uml.OwnershipClass {
		t.Errorf("source ownership = %s, want class-owned", src.Ownership)
	}
	if dst.Ownership != uml.OwnershipOwnedEnd {
		t.Errorf("target ownership = %s, want owned-end", dst.Ownership)
	}
	if dst.Multiplicity != uml.MultOne {
		t.Errorf("target multiplicity = %q, want 1", dst.Multiplicity)
	}
	if !assoc.OwnershipAnnotated {
		t.Error("synthesized end not annotated")
	}
}

func TestStrictModeSuppressesOwnedEndSynthesis(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "b", Type: "B*"}),
		classFact("B"),
	}}
	model, _ := build(t, Options{Strict: true}, fs)
	if len(model.Associations) != 0 {
		t.Fatalf("strict mode produced %d associations, want 0", len(model.Associations))
	}
}

func TestContainerFieldGetsManyMultiplicity(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "items", Type: "std::vector<B>"}),
		classFact("B"),
	}}
	model, _ := build(t, Options{}, fs)

	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	assoc := model.Associations[0]
	if assoc.Ends[0].Aggregation != uml.AggregationNone {
		t.Errorf("aggregation = %s, want none", assoc.Ends[0].Aggregation)
	}
	if assoc.Ends[1].Multiplicity != uml.MultMany {
		t.Errorf("target multiplicity = %q, want *", assoc.Ends[1].Multiplicity)
	}
}

func TestOwningSmartPointerBecomesComposite(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "b", Type: "std::unique_ptr<B>"}),
		classFact("B"),
	}}
	model, _ := build(t, Options{}, fs)
	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	if got := model.Associations[0].Ends[0].Aggregation; got != uml.AggregationComposite {
		t.Errorf("aggregation = %s, want composite", got)
	}
}

func TestBidirectionalFieldsLinkAsOneAssociation(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "b", Type: "B*"}),
		classFact("B", facts.MemberFact{Name: "a", Type: "A*"}),
	}}
	model, _ := build(t, Options{}, fs)

	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1 (mirror not suppressed?)", len(model.Associations))
	}
	assoc := model.Associations[0]
	src, dst := assoc.Ends[0], assoc.Ends[1]
	if src.Opposite != dst.ID || dst.Opposite != src.ID {
		t.Errorf("opposite links broken: %q<->%q vs %q<->%q",
			src.Opposite, dst.ID, dst.Opposite, src.ID)
	}
	if dst.Role != "a" || dst.Ownership != uml.OwnershipClass {
		t.Errorf("opposite end = %q/%s, want a/class-owned", dst.Role, dst.Ownership)
	}
}

func TestOppositeRoleHintOverridesNaming(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "child", Type: "B*", OppositeRole: "parent"}),
		classFact("B", facts.MemberFact{Name: "parent", Type: "A*"}),
	}}
	model, _ := build(t, Options{}, fs)
	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	if got := model.Associations[0].Ends[1].Role; got != "parent" {
		t.Errorf("opposite role = %q, want parent", got)
	}
}

func TestSelfReferentialFieldDropsDegenerateAssociation(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("Node", facts.MemberFact{Name: "node", Type: "Node*"}),
	}}
	model, diags := build(t, Options{}, fs)
	for _, assoc := range model.Associations {
		for _, end := range assoc.Ends {
			if end.Opposite != "" {
				t.Errorf("dropped association left opposite link %q", end.Opposite)
			}
		}
	}
	if !hasDiag(diags, errors.DegenerateAssociation) {
		// A self field with an identical role on both sides is degenerate.
		t.Error("missing DEGENERATE_ASSOCIATION diagnostic")
	}
}

func TestDeclaredRelationLosesTieBreakToFieldAssociation(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Members:       []facts.MemberFact{{Name: "b", Type: "B*"}},
			Relations:     []facts.RelationFact{{Target: "B", Role: "partner"}},
		},
		classFact("B"),
	}}
	model, diags := build(t, Options{}, fs)
	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	if !hasDiag(diags, errors.RelationSuppressed) {
		t.Error("missing RELATION_SUPPRESSED diagnostic")
	}
}

func TestDeclaredRelationWithoutFieldsSynthesizesBothEnds(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "A", Kind: "class", Relations: []facts.RelationFact{{Target: "B"}}},
		classFact("B"),
	}}
	model, _ := build(t, Options{}, fs)
	if len(model.Associations) != 1 {
		t.Fatalf("got %d associations, want 1", len(model.Associations))
	}
	for _, end := range model.Associations[0].Ends {
		if end.Ownership != uml.OwnershipOwnedEnd {
			t.Errorf("end %q ownership = %s, want owned-end", end.Role, end.Ownership)
		}
	}
}

func TestUnknownTypeGetsPlaceholderStub(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Operations: []facts.OperationFact{
				{Name: "fetch", ReturnType: "ext::Widget"},
			},
		},
	}}
	model, _ := build(t, Options{PlaceholderStubs: true}, fs)

	stub := model.ElementByQualifiedName("ext::Widget")
	if stub == nil {
		t.Fatal("placeholder for ext::Widget not created")
	}
	if !stub.Synthetic || stub.Kind != uml.KindDataType {
		t.Errorf("stub = synthetic:%v kind:%s, want synthetic datatype", stub.Synthetic, stub.Kind)
	}
	if len(model.Dependencies) != 1 {
		t.Fatalf("got %d dependencies, want 1", len(model.Dependencies))
	}
	dep := model.Dependencies[0]
	if dep.Name != "dep_A_to_ext::Widget" {
		t.Errorf("dependency name = %q", dep.Name)
	}
	if dep.Supplier != stub.ID {
		t.Errorf("dependency supplier = %q, want %q", dep.Supplier, stub.ID)
	}
}

func TestStubsDisabledReportsUnresolvable(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Operations:    []facts.OperationFact{{Name: "fetch", ReturnType: "ext::Widget"}},
		},
	}}
	model, diags := build(t, Options{PlaceholderStubs: false}, fs)
	if model.ElementByQualifiedName("ext::Widget") != nil {
		t.Error("stub created with stubs disabled")
	}
	if !hasDiag(diags, errors.UnresolvableTypeReference) {
		t.Error("missing UNRESOLVABLE_TYPE_REFERENCE diagnostic")
	}
}

func TestUnreferencedStubIsPruned(t *testing.T) {
	// The member resolves to a real element, so no stub should survive.
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A", facts.MemberFact{Name: "b", Type: "B"}),
		classFact("B"),
	}}
	model, _ := build(t, Options{PlaceholderStubs: true}, fs)
	for _, e := range model.Elements {
		if e.Synthetic {
			t.Errorf("unexpected surviving stub %q", e.QualifiedName)
		}
	}
}

func TestDependencySkipsAssociatedPair(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Members:       []facts.MemberFact{{Name: "b", Type: "B*"}},
			Operations:    []facts.OperationFact{{Name: "get", ReturnType: "B"}},
		},
		classFact("B"),
	}}
	model, _ := build(t, Options{}, fs)
	if len(model.Dependencies) != 0 {
		t.Errorf("got %d dependencies, want 0 for an associated pair", len(model.Dependencies))
	}
}

func TestGeneralizationCycleIsDropped(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "A", Kind: "class", Bases: []facts.BaseFact{{Name: "B"}}},
		{QualifiedName: "B", Kind: "class", Bases: []facts.BaseFact{{Name: "A"}}},
	}}
	model, diags := build(t, Options{}, fs)
	if len(model.Generalizations) != 1 {
		t.Fatalf("got %d generalizations, want 1", len(model.Generalizations))
	}
	if !hasDiag(diags, errors.CyclicGeneralization) {
		t.Error("missing CYCLIC_GENERALIZATION diagnostic")
	}
	if model.ElementByQualifiedName("A") == nil || model.ElementByQualifiedName("B") == nil {
		t.Error("elements of the dropped cycle edge must be retained")
	}
}

func TestAliasUnderlyingBecomesGeneralization(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Ids", Kind: "typedef", Underlying: "Base"},
		classFact("Base"),
	}}
	model, _ := build(t, Options{}, fs)

	alias := model.ElementByQualifiedName("Ids")
	base := model.ElementByQualifiedName("Base")
	if alias.Kind != uml.KindDataType {
		t.Errorf("alias kind = %s, want datatype", alias.Kind)
	}
	if alias.UnderlyingRef != base.ID {
		t.Errorf("underlying ref = %q, want %q", alias.UnderlyingRef, base.ID)
	}
	gens := model.GeneralizationsOf(alias.ID)
	if len(gens) != 1 || gens[0].General != base.ID {
		t.Fatalf("alias generalization missing or wrong: %+v", gens)
	}
}

func TestRootOwnedElementsCarryNoVisibility(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Top", Kind: "class", Visibility: "public"},
		{QualifiedName: "ns::Inner", Kind: "class", Visibility: "public"},
	}}
	model, _ := build(t, Options{}, fs)

	if got := model.ElementByQualifiedName("Top").Visibility; got != "" {
		t.Errorf("root-owned visibility = %q, want empty", got)
	}
	if got := model.ElementByQualifiedName("ns::Inner").Visibility; got != uml.VisibilityPublic {
		t.Errorf("namespaced visibility = %q, want public", got)
	}
}

func TestIdenticalOperationSignaturesGetDistinctIds(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Operations: []facts.OperationFact{
				{Name: "run", Signature: "run()"},
				{Name: "run", Signature: "run()"},
			},
		},
	}}
	model, _ := build(t, Options{}, fs)

	ops := model.ElementByQualifiedName("A").Operations
	if len(ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(ops))
	}
	if ops[0].ID == ops[1].ID {
		t.Errorf("overloads share id %q", ops[0].ID)
	}
}

func TestDuplicateTypeRecordIsSkipped(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		classFact("A"),
		classFact("A"),
	}}
	model, diags := build(t, Options{}, fs)
	if len(model.Elements) != 1 {
		t.Fatalf("got %d elements, want 1", len(model.Elements))
	}
	if !hasDiag(diags, errors.FactsInvalid) {
		t.Error("missing FACTS_INVALID diagnostic")
	}
}

func TestMalformedTemplateArgumentsFallBackToBareName(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Buffer", Kind: "class", TemplateArgs: []string{"__attribute__((aligned))"}},
	}}
	model, diags := build(t, Options{}, fs)

	el := model.ElementByQualifiedName("Buffer")
	if el.Name != "Buffer" {
		t.Errorf("display name = %q, want bare Buffer", el.Name)
	}
	if !hasDiag(diags, errors.MalformedTemplateArgument) {
		t.Error("missing MALFORMED_TEMPLATE_ARGUMENT diagnostic")
	}
}

func TestEnumLiteralsAndKinds(t *testing.T) {
	fs := &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Color", Kind: "enum", Enumerators: []string{"Red", "Green"}},
		{QualifiedName: "IFace", Kind: "interface"},
		{QualifiedName: "Pod", Kind: "struct"},
	}}
	model, _ := build(t, Options{}, fs)

	if got := model.ElementByQualifiedName("Color"); got.Kind != uml.KindEnumeration || len(got.Literals) != 2 {
		t.Errorf("enum = %s with %d literals", got.Kind, len(got.Literals))
	}
	if got := model.ElementByQualifiedName("IFace").Kind; got != uml.KindClass {
		t.Errorf("interface kind = %s, want class", got)
	}
	if got := model.ElementByQualifiedName("Pod").Kind; got != uml.KindDataType {
		t.Errorf("struct kind = %s, want datatype", got)
	}
}

func TestBuildIsReproducible(t *testing.T) {
	mk := func() *facts.FactSet {
		return &facts.FactSet{
			ProjectName: "demo",
			Types: []facts.TypeFact{
				classFact("app::A",
					facts.MemberFact{Name: "b", Type: "B*"},
					facts.MemberFact{Name: "items", Type: "std::vector<app::C>"}),
				classFact("app::B", facts.MemberFact{Name: "a", Type: "app::A*"}),
				classFact("app::C"),
				{QualifiedName: "app::D", Kind: "class", Bases: []facts.BaseFact{{Name: "app::A"}}},
			},
		}
	}
	opts := Options{PlaceholderStubs: true, OwnershipAnnotations: true}
	m1, _ := build(t, opts, mk())
	m2, _ := build(t, opts, mk())

	if len(m1.Elements) != len(m2.Elements) {
		t.Fatalf("element counts differ: %d vs %d", len(m1.Elements), len(m2.Elements))
	}
	for i := range m1.Elements {
		if m1.Elements[i].ID != m2.Elements[i].ID {
			t.Errorf("element %d id differs: %q vs %q", i, m1.Elements[i].ID, m2.Elements[i].ID)
		}
	}
	if len(m1.Associations) != len(m2.Associations) {
		t.Fatalf("association counts differ: %d vs %d", len(m1.Associations), len(m2.Associations))
	}
	for i := range m1.Associations {
		a1, a2 := m1.Associations[i], m2.Associations[i]
		if a1.ID != a2.ID || a1.Ends[0].ID != a2.Ends[0].ID || a1.Ends[1].ID != a2.Ends[1].ID {
			t.Errorf("association %d differs: %q vs %q", i, a1.ID, a2.ID)
		}
	}
}
