package xmi

import (
	"strings"
	"testing"

	"cuml/internal/builder"
	"cuml/internal/facts"
)

func render(t *testing.T, fs *facts.FactSet) string {
	t.Helper()
	model, _, err := builder.New(builder.Options{
		PlaceholderStubs:     true,
		OwnershipAnnotations: true,
	}).Build(fs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out, err := Marshal(model)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return out
}

func TestWriteClassWithAssociation(t *testing.T) {
	out := render(t, &facts.FactSet{
		ProjectName: "demo",
		Types: []facts.TypeFact{
			{
				QualifiedName: "app::A",
				Kind:          "class",
				Members:       []facts.MemberFact{{Name: "b", Type: "app::B*", Visibility: "private"}},
			},
			{QualifiedName: "app::B", Kind: "class"},
		},
	})

	for _, want := range []string{
		`<uml:Model`,
		`name="demo"`,
		`xmi:type="uml:Package"`,
		`name="app"`,
		`xmi:type="uml:Class"`,
		`name="A"`,
		`<ownedAttribute`,
		`name="b"`,
		`visibility="private"`,
		`xmi:type="uml:Association"`,
		`aggregation="shared"`,
		`<ownedEnd`,
		`<eAnnotations`,
		`source="ownership"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestWriteMultiplicityBounds(t *testing.T) {
	out := render(t, &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Members:       []facts.MemberFact{{Name: "items", Type: "std::vector<B>"}},
		},
		{QualifiedName: "B", Kind: "class"},
	}})

	if !strings.Contains(out, `xmi:type="uml:LiteralUnlimitedNatural"`) {
		t.Error("missing upper bound literal type")
	}
	if !strings.Contains(out, `value="*"`) {
		t.Error("missing unbounded upper value for container field")
	}
	if !strings.Contains(out, `value="0"`) {
		t.Error("missing zero lower bound for container field")
	}
}

func TestWriteOperationWithReturnParameter(t *testing.T) {
	out := render(t, &facts.FactSet{Types: []facts.TypeFact{
		{
			QualifiedName: "A",
			Kind:          "class",
			Operations: []facts.OperationFact{
				{
					Name:       "find",
					ReturnType: "B",
					Parameters: []facts.ParameterFact{{Name: "key", Type: "B"}},
				},
			},
		},
		{QualifiedName: "B", Kind: "class"},
	}})

	if !strings.Contains(out, `<ownedOperation`) {
		t.Error("missing ownedOperation")
	}
	if !strings.Contains(out, `direction="in"`) {
		t.Error("missing in parameter")
	}
	if !strings.Contains(out, `direction="return"`) {
		t.Error("missing return parameter")
	}
}

func TestWriteEnumerationAndDependency(t *testing.T) {
	out := render(t, &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Color", Kind: "enum", Enumerators: []string{"Red", "Green"}},
		{
			QualifiedName: "Painter",
			Kind:          "class",
			Operations:    []facts.OperationFact{{Name: "paint", Parameters: []facts.ParameterFact{{Name: "c", Type: "Color"}}}},
		},
	}})

	for _, want := range []string{
		`xmi:type="uml:Enumeration"`,
		`<ownedLiteral`,
		`name="Red"`,
		`xmi:type="uml:Dependency"`,
		`name="dep_Painter_to_Color"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestWriteGeneralizationNestedUnderSpecific(t *testing.T) {
	out := render(t, &facts.FactSet{Types: []facts.TypeFact{
		{QualifiedName: "Derived", Kind: "class", Bases: []facts.BaseFact{{Name: "Base"}}},
		{QualifiedName: "Base", Kind: "class"},
	}})

	gi := strings.Index(out, "<generalization")
	di := strings.Index(out, `name="Derived"`)
	bi := strings.Index(out, `name="Base"`)
	if gi < 0 {
		t.Fatal("missing generalization")
	}
	if di < 0 || bi < 0 || gi < di || gi > bi {
		// The edge must be serialized inside the Derived classifier body.
		t.Errorf("generalization at %d not nested under Derived at %d (Base at %d)", gi, di, bi)
	}
}

func TestWriteIsReproducible(t *testing.T) {
	mk := func() *facts.FactSet {
		return &facts.FactSet{Types: []facts.TypeFact{
			{QualifiedName: "ns::A", Kind: "class", Members: []facts.MemberFact{{Name: "b", Type: "ns::B*"}}},
			{QualifiedName: "ns::B", Kind: "class"},
		}}
	}
	a := render(t, mk())
	b := render(t, mk())
	if a != b {
		t.Error("identical input produced different XMI output")
	}
}
