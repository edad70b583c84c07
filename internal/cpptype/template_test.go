package cpptype

import (
	"testing"

	"cuml/internal/profile"
	"cuml/internal/uml"
)

func TestCleanArgumentLiterals(t *testing.T) {
	c := NewCleaner(nil)
	tests := []struct {
		in   string
		kind uml.TemplateArgumentKind
		val  string
	}{
		{"true", uml.TemplateArgLiteral, "true"},
		{"false", uml.TemplateArgLiteral, "false"},
		{"42", uml.TemplateArgLiteral, "42"},
		{"16u", uml.TemplateArgLiteral, "16"},
		{"-3", uml.TemplateArgLiteral, "-3"},
		{"std::true_type", uml.TemplateArgLiteral, "true"},
		{"std::false_type", uml.TemplateArgLiteral, "false"},
	}
	for _, tt := range tests {
		arg, ok := c.CleanArgument(tt.in)
		if !ok {
			t.Errorf("CleanArgument(%q) rejected", tt.in)
			continue
		}
		if arg.Kind != tt.kind || arg.Value != tt.val {
			t.Errorf("CleanArgument(%q) = %+v, want %s %q", tt.in, arg, tt.kind, tt.val)
		}
	}
}

func TestCleanArgumentTypes(t *testing.T) {
	c := NewCleaner(nil)

	arg, ok := c.CleanArgument("app::Value")
	if !ok || arg.Kind != uml.TemplateArgType || arg.Value != "app::Value" {
		t.Errorf("plain type: %+v ok=%v", arg, ok)
	}

	// Nested lists are cleaned recursively, preserving structure.
	arg, ok = c.CleanArgument("std::vector<app::Value>")
	if !ok || arg.Value != "std::vector<app::Value>" {
		t.Errorf("nested type: %+v ok=%v", arg, ok)
	}

	// Pointer declarators are display noise.
	arg, ok = c.CleanArgument("Value *")
	if !ok || arg.Value != "Value" {
		t.Errorf("pointer arg: %+v ok=%v", arg, ok)
	}
}

func TestCleanArgumentRejections(t *testing.T) {
	c := NewCleaner(nil)
	rejected := []string{
		"",
		"   ",
		"std::vector<int", // unbalanced
		"a + b",           // expression residue
		"%%",
	}
	for _, in := range rejected {
		if arg, ok := c.CleanArgument(in); ok {
			t.Errorf("CleanArgument(%q) accepted as %+v", in, arg)
		}
	}
}

func TestCleanArgumentMacroArtifacts(t *testing.T) {
	c := NewCleaner(nil)
	arg, ok := c.CleanArgument("__declspec Value")
	if !ok || arg.Value != "Value" {
		t.Errorf("macro artifact survived: %+v ok=%v", arg, ok)
	}
}

func TestBuildTemplateNameAllDiscarded(t *testing.T) {
	c := NewCleaner(nil)
	// Macro residue that fully fails cleaning: base name only, never an
	// empty bracket pair.
	got := c.BuildTemplateName("Wrapper", []string{"__declspec ("})
	if got != "Wrapper" {
		t.Errorf("BuildTemplateName = %q, want bare base name", got)
	}
}

func TestBuildTemplateNamePartialSurvival(t *testing.T) {
	c := NewCleaner(nil)
	got := c.BuildTemplateName("Pair", []string{"int", "a + b"})
	if got != "Pair<int>" {
		t.Errorf("BuildTemplateName = %q, want Pair<int>", got)
	}
}

func TestCleanAllCountsDiscards(t *testing.T) {
	c := NewCleaner(nil)
	args, discarded := c.CleanAll([]string{"int", "std::vector<int", "true"})
	if len(args) != 2 || discarded != 1 {
		t.Errorf("CleanAll = %d kept, %d discarded", len(args), discarded)
	}
}

func TestCleanerCustomProfile(t *testing.T) {
	p := profile.Default()
	p.MacroArtifacts = append(p.MacroArtifacts, "MYLIB_API")
	c := NewCleaner(p)
	arg, ok := c.CleanArgument("MYLIB_API Widget")
	if !ok || arg.Value != "Widget" {
		t.Errorf("custom artifact not stripped: %+v ok=%v", arg, ok)
	}
}
