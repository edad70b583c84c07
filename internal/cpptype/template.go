package cpptype

import (
	"regexp"
	"strings"

	"cuml/internal/profile"
	"cuml/internal/uml"
)

var (
	intLiteralRe  = regexp.MustCompile(`^-?\d+[uUlL]*$`)
	identifierRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)
	residueRe     = regexp.MustCompile(`[(){}\[\]#@$!%^=;?\\]`)
	boolWrapperRe = regexp.MustCompile(`^(std::)?(true_type|false_type)$`)
)

// Cleaner normalizes raw template argument text into display-safe template
// arguments or rejects it. Rejected arguments are discarded, never emitted
// malformed.
type Cleaner struct {
	prof *profile.Profile
}

// NewCleaner creates a cleaner over the given type profile. A nil profile
// uses the defaults.
func NewCleaner(p *profile.Profile) *Cleaner {
	if p == nil {
		p = profile.Default()
	}
	return &Cleaner{prof: p}
}

// CleanArgument normalizes one raw template argument. The second return is
// false when the argument cannot be salvaged: empty after cleaning,
// unbalanced, or still carrying non-identifier punctuation.
func (c *Cleaner) CleanArgument(raw string) (uml.TemplateArgument, bool) {
	s := Tokenize(raw)
	for _, artifact := range c.prof.MacroArtifacts {
		s = strings.ReplaceAll(s, artifact, "")
	}
	// Unbalanced angle brackets cannot be repaired without guessing; the
	// argument is rejected outright. Stray parentheses are extraction debris
	// and are stripped.
	if !balanced(s, '<', '>') {
		return uml.TemplateArgument{}, false
	}
	if !balanced(s, '(', ')') {
		s = strings.Map(func(r rune) rune {
			if r == '(' || r == ')' {
				return -1
			}
			return r
		}, s)
	}
	s = strings.TrimSpace(declRe.ReplaceAllString(s, ""))
	if s == "" {
		return uml.TemplateArgument{}, false
	}

	// Literal tokens become literal arguments rather than type references.
	switch {
	case s == "true" || s == "false":
		return uml.TemplateArgument{Kind: uml.TemplateArgLiteral, Value: s}, true
	case intLiteralRe.MatchString(s):
		return uml.TemplateArgument{Kind: uml.TemplateArgLiteral, Value: strings.TrimRight(s, "uUlL")}, true
	case boolWrapperRe.MatchString(s):
		// Library boolean-constant wrappers simplify to their literal value.
		if strings.HasSuffix(s, "true_type") {
			return uml.TemplateArgument{Kind: uml.TemplateArgLiteral, Value: "true"}, true
		}
		return uml.TemplateArgument{Kind: uml.TemplateArgLiteral, Value: "false"}, true
	}

	base, args := ParseTemplateArgs(s)
	if base == "" {
		return uml.TemplateArgument{}, false
	}
	if len(args) == 0 {
		if !identifierRe.MatchString(base) {
			return uml.TemplateArgument{}, false
		}
		return uml.TemplateArgument{Kind: uml.TemplateArgType, Value: base}, true
	}

	// Nested argument lists are cleaned recursively, preserving structure.
	if !identifierRe.MatchString(base) {
		return uml.TemplateArgument{}, false
	}
	name := c.BuildTemplateName(base, args)
	if residueRe.MatchString(name) {
		return uml.TemplateArgument{}, false
	}
	return uml.TemplateArgument{Kind: uml.TemplateArgType, Value: name}, true
}

// CleanAll cleans a raw argument list, returning the surviving arguments and
// the count of discarded ones.
func (c *Cleaner) CleanAll(raws []string) ([]uml.TemplateArgument, int) {
	var out []uml.TemplateArgument
	discarded := 0
	for _, raw := range raws {
		arg, ok := c.CleanArgument(raw)
		if !ok {
			discarded++
			continue
		}
		out = append(out, arg)
	}
	return out, discarded
}

// BuildTemplateName renders base<args...> from the surviving cleaned
// arguments. When every argument is discarded the result is the base name
// alone: the target format forbids template constructs with zero resolvable
// parameters, so an empty angle-bracket pair is never produced.
func (c *Cleaner) BuildTemplateName(base string, raws []string) string {
	args, _ := c.CleanAll(raws)
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Value
	}
	return base + "<" + strings.Join(parts, ", ") + ">"
}

func balanced(s string, open, close rune) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
