// Package cpptype analyzes raw C++ type expressions as extracted by the
// analyzer: qualifier stripping, pointer/reference/array classification,
// template argument splitting, and normalization of template argument text
// into display-safe names.
package cpptype

import (
	"regexp"
	"strings"
)

var (
	qualifierRe   = regexp.MustCompile(`\b(const|volatile|mutable)\b`)
	spaceRe       = regexp.MustCompile(`\s+`)
	arrayRe       = regexp.MustCompile(`\[\s*\d*\s*\]$`)
	declRe        = regexp.MustCompile(`\s*[*&]+`)
	templateSufRe = regexp.MustCompile(`<.*>$`)
)

// Analysis is the classification of one type expression.
type Analysis struct {
	Raw          string
	Base         string // qualifiers and declarators stripped
	TemplateBase string // last segment of the template base, e.g. "vector"
	TemplateArgs []string
	IsPointer    bool
	IsReference  bool
	IsRValueRef  bool
	IsArray      bool
}

// Tokenize strips cv-qualifiers and collapses whitespace.
func Tokenize(s string) string {
	s = qualifierRe.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ParseTemplateArgs splits a type expression into its template base and
// top-level argument list, respecting nesting. "map<K, pair<A,B>>" yields
// base "map" and args ["K", "pair<A,B>"].
func ParseTemplateArgs(s string) (string, []string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return s, nil
	}
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return s, nil
	}
	base := strings.TrimSpace(s[:open])
	var args []string
	depth := 1
	var cur strings.Builder
	for i := open + 1; i < len(s) && depth > 0; i++ {
		c := s[i]
		switch {
		case c == '<':
			depth++
			cur.WriteByte(c)
		case c == '>':
			depth--
			if depth == 0 {
				if a := strings.TrimSpace(cur.String()); a != "" {
					args = append(args, a)
				}
			} else {
				cur.WriteByte(c)
			}
		case c == ',' && depth == 1:
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return base, args
}

// Analyze classifies a raw type expression.
func Analyze(raw string) Analysis {
	t := Tokenize(raw)
	a := Analysis{Raw: raw, Base: t}
	if t == "" {
		return a
	}
	if arrayRe.MatchString(t) {
		a.IsArray = true
	}
	if strings.Contains(t, "&&") {
		a.IsRValueRef = true
	} else if strings.Contains(t, "&") {
		a.IsReference = true
	}
	if strings.Contains(t, "*") {
		a.IsPointer = true
	}
	clean := strings.TrimSpace(declRe.ReplaceAllString(t, ""))
	clean = strings.TrimSpace(arrayRe.ReplaceAllString(clean, ""))
	a.Base = clean
	base, args := ParseTemplateArgs(clean)
	a.TemplateArgs = args
	if i := strings.LastIndex(base, "::"); i >= 0 {
		a.TemplateBase = base[i+2:]
	} else {
		a.TemplateBase = base
	}
	return a
}

// ExtractIdentifiers returns every type identifier appearing in the
// expression: the template base first, then identifiers of nested arguments,
// depth first.
func ExtractIdentifiers(raw string) []string {
	var out []string
	var walk func(s string)
	walk = func(s string) {
		s = Tokenize(s)
		base, args := ParseTemplateArgs(s)
		if base != "" {
			out = append(out, base)
		}
		for _, a := range args {
			walk(a)
		}
	}
	walk(raw)
	return out
}

// MatchKnown resolves extracted identifiers against the ordered list of known
// qualified names. A token matches a known name when they are equal, when the
// known name ends in ::token, or when the token ends in ::knownName. Pointer,
// reference, and template noise is tolerated by also trying the token's
// template base and last path segment. Results keep first-match order without
// duplicates.
func MatchKnown(tokens []string, known []string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, token := range tokens {
		token = strings.TrimSpace(declRe.ReplaceAllString(token, ""))
		if token == "" {
			continue
		}
		candidates := []string{token}
		if i := strings.LastIndex(token, "::"); i >= 0 {
			candidates = append(candidates, token[i+2:])
		}
		if stripped := strings.TrimSpace(templateSufRe.ReplaceAllString(token, "")); stripped != token {
			candidates = append(candidates, stripped)
			if i := strings.LastIndex(stripped, "::"); i >= 0 {
				candidates = append(candidates, stripped[i+2:])
			}
		}
		var found string
		for _, c := range candidates {
			for _, kn := range known {
				if kn == c || strings.HasSuffix(kn, "::"+c) || strings.HasSuffix(c, "::"+kn) {
					found = kn
					break
				}
			}
			if found != "" {
				break
			}
		}
		if found != "" {
			if _, dup := seen[found]; !dup {
				matched = append(matched, found)
				seen[found] = struct{}{}
			}
		}
	}
	return matched
}

// SimpleName returns the last :: segment of a qualified name.
func SimpleName(qname string) string {
	if i := strings.LastIndex(qname, "::"); i >= 0 {
		return qname[i+2:]
	}
	return qname
}

// SplitQualifiedName splits a qualified name into its namespace path and
// simple name. Template argument text inside the name is left untouched:
// only :: separators outside angle brackets split segments.
func SplitQualifiedName(qname string) ([]string, string) {
	var segs []string
	depth := 0
	start := 0
	for i := 0; i+1 < len(qname); i++ {
		switch qname[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && qname[i+1] == ':' {
				segs = append(segs, qname[start:i])
				start = i + 2
				i++
			}
		}
	}
	segs = append(segs, qname[start:])
	return segs[:len(segs)-1], segs[len(segs)-1]
}
