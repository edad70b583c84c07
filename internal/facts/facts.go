// Package facts defines the analyzer fact records the pipeline consumes and
// a loader for the JSON dumps the external clang-based analyzer produces.
// The loader transparently handles zstd-compressed dumps (<name>.json.zst),
// which large codebases generate to keep artifact sizes manageable.
package facts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"cuml/internal/errors"
)

// FactSet is one analyzer dump: everything known about the analyzed codebase.
type FactSet struct {
	ProjectName string     `json:"projectName,omitempty"`
	Types       []TypeFact `json:"types"`
}

// TypeFact is the raw per-type record handed over by the analyzer.
type TypeFact struct {
	Name          string   `json:"name,omitempty"`
	QualifiedName string   `json:"qualifiedName,omitempty"`
	DisplayName   string   `json:"displayName,omitempty"`
	Kind          string   `json:"kind,omitempty"` // class, struct, enum, typedef, interface, datatype
	Namespace     []string `json:"namespace,omitempty"`
	Visibility    string   `json:"visibility,omitempty"`
	IsAbstract    bool     `json:"isAbstract,omitempty"`

	Members    []MemberFact    `json:"members,omitempty"`
	Operations []OperationFact `json:"operations,omitempty"`
	Bases      []BaseFact      `json:"bases,omitempty"`
	Relations  []RelationFact  `json:"relations,omitempty"`

	Enumerators  []string `json:"enumerators,omitempty"`
	Underlying   string   `json:"underlying,omitempty"`
	TemplateArgs []string `json:"templateArgs,omitempty"`
}

// MemberFact is one declared field.
type MemberFact struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"` // raw declared type text
	Visibility   string `json:"visibility,omitempty"`
	IsStatic     bool   `json:"isStatic,omitempty"`
	OppositeRole string `json:"oppositeRole,omitempty"` // names the partner field on the referenced type
}

// OperationFact is one declared method or function.
type OperationFact struct {
	Name       string          `json:"name"`
	Signature  string          `json:"signature,omitempty"` // raw (possibly mangled) signature text
	ReturnType string          `json:"returnType,omitempty"`
	Visibility string          `json:"visibility,omitempty"`
	IsStatic   bool            `json:"isStatic,omitempty"`
	IsAbstract bool            `json:"isAbstract,omitempty"`
	Parameters []ParameterFact `json:"parameters,omitempty"`
}

// ParameterFact is one operation parameter.
type ParameterFact struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Direction string `json:"direction,omitempty"`
	Default   string `json:"default,omitempty"`
}

// BaseFact is one declared base type.
type BaseFact struct {
	Name      string `json:"name"`
	Access    string `json:"access,omitempty"`
	IsVirtual bool   `json:"isVirtual,omitempty"`
}

// RelationFact is an analyzer-supplied usage relation that is not backed by
// a field on either side (registry-mediated relations, getter-only access).
type RelationFact struct {
	Target string `json:"target"`         // qualified or simple name of the other type
	Role   string `json:"role,omitempty"` // role name toward the target
	Kind   string `json:"kind,omitempty"`
}

// Load reads a fact set from disk. Files ending in .zst are decompressed.
func Load(path string) (*FactSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open facts: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.New(errors.FactsInvalid, "open zstd stream", err)
		}
		defer dec.Close()
		r = dec
	}
	return Decode(r)
}

// Decode reads a fact set from a reader.
func Decode(r io.Reader) (*FactSet, error) {
	dec := json.NewDecoder(r)
	var fs FactSet
	if err := dec.Decode(&fs); err != nil {
		return nil, errors.New(errors.FactsInvalid, "decode facts", err)
	}
	return &fs, nil
}

// BestName returns the natural key of a type fact: qualified name first, then
// display name, then simple name. Empty when the record carries no name at all.
func (t *TypeFact) BestName() string {
	switch {
	case t.QualifiedName != "":
		return t.QualifiedName
	case t.DisplayName != "":
		return t.DisplayName
	default:
		return t.Name
	}
}
