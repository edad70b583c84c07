// Package uml defines the in-memory UML model graph produced by the builder
// pipeline and consumed read-only by the XMI and notation writers. Elements
// live in an arena ordered by declaration order; all cross-references are by
// identity string, never by pointer, so the compliance pass can compact the
// arena without leaving dangling back-references.
package uml

// ElementKind distinguishes the packaged element variants.
type ElementKind string

const (
	KindClass       ElementKind = "class"
	KindEnumeration ElementKind = "enumeration"
	KindDataType    ElementKind = "datatype"
)

// Visibility of an element or feature. The empty string means the attribute
// is omitted entirely, which is required for elements owned by the model root.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
	VisibilityPackage   Visibility = "package"
)

// ParseVisibility maps analyzer access strings onto the known values,
// defaulting unknown spellings to def.
func ParseVisibility(s string, def Visibility) Visibility {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate, VisibilityProtected, VisibilityPackage:
		return Visibility(s)
	default:
		return def
	}
}

// Aggregation is the ownership strength of an association end.
type Aggregation string

const (
	AggregationNone      Aggregation = "none"
	AggregationShared    Aggregation = "shared"
	AggregationComposite Aggregation = "composite"
)

// Multiplicity of a member or association end.
type Multiplicity string

const (
	MultOne  Multiplicity = "1"
	MultMany Multiplicity = "*"
)

// EndOwnership records whether an association end is backed by a real field
// on its class or was synthesized because no such field exists.
type EndOwnership string

const (
	// OwnershipClass means the end corresponds to a declared field.
	OwnershipClass EndOwnership = "class-owned"
	// OwnershipOwnedEnd means the end is synthetic.
	OwnershipOwnedEnd EndOwnership = "owned-end"
)

// TemplateArgumentKind distinguishes cleaned template argument variants.
type TemplateArgumentKind string

const (
	// TemplateArgType is a cleaned type reference.
	TemplateArgType TemplateArgumentKind = "type"
	// TemplateArgLiteral is a boolean or numeric literal value.
	TemplateArgLiteral TemplateArgumentKind = "literal"
)

// TemplateArgument is a cleaned template argument. Arguments that cannot be
// normalized are never stored; they are discarded during cleaning. Template
// arguments only ever influence display names: the model never materializes
// template signature or template binding nodes.
type TemplateArgument struct {
	Kind  TemplateArgumentKind `json:"kind"`
	Value string               `json:"value"`
}

// Member is a structural field of a class.
type Member struct {
	Name         string       `json:"name"`
	Raw          string       `json:"raw"`      // declared type text as extracted
	TypeName     string       `json:"typeName"` // cleaned display type name
	TypeRef      string       `json:"typeRef,omitempty"`
	Multiplicity Multiplicity `json:"multiplicity"`
	Visibility   Visibility   `json:"visibility,omitempty"`
	IsStatic     bool         `json:"isStatic,omitempty"`
	OppositeRole string       `json:"oppositeRole,omitempty"` // analyzer hint naming the partner field
}

// Parameter is one operation parameter.
type Parameter struct {
	Name      string `json:"name"`
	TypeName  string `json:"typeName"`
	TypeRef   string `json:"typeRef,omitempty"`
	Direction string `json:"direction"` // in, out, inout, return
	Default   string `json:"default,omitempty"`
}

// Operation is a class operation with its resolved identity.
type Operation struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Signature  string      `json:"signature"`
	ReturnType string      `json:"returnType,omitempty"`
	ReturnRef  string      `json:"returnRef,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Visibility Visibility  `json:"visibility,omitempty"`
	IsStatic   bool        `json:"isStatic,omitempty"`
	IsAbstract bool        `json:"isAbstract,omitempty"`
}

// Element is one packaged classifier: class, enumeration, or datatype.
// It is created empty by the preparation phase, populated by enrichment,
// and only ever removed wholesale by the compliance filter.
type Element struct {
	ID            string
	Name          string // display name, template arguments cleaned
	QualifiedName string
	Kind          ElementKind
	Namespace     *Namespace
	Visibility    Visibility
	IsAbstract    bool
	Synthetic     bool // placeholder stub for an undefined external type

	Members     map[string]*Member
	MemberOrder []string
	Operations  []*Operation

	TemplateArgs  []TemplateArgument
	Literals      []string // enumeration literals
	Underlying    string   // raw alias target for datatype aliases
	UnderlyingRef string
}

// AddMember records a member, keeping declaration order for deterministic
// iteration. A redeclared name overwrites in place without reordering.
func (e *Element) AddMember(m *Member) {
	if e.Members == nil {
		e.Members = make(map[string]*Member)
	}
	if _, exists := e.Members[m.Name]; !exists {
		e.MemberOrder = append(e.MemberOrder, m.Name)
	}
	e.Members[m.Name] = m
}

// MembersInOrder returns members in declaration order.
func (e *Element) MembersInOrder() []*Member {
	out := make([]*Member, 0, len(e.MemberOrder))
	for _, name := range e.MemberOrder {
		out = append(out, e.Members[name])
	}
	return out
}

// MemberEnd is one side of an association.
type MemberEnd struct {
	ID           string       `json:"id"`
	Element      string       `json:"element"` // id of the classifier at this end
	Role         string       `json:"role"`
	Aggregation  Aggregation  `json:"aggregation"`
	Multiplicity Multiplicity `json:"multiplicity"`
	Ownership    EndOwnership `json:"ownership"`
	Opposite     string       `json:"opposite,omitempty"` // id of the linked opposite end
}

// Association connects two (or more) member ends. Once finalized it always
// has at least two ends; anything that cannot satisfy that is dropped by the
// compliance filter before the model leaves the pipeline.
type Association struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Ends               []*MemberEnd `json:"ends"`
	OwnershipAnnotated bool         `json:"ownershipAnnotated,omitempty"`
}

// Dependency is a directed client -> supplier usage edge with no structural
// field backing it.
type Dependency struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client"`
	Supplier string `json:"supplier"`
}

// Generalization is a directed specific -> general inheritance edge.
type Generalization struct {
	ID        string `json:"id"`
	Specific  string `json:"specific"`
	General   string `json:"general"`
	Access    string `json:"access,omitempty"` // public, protected, private
	IsVirtual bool   `json:"isVirtual,omitempty"`
}

// Model is the finished graph handed to the writers.
type Model struct {
	Name string
	Root *Namespace

	Elements        []*Element
	Associations    []*Association
	Dependencies    []*Dependency
	Generalizations []*Generalization

	byID    map[string]*Element
	byQName map[string]*Element
}

// NewModel creates an empty model with a fresh root namespace.
func NewModel(name string) *Model {
	return &Model{
		Name:    name,
		Root:    NewRootNamespace(),
		byID:    make(map[string]*Element),
		byQName: make(map[string]*Element),
	}
}

// AddElement appends an element to the arena and indexes it.
func (m *Model) AddElement(e *Element) {
	m.Elements = append(m.Elements, e)
	m.byID[e.ID] = e
	if e.QualifiedName != "" {
		m.byQName[e.QualifiedName] = e
	}
}

// ElementByID looks an element up by identity.
func (m *Model) ElementByID(id string) *Element {
	return m.byID[id]
}

// ElementByQualifiedName looks an element up by its fully qualified name.
func (m *Model) ElementByQualifiedName(qname string) *Element {
	return m.byQName[qname]
}

// GeneralizationsOf returns the inheritance edges whose specific side is id,
// in insertion order.
func (m *Model) GeneralizationsOf(id string) []*Generalization {
	var out []*Generalization
	for _, g := range m.Generalizations {
		if g.Specific == id {
			out = append(out, g)
		}
	}
	return out
}

// Compact removes every element for which keep returns false, detaching it
// from its namespace and from the indexes. Arena order of the survivors is
// preserved.
func (m *Model) Compact(keep func(*Element) bool) {
	kept := m.Elements[:0]
	for _, e := range m.Elements {
		if keep(e) {
			kept = append(kept, e)
			continue
		}
		delete(m.byID, e.ID)
		if e.QualifiedName != "" {
			delete(m.byQName, e.QualifiedName)
		}
		if e.Namespace != nil {
			e.Namespace.Detach(e)
		}
	}
	m.Elements = kept
}
