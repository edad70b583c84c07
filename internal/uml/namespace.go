package uml

// Namespace is one segment of a qualified name path. The tree is rooted at a
// single distinguished root node; elements attached directly to the root must
// never carry a visibility attribute (a rule of the target format).
type Namespace struct {
	Name     string
	Parent   *Namespace
	Elements []*Element

	children   map[string]*Namespace
	childOrder []string
}

// NewRootNamespace creates the distinguished root node.
func NewRootNamespace() *Namespace {
	return &Namespace{children: make(map[string]*Namespace)}
}

// IsRoot reports whether this is the model root.
func (n *Namespace) IsRoot() bool {
	return n.Parent == nil
}

// EnsurePath walks (creating as needed) the child chain named by segments and
// returns the final node. Idempotent: the same path always yields the same
// node. An empty path returns n itself.
func (n *Namespace) EnsurePath(segments []string) *Namespace {
	cur := n
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		child, ok := cur.children[seg]
		if !ok {
			child = &Namespace{
				Name:     seg,
				Parent:   cur,
				children: make(map[string]*Namespace),
			}
			cur.children[seg] = child
			cur.childOrder = append(cur.childOrder, seg)
		}
		cur = child
	}
	return cur
}

// Attach inserts a leaf element under this namespace node.
func (n *Namespace) Attach(e *Element) {
	n.Elements = append(n.Elements, e)
	e.Namespace = n
}

// Detach removes an element from this node, preserving order of the rest.
func (n *Namespace) Detach(e *Element) {
	kept := n.Elements[:0]
	for _, el := range n.Elements {
		if el != e {
			kept = append(kept, el)
		}
	}
	n.Elements = kept
}

// Children returns child namespaces in creation order.
func (n *Namespace) Children() []*Namespace {
	out := make([]*Namespace, 0, len(n.childOrder))
	for _, name := range n.childOrder {
		out = append(out, n.children[name])
	}
	return out
}

// Path returns the segment names from the root (exclusive) down to this node.
func (n *Namespace) Path() []string {
	if n.IsRoot() {
		return nil
	}
	return append(n.Parent.Path(), n.Name)
}
