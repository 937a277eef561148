// Package dom is a small host DOM: nodes, template content fragments,
// shadow roots, custom element upgrades and mutation observers.
//
// The tree is single-threaded. Only one goroutine may mutate a Document and
// its nodes at a time; mutation observers are notified when that goroutine
// calls Document.DeliverMutations.
package dom

import (
	"errors"
	"strings"
)

// Kind discriminates nodes. It is fixed when the node is created.
type Kind uint8

const (
	KindOther            Kind = iota // document, comment, doctype
	KindElement                      // element, including <template>
	KindDocumentFragment             // template content or shadow root
	KindText                         // character data
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindDocumentFragment:
		return "document-fragment"
	case KindText:
		return "text"
	default:
		return "other"
	}
}

// ErrHierarchy is returned when an insertion would create a cycle or put a
// node under a parent that cannot hold children.
var ErrHierarchy = errors.New("dom: hierarchy request")

// ErrNotFound is returned when removing a node that is not a child.
var ErrNotFound = errors.New("dom: node not found")

// Attr is a single attribute. Names are lower case.
type Attr struct {
	Name  string
	Value string
}

// Node is a node in a tree. Create nodes through a Document.
type Node struct {
	kind Kind
	tag  string // lower-case local name for elements, "#document"/"#comment" otherwise
	data string // text and comment data

	attrs    []Attr
	parent   *Node
	children []*Node
	doc      *Document

	content *Node // template content fragment
	shadow  *Node // attached shadow root, if any

	// set on shadow roots only
	host           *Node
	mode           ShadowMode
	delegatesFocus bool

	upgraded bool
}

// Kind returns the node's discriminator.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the lower-case tag name of an element, or a "#name" for
// other nodes.
func (n *Node) Tag() string { return n.tag }

// Data returns the character data of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data.
func (n *Node) SetData(s string) { n.data = s }

// OwnerDocument returns the document that created the node.
func (n *Node) OwnerDocument() *Document { return n.doc }

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool { return n.kind == KindElement }

// IsTemplate reports whether n is a <template> element.
func (n *Node) IsTemplate() bool { return n.kind == KindElement && n.tag == "template" }

// Content returns the content fragment of a template, nil for other nodes.
func (n *Node) Content() *Node { return n.content }

// Parent returns the parent node, nil when detached or at a fragment root.
func (n *Node) Parent() *Node { return n.parent }

// ParentElement returns the parent if it is an element.
func (n *Node) ParentElement() *Node {
	if n.parent != nil && n.parent.kind == KindElement {
		return n.parent
	}
	return nil
}

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// FirstElementChild returns the first child element or nil.
func (n *Node) FirstElementChild() *Node {
	for _, c := range n.children {
		if c.kind == KindElement {
			return c
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element or nil.
func (n *Node) NextElementSibling() *Node {
	if n.parent == nil {
		return nil
	}
	sibs := n.parent.children
	i := n.parent.indexOf(n)
	for _, c := range sibs[i+1:] {
		if c.kind == KindElement {
			return c
		}
	}
	return nil
}

// Elements returns the element children in order.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == KindElement {
			out = append(out, c)
		}
	}
	return out
}

// Attrs returns the attributes in source order.
func (n *Node) Attrs() []Attr { return n.attrs }

// Attribute returns the value of the named attribute and whether it exists.
func (n *Node) Attribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.Attribute(name)
	return ok
}

// SetAttribute adds or replaces an attribute.
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// RemoveAttribute deletes the named attribute if present.
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// TextContent concatenates the text of all descendants in tree order.
// Template content and shadow roots are not included.
func (n *Node) TextContent() string {
	if n.kind == KindText {
		return n.data
	}
	var b strings.Builder
	stack := reversed(n.children)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.kind == KindText {
			b.WriteString(c.data)
			continue
		}
		stack = append(stack, reversed(c.children)...)
	}
	return b.String()
}

// AppendChild appends c to n. If c is a plain document fragment (not a
// shadow root) its children are moved instead and c is left empty.
func (n *Node) AppendChild(c *Node) error {
	return n.InsertBefore(c, nil)
}

// InsertBefore inserts c before ref, or at the end when ref is nil.
// A node that already has a parent is removed from it first.
func (n *Node) InsertBefore(c, ref *Node) error {
	if !n.canHaveChildren() {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrNotFound
	}
	if c.kind == KindDocumentFragment {
		if c.host != nil {
			return ErrHierarchy
		}
		return n.insertFragment(c, ref)
	}
	if c == n || c.isInclusiveAncestorOf(n) {
		return ErrHierarchy
	}
	if c == ref {
		ref = nextSibling(c)
	}
	if old := c.parent; old != nil {
		old.removeChild(c)
		old.queueChildList(nil, []*Node{c})
	}
	n.insertAt(c, ref)
	n.queueChildList([]*Node{c}, nil)
	n.upgradeInserted([]*Node{c})
	return nil
}

func (n *Node) insertFragment(frag, ref *Node) error {
	if frag == n || frag.isInclusiveAncestorOf(n) {
		return ErrHierarchy
	}
	moved := frag.children
	if len(moved) == 0 {
		return nil
	}
	frag.children = nil
	for _, c := range moved {
		c.parent = nil
		n.insertAt(c, ref)
	}
	n.queueChildList(moved, nil)
	n.upgradeInserted(moved)
	return nil
}

// RemoveChild detaches c from n.
func (n *Node) RemoveChild(c *Node) error {
	if c.parent != n {
		return ErrNotFound
	}
	n.removeChild(c)
	n.queueChildList(nil, []*Node{c})
	return nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		_ = n.parent.RemoveChild(n)
	}
}

// ReplaceChildren removes every child of n.
func (n *Node) ReplaceChildren() {
	if len(n.children) == 0 {
		return
	}
	removed := n.children
	n.children = nil
	for _, c := range removed {
		c.parent = nil
	}
	n.queueChildList(nil, removed)
}

func (n *Node) canHaveChildren() bool {
	switch n.kind {
	case KindElement:
		// template children live in the content fragment
		return true
	case KindDocumentFragment:
		return true
	case KindOther:
		return n.doc != nil && n == n.doc.root
	}
	return false
}

func (n *Node) insertAt(c, ref *Node) {
	c.parent = n
	if ref == nil {
		n.children = append(n.children, c)
		return
	}
	i := n.indexOf(ref)
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

func (n *Node) removeChild(c *Node) {
	i := n.indexOf(c)
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

func (n *Node) isInclusiveAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func nextSibling(c *Node) *Node {
	if c.parent == nil {
		return nil
	}
	i := c.parent.indexOf(c)
	if i+1 < len(c.parent.children) {
		return c.parent.children[i+1]
	}
	return nil
}

func reversed(nodes []*Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, c := range nodes {
		out[len(nodes)-1-i] = c
	}
	return out
}
