package dom

import "strings"

// Constructor runs when a defined custom element is upgraded.
type Constructor func(el *Node)

// Document owns a tree, its custom element registry and its mutation
// observers.
type Document struct {
	root        *Node
	definitions map[string]Constructor

	observers []*MutationObserver
	pending   bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{definitions: make(map[string]Constructor)}
	d.root = &Node{kind: KindOther, tag: "#document", doc: d}
	return d
}

// Root returns the document node. It is the only connected tree root.
func (d *Document) Root() *Node { return d.root }

// Body returns the first <body> element of the document, or nil.
func (d *Document) Body() *Node {
	for _, n := range d.root.Elements() {
		if n.tag == "body" {
			return n
		}
		for _, c := range n.Elements() {
			if c.tag == "body" {
				return c
			}
		}
	}
	return nil
}

// CreateElement returns a detached element. Templates get an empty
// content fragment.
func (d *Document) CreateElement(tag string) *Node {
	n := &Node{kind: KindElement, tag: strings.ToLower(tag), doc: d}
	if n.tag == "template" {
		n.content = d.CreateDocumentFragment()
	}
	return n
}

// CreateTextNode returns a detached text node.
func (d *Document) CreateTextNode(data string) *Node {
	return &Node{kind: KindText, tag: "#text", data: data, doc: d}
}

// CreateComment returns a detached comment node.
func (d *Document) CreateComment(data string) *Node {
	return &Node{kind: KindOther, tag: "#comment", data: data, doc: d}
}

// CreateDocumentFragment returns an empty fragment.
func (d *Document) CreateDocumentFragment() *Node {
	return &Node{kind: KindDocumentFragment, tag: "#document-fragment", doc: d}
}

// Define registers a constructor for a custom element name. Connected
// elements with that name are upgraded immediately in tree order.
func (d *Document) Define(name string, ctor Constructor) {
	name = strings.ToLower(name)
	d.definitions[name] = ctor
	d.upgradeSubtree(d.root)
}

// IsDefined reports whether a constructor is registered for name.
func (d *Document) IsDefined(name string) bool {
	_, ok := d.definitions[strings.ToLower(name)]
	return ok
}

// IsConnected reports whether n is in the document, following shadow roots
// to their hosts.
func (n *Node) IsConnected() bool {
	p := n
	for p != nil {
		if p.doc != nil && p == p.doc.root {
			return true
		}
		if p.parent == nil && p.host != nil {
			p = p.host
			continue
		}
		p = p.parent
	}
	return false
}

// Upgraded reports whether a custom element constructor ran for n.
func (n *Node) Upgraded() bool { return n.upgraded }

func (n *Node) upgradeInserted(inserted []*Node) {
	if n.doc == nil || len(n.doc.definitions) == 0 || !n.IsConnected() {
		return
	}
	for _, c := range inserted {
		n.doc.upgradeSubtree(c)
	}
}

// upgradeSubtree upgrades every defined element under root (inclusive) in
// shadow-including tree order: an element, then its shadow tree, then its
// children. Template content is skipped.
func (d *Document) upgradeSubtree(root *Node) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.kind == KindElement && !n.upgraded {
			if ctor, ok := d.definitions[n.tag]; ok {
				n.upgraded = true
				ctor(n)
			}
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
		if n.shadow != nil {
			stack = append(stack, n.shadow)
		}
	}
}
