package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseOptions controls how markup is turned into nodes.
type ParseOptions struct {
	// NativeShadowRoots makes the parser attach declarative shadow roots
	// itself, the way a browser with native support does.
	NativeShadowRoots bool
	// ModeAttribute is the attribute the native parser reads.
	// Default: AttrShadowRootMode.
	ModeAttribute string
}

func (o *ParseOptions) defaults() {
	if o.ModeAttribute == "" {
		o.ModeAttribute = AttrShadowRootMode
	}
}

// ParseHTML parses a full document from r and appends the result to the
// document root.
func ParseHTML(d *Document, r io.Reader, opts ParseOptions) error {
	opts.defaults()
	src, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("dom: parse: %w", err)
	}
	frag := d.CreateDocumentFragment()
	d.importChildren(src, frag, opts)
	return d.root.AppendChild(frag)
}

// ParseFragment parses markup as the children of a context element (body
// when context is nil) and returns them in a detached fragment.
func ParseFragment(d *Document, context *Node, markup string, opts ParseOptions) (*Node, error) {
	opts.defaults()
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if context != nil && context.kind == KindElement {
		ctx = &html.Node{Type: html.ElementNode, Data: context.tag, DataAtom: atom.Lookup([]byte(context.tag))}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	frag := d.CreateDocumentFragment()
	src := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		src.AppendChild(n)
	}
	d.importChildren(src, frag, opts)
	return frag, nil
}

// SetInnerHTML replaces the children of n (the content of a template) with
// the parsed markup.
func SetInnerHTML(n *Node, markup string, opts ParseOptions) error {
	if n.doc == nil {
		return fmt.Errorf("dom: set inner html: node has no owner document")
	}
	frag, err := ParseFragment(n.doc, n, markup, opts)
	if err != nil {
		return err
	}
	target := n
	if n.IsTemplate() {
		target = n.content
	}
	target.ReplaceChildren()
	return target.AppendChild(frag)
}

type importJob struct {
	src    *html.Node
	parent *Node
}

// importChildren converts the children of src into detached nodes under
// into. It uses an explicit stack so input depth is not bounded by the Go
// call stack.
func (d *Document) importChildren(src *html.Node, into *Node, opts ParseOptions) {
	var stack []importJob
	pushChildren := func(s *html.Node, parent *Node) {
		start := len(stack)
		for c := s.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, importJob{src: c, parent: parent})
		}
		for i, j := start, len(stack)-1; i < j; i, j = i+1, j-1 {
			stack[i], stack[j] = stack[j], stack[i]
		}
	}
	pushChildren(src, into)

	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := d.importNode(job.src)
		if n == nil {
			continue
		}
		container := n
		if n.IsTemplate() {
			container = n.content
			if opts.NativeShadowRoots {
				if root := d.attachDeclarative(job.parent, n, opts); root != nil {
					pushChildren(job.src, root)
					continue
				}
			}
		}
		n.parent = job.parent
		job.parent.children = append(job.parent.children, n)
		pushChildren(job.src, container)
	}
}

func (d *Document) importNode(src *html.Node) *Node {
	switch src.Type {
	case html.ElementNode:
		n := d.CreateElement(src.Data)
		for _, a := range src.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.SetAttribute(name, a.Val)
		}
		return n
	case html.TextNode:
		return d.CreateTextNode(src.Data)
	case html.CommentNode:
		return d.CreateComment(src.Data)
	case html.DoctypeNode:
		return &Node{kind: KindOther, tag: "#doctype", data: src.Data, doc: d}
	}
	return nil
}

// attachDeclarative is the native parser path: a template with a valid mode
// under an element that can still take a shadow root becomes that root.
func (d *Document) attachDeclarative(parent, tmpl *Node, opts ParseOptions) *Node {
	if parent.kind != KindElement {
		return nil
	}
	v, ok := tmpl.Attribute(opts.ModeAttribute)
	if !ok {
		return nil
	}
	mode, ok := ParseShadowMode(v)
	if !ok {
		return nil
	}
	root, err := parent.AttachShadow(ShadowRootInit{
		Mode:           mode,
		DelegatesFocus: tmpl.HasAttribute(AttrShadowRootDelegatesFocus),
	})
	if err != nil {
		return nil
	}
	return root
}
