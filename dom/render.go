package dom

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
)

// RenderOptions controls serialization.
type RenderOptions struct {
	// IncludeShadowRoots serializes open shadow roots as declarative
	// <template> children of their hosts. Closed roots are never exposed.
	IncludeShadowRoots bool
	// ModeAttribute names the mode attribute written for shadow roots.
	// Default: AttrShadowRootMode.
	ModeAttribute string
	// Flatten inlines the content of every shadow root, open or closed,
	// ahead of the host's children with no wrapper. It takes precedence
	// over IncludeShadowRoots.
	Flatten bool
}

// Render writes n and its subtree as HTML. For the document node only the
// children are written.
func Render(w io.Writer, n *Node, opts RenderOptions) error {
	if opts.ModeAttribute == "" {
		opts.ModeAttribute = AttrShadowRootMode
	}
	var roots []*html.Node
	if (n.doc != nil && n == n.doc.root) || n.kind == KindDocumentFragment {
		roots = exportChildren(n, opts)
	} else {
		roots = []*html.Node{export(n, opts)}
	}
	for _, r := range roots {
		if r == nil {
			continue
		}
		if err := html.Render(w, r); err != nil {
			return err
		}
	}
	return nil
}

// InnerHTML serializes the children of n (the content of a template).
func InnerHTML(n *Node, opts RenderOptions) string {
	if opts.ModeAttribute == "" {
		opts.ModeAttribute = AttrShadowRootMode
	}
	var buf bytes.Buffer
	for _, c := range exportChildren(n, opts) {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML serializes n itself.
func OuterHTML(n *Node, opts RenderOptions) string {
	var buf bytes.Buffer
	_ = Render(&buf, n, opts)
	return buf.String()
}

type exportJob struct {
	src    *Node
	parent *html.Node
}

func exportChildren(n *Node, opts RenderOptions) []*html.Node {
	holder := &html.Node{Type: html.DocumentNode}
	exportInto(holder, childSources(n, opts), opts)
	var out []*html.Node
	for c := holder.FirstChild; c != nil; {
		next := c.NextSibling
		holder.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}

func export(n *Node, opts RenderOptions) *html.Node {
	holder := &html.Node{Type: html.DocumentNode}
	exportInto(holder, []*Node{n}, opts)
	c := holder.FirstChild
	if c != nil {
		holder.RemoveChild(c)
	}
	return c
}

// exportInto converts srcs under parent with an explicit stack.
func exportInto(parent *html.Node, srcs []*Node, opts RenderOptions) {
	var stack []exportJob
	push := func(nodes []*Node, p *html.Node) {
		for i := len(nodes) - 1; i >= 0; i-- {
			stack = append(stack, exportJob{src: nodes[i], parent: p})
		}
	}
	push(srcs, parent)

	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		src := job.src

		if src.IsShadowRoot() {
			// only reached with IncludeShadowRoots on an open root
			t := &html.Node{Type: html.ElementNode, Data: "template"}
			t.Attr = append(t.Attr, html.Attribute{Key: opts.ModeAttribute, Val: string(src.mode)})
			if src.delegatesFocus {
				t.Attr = append(t.Attr, html.Attribute{Key: AttrShadowRootDelegatesFocus})
			}
			job.parent.AppendChild(t)
			push(src.children, t)
			continue
		}

		var out *html.Node
		switch src.kind {
		case KindElement:
			out = &html.Node{Type: html.ElementNode, Data: src.tag}
			for _, a := range src.attrs {
				out.Attr = append(out.Attr, html.Attribute{Key: a.Name, Val: a.Value})
			}
		case KindText:
			out = &html.Node{Type: html.TextNode, Data: src.data}
		case KindOther:
			switch src.tag {
			case "#comment":
				out = &html.Node{Type: html.CommentNode, Data: src.data}
			case "#doctype":
				out = &html.Node{Type: html.DoctypeNode, Data: src.data}
			}
		case KindDocumentFragment:
			push(src.children, job.parent)
			continue
		}
		if out == nil {
			continue
		}
		job.parent.AppendChild(out)
		push(childSources(src, opts), out)
	}
}

// childSources lists what is rendered inside n: its shadow root (or the
// shadow root's children when flattening), then its children or template
// content.
func childSources(n *Node, opts RenderOptions) []*Node {
	var out []*Node
	if n.shadow != nil {
		switch {
		case opts.Flatten:
			out = append(out, n.shadow.children...)
		case opts.IncludeShadowRoots && n.shadow.mode == ShadowOpen:
			out = append(out, n.shadow)
		}
	}
	if n.IsTemplate() {
		return append(out, n.content.children...)
	}
	return append(out, n.children...)
}
