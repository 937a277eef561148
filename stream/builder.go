package stream

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/shadowroot/dom"
)

// voidElements never take children, so they are not pushed.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// builder appends tokens to a live tree. It is a simplified tree builder:
// no implied tags, no foster parenting, no adoption agency. End tags close
// the nearest open element with the same name and are otherwise ignored.
type builder struct {
	doc   *dom.Document
	stack []*dom.Node // open elements, stack[0] is the feed parent

	openTemplates int
}

func newBuilder(doc *dom.Document, parent *dom.Node) *builder {
	return &builder{doc: doc, stack: []*dom.Node{parent}}
}

// insertionPoint is where the next node goes: the innermost open element,
// or its content when it is a template.
func (b *builder) insertionPoint() *dom.Node {
	top := b.stack[len(b.stack)-1]
	if top.IsTemplate() {
		return top.Content()
	}
	return top
}

// apply adds one token to the tree and returns how many nodes it created.
func (b *builder) apply(tok html.Token) (int, error) {
	switch tok.Type {
	case html.StartTagToken, html.SelfClosingTagToken:
		el := b.doc.CreateElement(tok.Data)
		for _, a := range tok.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			el.SetAttribute(name, a.Val)
		}
		if err := b.insertionPoint().AppendChild(el); err != nil {
			return 0, err
		}
		if tok.Type == html.SelfClosingTagToken || voidElements[el.Tag()] {
			return 1, nil
		}
		b.stack = append(b.stack, el)
		if el.IsTemplate() {
			b.openTemplates++
		}
		return 1, nil

	case html.EndTagToken:
		b.close(tok.Data)
		return 0, nil

	case html.TextToken:
		into := b.insertionPoint()
		if last := into.LastChild(); last != nil && last.Kind() == dom.KindText {
			last.SetData(last.Data() + tok.Data)
			return 0, nil
		}
		return 1, into.AppendChild(b.doc.CreateTextNode(tok.Data))

	case html.CommentToken:
		return 1, b.insertionPoint().AppendChild(b.doc.CreateComment(tok.Data))
	}
	// doctype tokens carry nothing the tree keeps
	return 0, nil
}

// close pops open elements down to and including the nearest one named tag.
func (b *builder) close(tag string) {
	for i := len(b.stack) - 1; i > 0; i-- {
		if b.stack[i].Tag() != tag {
			continue
		}
		for _, n := range b.stack[i:] {
			if n.IsTemplate() {
				b.openTemplates--
			}
		}
		b.stack = b.stack[:i]
		return
	}
}

// closeAll pops every open element, as at end of input.
func (b *builder) closeAll() {
	b.stack = b.stack[:1]
	b.openTemplates = 0
}

// inTemplate reports whether any streamed template is still open.
func (b *builder) inTemplate() bool { return b.openTemplates > 0 }
