package pipeline

import "github.com/hazyhaar/shadowroot/dom"

type summary struct {
	roots     int
	closed    int
	templates int
}

// summarize counts shadow roots and leftover declarative templates across
// the light tree, open shadow trees and template content. Closed shadow
// trees are counted but not entered.
func summarize(root *dom.Node, declarative func(*dom.Node) bool) summary {
	var s summary
	stack := []*dom.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.HasShadowRoot() {
			s.roots++
			if sr := n.ShadowRoot(); sr != nil {
				stack = append(stack, sr)
			} else {
				s.closed++
			}
		}
		if n.IsTemplate() {
			if declarative(n) {
				s.templates++
			}
			stack = append(stack, n.Content())
		}
		stack = append(stack, n.Children()...)
	}
	return s
}
