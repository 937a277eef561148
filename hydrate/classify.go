package hydrate

import "github.com/hazyhaar/shadowroot/dom"

// shadowMode returns the requested mode of a template, or false when the
// template is not a promotion target.
func (h *Hydrator) shadowMode(tmpl *dom.Node) (dom.ShadowMode, bool) {
	return dom.DeclaredShadowMode(tmpl, h.opts.ModeAttributes)
}

// collectTemplates returns the templates under container in reverse
// document order, so the last element is the first to process. It does not
// descend into template content or shadow roots.
func collectTemplates(container *dom.Node) []*dom.Node {
	if container == nil {
		return nil
	}
	var found []*dom.Node
	stack := pushReversed(nil, container.Children())
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Kind() != dom.KindElement {
			continue
		}
		if n.IsTemplate() {
			found = append(found, n)
			continue
		}
		stack = pushReversed(stack, n.Children())
	}
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}

func pushReversed(stack, nodes []*dom.Node) []*dom.Node {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	return stack
}
