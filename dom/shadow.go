package dom

import (
	"errors"
	"strings"
)

// ShadowMode is the encapsulation mode of a shadow root.
type ShadowMode string

const (
	ShadowOpen   ShadowMode = "open"
	ShadowClosed ShadowMode = "closed"
)

// ParseShadowMode maps an attribute value to a mode. Only the exact
// values "open" and "closed" are accepted.
func ParseShadowMode(s string) (ShadowMode, bool) {
	switch ShadowMode(s) {
	case ShadowOpen:
		return ShadowOpen, true
	case ShadowClosed:
		return ShadowClosed, true
	}
	return "", false
}

// DeclaredShadowMode returns the shadow root mode a template requests
// through the first of attrs it carries. A template is declarative only
// when that first attribute holds a valid mode; later attributes are not
// consulted.
func DeclaredShadowMode(tmpl *Node, attrs []string) (ShadowMode, bool) {
	if !tmpl.IsTemplate() {
		return "", false
	}
	for _, name := range attrs {
		if v, ok := tmpl.Attribute(name); ok {
			return ParseShadowMode(v)
		}
	}
	return "", false
}

// Attribute names of the declarative shadow root markup convention.
const (
	AttrShadowRootMode           = "shadowrootmode"
	AttrShadowRootLegacy         = "shadowroot"
	AttrShadowRootDelegatesFocus = "shadowrootdelegatesfocus"
)

var (
	// ErrShadowRootExists is returned by AttachShadow when the host already
	// carries a shadow root.
	ErrShadowRootExists = errors.New("dom: host already has a shadow root")
	// ErrNotSupported is returned by AttachShadow for elements that cannot
	// host a shadow root.
	ErrNotSupported = errors.New("dom: element cannot host a shadow root")
)

// ShadowRootInit configures AttachShadow.
type ShadowRootInit struct {
	Mode           ShadowMode
	DelegatesFocus bool
}

// hostable lists the built-in elements allowed to carry a shadow root.
// Valid custom element names are always allowed.
var hostable = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "body": true,
	"div": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "main": true,
	"nav": true, "p": true, "section": true, "span": true,
}

// AttachShadow creates a shadow root on n. The returned root is the only
// handle to a closed shadow root.
func (n *Node) AttachShadow(init ShadowRootInit) (*Node, error) {
	if n.kind != KindElement {
		return nil, ErrNotSupported
	}
	if !hostable[n.tag] && !IsCustomElementName(n.tag) {
		return nil, ErrNotSupported
	}
	if _, ok := ParseShadowMode(string(init.Mode)); !ok {
		return nil, ErrNotSupported
	}
	if n.shadow != nil {
		return nil, ErrShadowRootExists
	}
	root := &Node{
		kind:           KindDocumentFragment,
		tag:            "#shadow-root",
		doc:            n.doc,
		host:           n,
		mode:           init.Mode,
		delegatesFocus: init.DelegatesFocus,
	}
	n.shadow = root
	return root, nil
}

// ShadowRoot returns the open shadow root of n, nil if there is none or it
// is closed.
func (n *Node) ShadowRoot() *Node {
	if n.shadow != nil && n.shadow.mode == ShadowOpen {
		return n.shadow
	}
	return nil
}

// HasShadowRoot reports whether n carries a shadow root of any mode.
func (n *Node) HasShadowRoot() bool { return n.shadow != nil }

// IsShadowRoot reports whether n is a shadow root.
func (n *Node) IsShadowRoot() bool { return n.host != nil }

// Host returns the host of a shadow root.
func (n *Node) Host() *Node { return n.host }

// Mode returns the mode of a shadow root.
func (n *Node) Mode() ShadowMode { return n.mode }

// DelegatesFocus reports the delegates-focus flag of a shadow root.
func (n *Node) DelegatesFocus() bool { return n.delegatesFocus }

// IsCustomElementName reports whether name is a valid custom element name:
// a lower-case ASCII letter first, at least one hyphen, and not one of the
// reserved hyphenated SVG/MathML names.
func IsCustomElementName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' || !strings.Contains(name, "-") {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 'A' && c <= 'Z' {
			return false
		}
	}
	switch name {
	case "annotation-xml", "color-profile", "font-face", "font-face-src",
		"font-face-uri", "font-face-format", "font-face-name", "missing-glyph":
		return false
	}
	return true
}
