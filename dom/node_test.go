package dom

import (
	"errors"
	"strings"
	"testing"
)

func tags(nodes []*Node) string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Tag())
	}
	return strings.Join(out, ",")
}

func TestAppendChild_MovesBetweenParents(t *testing.T) {
	d := NewDocument()
	a := d.CreateElement("div")
	b := d.CreateElement("div")
	c := d.CreateElement("p")

	if err := a.AppendChild(c); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendChild(c); err != nil {
		t.Fatal(err)
	}
	if len(a.Children()) != 0 {
		t.Fatal("c still listed under a")
	}
	if c.Parent() != b {
		t.Fatal("c parent is not b")
	}
}

func TestInsertBefore(t *testing.T) {
	d := NewDocument()
	p := d.CreateElement("div")
	x, y, z := d.CreateElement("x"), d.CreateElement("y"), d.CreateElement("z")
	_ = p.AppendChild(x)
	_ = p.AppendChild(z)

	if err := p.InsertBefore(y, z); err != nil {
		t.Fatal(err)
	}
	if got := tags(p.Children()); got != "x,y,z" {
		t.Fatalf("children: got %s", got)
	}
	if err := p.InsertBefore(d.CreateElement("w"), d.CreateElement("q")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign ref: got %v, want ErrNotFound", err)
	}
}

func TestAppendChild_RejectsCycles(t *testing.T) {
	d := NewDocument()
	a := d.CreateElement("div")
	b := d.CreateElement("div")
	_ = a.AppendChild(b)

	if err := b.AppendChild(a); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("cycle: got %v, want ErrHierarchy", err)
	}
	if err := a.AppendChild(a); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("self: got %v, want ErrHierarchy", err)
	}
	if err := d.CreateTextNode("t").AppendChild(d.CreateElement("i")); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("text parent: got %v, want ErrHierarchy", err)
	}
}

func TestAppendChild_FragmentMovesChildren(t *testing.T) {
	d := NewDocument()
	frag := d.CreateDocumentFragment()
	_ = frag.AppendChild(d.CreateElement("a"))
	_ = frag.AppendChild(d.CreateElement("b"))
	host := d.CreateElement("div")

	if err := host.AppendChild(frag); err != nil {
		t.Fatal(err)
	}
	if got := tags(host.Children()); got != "a,b" {
		t.Fatalf("children: got %s", got)
	}
	if len(frag.Children()) != 0 {
		t.Fatal("fragment should be emptied")
	}
	for _, c := range host.Children() {
		if c.Parent() != host {
			t.Fatalf("%s parent not updated", c.Tag())
		}
	}
}

func TestAppendChild_RejectsShadowRoot(t *testing.T) {
	d := NewDocument()
	host := d.CreateElement("div")
	root, err := host.AttachShadow(ShadowRootInit{Mode: ShadowOpen})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.CreateElement("div").AppendChild(root); !errors.Is(err, ErrHierarchy) {
		t.Fatalf("got %v, want ErrHierarchy", err)
	}
}

func TestTemplateContent(t *testing.T) {
	d := NewDocument()
	tmpl := d.CreateElement("TEMPLATE")
	if !tmpl.IsTemplate() {
		t.Fatal("tag should be lower-cased")
	}
	if tmpl.Content() == nil || tmpl.Content().Kind() != KindDocumentFragment {
		t.Fatal("template must own a content fragment")
	}
	if d.CreateElement("div").Content() != nil {
		t.Fatal("only templates have content")
	}
}

func TestAttributes(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("div")
	el.SetAttribute("ShadowRootMode", "open")
	if v, ok := el.Attribute("shadowrootmode"); !ok || v != "open" {
		t.Fatalf("got %q %v", v, ok)
	}
	el.SetAttribute("shadowrootmode", "closed")
	if len(el.Attrs()) != 1 {
		t.Fatalf("replace should not duplicate: %v", el.Attrs())
	}
	el.RemoveAttribute("shadowrootmode")
	if el.HasAttribute("shadowrootmode") {
		t.Fatal("attribute not removed")
	}
}

func TestTextContent(t *testing.T) {
	d := NewDocument()
	root := d.CreateElement("div")
	if err := SetInnerHTML(root, `a<b>b<i>c</i></b><template>hidden</template>d`, ParseOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := root.TextContent(); got != "abcd" {
		t.Fatalf("got %q", got)
	}
}

func TestAttachShadow(t *testing.T) {
	d := NewDocument()
	host := d.CreateElement("my-card")

	root, err := host.AttachShadow(ShadowRootInit{Mode: ShadowClosed, DelegatesFocus: true})
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsShadowRoot() || root.Host() != host || root.Mode() != ShadowClosed || !root.DelegatesFocus() {
		t.Fatal("shadow root fields not set")
	}
	if host.ShadowRoot() != nil {
		t.Fatal("closed root must not be reachable from the host")
	}
	if !host.HasShadowRoot() {
		t.Fatal("host should report a shadow root")
	}
	if _, err := host.AttachShadow(ShadowRootInit{Mode: ShadowOpen}); !errors.Is(err, ErrShadowRootExists) {
		t.Fatalf("second attach: got %v", err)
	}
}

func TestAttachShadow_Hosts(t *testing.T) {
	d := NewDocument()
	for tag, ok := range map[string]bool{
		"div": true, "span": true, "section": true, "x-foo": true,
		"a": false, "input": false, "template": false, "font-face": false,
	} {
		_, err := d.CreateElement(tag).AttachShadow(ShadowRootInit{Mode: ShadowOpen})
		if ok && err != nil {
			t.Errorf("%s: unexpected error %v", tag, err)
		}
		if !ok && !errors.Is(err, ErrNotSupported) {
			t.Errorf("%s: got %v, want ErrNotSupported", tag, err)
		}
	}
	if _, err := d.CreateElement("div").AttachShadow(ShadowRootInit{Mode: "bogus"}); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("bad mode: got %v", err)
	}
}

func TestParseShadowMode(t *testing.T) {
	cases := map[string]bool{"open": true, "closed": true, "": false, "Open": false, "unknown": false}
	for in, want := range cases {
		if _, ok := ParseShadowMode(in); ok != want {
			t.Errorf("%q: got %v, want %v", in, ok, want)
		}
	}
}

func TestDeclaredShadowMode(t *testing.T) {
	d := NewDocument()
	attrs := []string{AttrShadowRootMode, AttrShadowRootLegacy}
	tmpl := func(kv ...string) *Node {
		n := d.CreateElement("template")
		for i := 0; i < len(kv); i += 2 {
			n.SetAttribute(kv[i], kv[i+1])
		}
		return n
	}

	if m, ok := DeclaredShadowMode(tmpl("shadowrootmode", "closed"), attrs); !ok || m != ShadowClosed {
		t.Fatalf("mode attribute: got %q, %v", m, ok)
	}
	if m, ok := DeclaredShadowMode(tmpl("shadowroot", "open"), attrs); !ok || m != ShadowOpen {
		t.Fatalf("legacy attribute: got %q, %v", m, ok)
	}
	// the first attribute present decides, even with an invalid value
	if _, ok := DeclaredShadowMode(tmpl("shadowrootmode", "bogus", "shadowroot", "open"), attrs); ok {
		t.Fatal("invalid higher-priority value must not fall through")
	}
	if _, ok := DeclaredShadowMode(tmpl("shadowroot", "open"), []string{AttrShadowRootMode}); ok {
		t.Fatal("unconfigured attribute must be ignored")
	}
	div := d.CreateElement("div")
	div.SetAttribute("shadowrootmode", "open")
	if _, ok := DeclaredShadowMode(div, attrs); ok {
		t.Fatal("only templates are declarative")
	}
}

func TestIsCustomElementName(t *testing.T) {
	cases := map[string]bool{
		"test-log": true, "x-": true, "div": false, "Test-log": false,
		"1-a": false, "annotation-xml": false, "": false,
	}
	for in, want := range cases {
		if got := IsCustomElementName(in); got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}
}

func TestIsConnected_ThroughShadowHost(t *testing.T) {
	d := NewDocument()
	host := d.CreateElement("div")
	root, _ := host.AttachShadow(ShadowRootInit{Mode: ShadowOpen})
	inner := d.CreateElement("p")
	_ = root.AppendChild(inner)

	if inner.IsConnected() {
		t.Fatal("detached host")
	}
	_ = d.Root().AppendChild(host)
	if !inner.IsConnected() {
		t.Fatal("shadow content of a connected host is connected")
	}

	tmpl := d.CreateElement("template")
	_ = host.AppendChild(tmpl)
	p := d.CreateElement("p")
	_ = tmpl.Content().AppendChild(p)
	if p.IsConnected() {
		t.Fatal("template content is never connected")
	}
}

func TestUpgrade_ShadowIncludingOrder(t *testing.T) {
	d := NewDocument()
	var log []string
	d.Define("x-el", func(el *Node) {
		v, _ := el.Attribute("id")
		log = append(log, v)
	})

	mk := func(id string) *Node {
		el := d.CreateElement("x-el")
		el.SetAttribute("id", id)
		return el
	}
	a, b, c, e := mk("a"), mk("b"), mk("c"), mk("e")
	root, _ := a.AttachShadow(ShadowRootInit{Mode: ShadowOpen})
	_ = root.AppendChild(b)
	_ = a.AppendChild(c)
	tmpl := d.CreateElement("template")
	_ = tmpl.Content().AppendChild(e)
	_ = c.AppendChild(tmpl)

	_ = d.Root().AppendChild(a)

	if got := strings.Join(log, ","); got != "a,b,c" {
		t.Fatalf("upgrade order: got %s", got)
	}
	if e.Upgraded() {
		t.Fatal("template content must not upgrade")
	}

	// moving an upgraded element does not run the constructor again
	_ = d.Root().AppendChild(c)
	if len(log) != 3 {
		t.Fatalf("constructor ran again: %v", log)
	}
}

func TestDefine_UpgradesConnected(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("late-el")
	_ = d.Root().AppendChild(el)
	detached := d.CreateElement("late-el")

	calls := 0
	d.Define("late-el", func(*Node) { calls++ })

	if calls != 1 || !el.Upgraded() || detached.Upgraded() {
		t.Fatalf("calls %d, connected %v, detached %v", calls, el.Upgraded(), detached.Upgraded())
	}
	if !d.IsDefined("LATE-EL") {
		t.Fatal("IsDefined should ignore case")
	}
}
