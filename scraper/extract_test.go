package scraper

import (
	"errors"
	"strings"
	"testing"
)

// stubDoc is a Document backed by a selector→node map that records every
// query it receives.
type stubDoc struct {
	nodes   map[string]*stubNode
	queried []string
}

type stubNode struct {
	text      string
	attrs     map[string]string
	panic     bool
	panicRead bool
}

func (d *stubDoc) Find(sel string) (Node, bool) {
	d.queried = append(d.queried, sel)
	n, ok := d.nodes[sel]
	if !ok {
		return nil, false
	}
	if n.panic {
		panic("malformed node")
	}
	return n, true
}

func (d *stubDoc) FindAll(sel string) []Node {
	if n, ok := d.Find(sel); ok {
		return []Node{n}
	}
	return nil
}

func (n *stubNode) Find(string) (Node, bool) { return nil, false }
func (n *stubNode) FindAll(string) []Node    { return nil }
func (n *stubNode) Text() string {
	if n.panicRead {
		panic("detached node")
	}
	return n.text
}

func (n *stubNode) Attr(name string) (string, bool) {
	if n.panicRead {
		panic("detached node")
	}
	v, ok := n.attrs[name]
	return v, ok
}

func TestExtractFieldFallsBackInOrder(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{"B": {text: "  from B  "}}}

	got, ok := ExtractField(doc, []string{"A", "B", "C"})
	if !ok || got != "from B" {
		t.Fatalf("ExtractField = (%q, %v); want (%q, true)", got, ok, "from B")
	}
	if strings.Join(doc.queried, ",") != "A,B" {
		t.Errorf("queried %v; want [A B] with C never touched", doc.queried)
	}
}

func TestExtractFieldShortCircuitsOnFirstMatch(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{
		"h1":     {text: "Headline"},
		".title": {text: "Generic title"},
	}}

	got, _ := ExtractField(doc, []string{"h1", ".title"})
	if got != "Headline" {
		t.Errorf("got %q; want the first configured selector to win", got)
	}
	if len(doc.queried) != 1 {
		t.Errorf("expected a single query, got %v", doc.queried)
	}
}

func TestExtractFieldAbsent(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{}}
	if got, ok := ExtractField(doc, []string{"A", "B"}); ok || got != "" {
		t.Errorf("ExtractField = (%q, %v); want absent", got, ok)
	}
	if _, ok := ExtractField(nil, []string{"A"}); ok {
		t.Error("nil document should yield absent")
	}
}

func TestExtractSwallowsPanickingCandidate(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{
		"A": {panic: true},
		"B": {text: "recovered"},
	}}

	got, ok := ExtractField(doc, []string{"A", "B"})
	if !ok || got != "recovered" {
		t.Errorf("ExtractField = (%q, %v); want (%q, true)", got, ok, "recovered")
	}
}

func TestExtractSkipsNodeThatPanicsOnRead(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{
		"A":   {panicRead: true},
		"B":   {text: "from B"},
		"img": {panicRead: true},
		"pic": {attrs: map[string]string{"src": "/b.jpg"}},
	}}

	if got, ok := ExtractField(doc, []string{"A", "B"}); !ok || got != "from B" {
		t.Errorf("ExtractField = (%q, %v); want (%q, true)", got, ok, "from B")
	}
	if got, ok := ExtractAttr(doc, []string{"img", "pic"}, "src"); !ok || got != "/b.jpg" {
		t.Errorf("ExtractAttr = (%q, %v); want (%q, true)", got, ok, "/b.jpg")
	}
}

func TestExtractAttrFallsBackAcrossAttributes(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{
		"img.lazy":  {attrs: map[string]string{"src": "placeholder.gif", "data-src": "/real.jpg"}},
		"img.plain": {attrs: map[string]string{"src": "/plain.jpg"}},
	}}

	if got, _ := ExtractAttr(doc, []string{"img.lazy"}, "data-src", "src"); got != "/real.jpg" {
		t.Errorf("lazy image: got %q; want /real.jpg", got)
	}
	if got, _ := ExtractAttr(doc, []string{"img.plain"}, "data-src", "src"); got != "/plain.jpg" {
		t.Errorf("plain image: got %q; want /plain.jpg", got)
	}
}

func TestExtractStopsAtMatchingNodeWithoutValue(t *testing.T) {
	doc := &stubDoc{nodes: map[string]*stubNode{
		"img.first":  {attrs: map[string]string{}},
		"img.second": {attrs: map[string]string{"src": "/second.jpg"}},
	}}

	got, ok := ExtractAttr(doc, []string{"img.first", "img.second"}, "src")
	if ok || got != "" {
		t.Errorf("got (%q, %v); the first matching node decides the field", got, ok)
	}
}

func TestExtractWithGoquery(t *testing.T) {
	html := `<html><body>
		<div class="product-title">  Boat   Airdopes 141 </div>
		<span data-testid="price">₹1,999</span>
		<div class="main-image"><img src="/ph.gif" data-src="/img/airdopes.png"></div>
	</body></html>`
	doc, err := FromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	sel := DefaultSelectors().Product
	p := ExtractProduct(doc, sel)

	if p.Name != "Boat   Airdopes 141" {
		t.Errorf("Name: got %q", p.Name)
	}
	if p.RawPrice != "₹1,999" {
		t.Errorf("RawPrice: got %q", p.RawPrice)
	}
	if p.ImageURL != "/img/airdopes.png" {
		t.Errorf("ImageURL: got %q", p.ImageURL)
	}
	if p.Description != "" {
		t.Errorf("Description: got %q; want empty", p.Description)
	}
}

func TestFromBytesRejectsEmptyMarkup(t *testing.T) {
	if _, err := FromBytes([]byte("  \n ")); err == nil {
		t.Error("expected error for empty markup")
	}
}

func TestUpstreamErrorMatchesSentinel(t *testing.T) {
	var err error = &UpstreamError{URL: "https://x.test", Err: errors.New("timeout")}
	if !errors.Is(err, ErrUpstream) {
		t.Error("UpstreamError should match ErrUpstream")
	}
	if !strings.Contains(err.Error(), "https://x.test") {
		t.Errorf("error %q should name the URL", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://www.snapdeal.com/products/mobiles", "/product/x/1", "https://www.snapdeal.com/product/x/1"},
		{"https://shop.test/a/b", "img/c.png", "https://shop.test/a/img/c.png"},
		{"https://shop.test", "https://cdn.test/i.png", "https://cdn.test/i.png"},
		{"", "/rel", "/rel"},
		{"https://shop.test", "", ""},
	}
	for _, tt := range tests {
		if got := Resolve(tt.base, tt.ref); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q; want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}
