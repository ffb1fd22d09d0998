package scraper

import "strings"

// Locator is one candidate location for a field: a CSS selector and,
// for attribute-valued fields, the attribute names to read in priority order.
// An empty Attrs list means the node text is the value.
type Locator struct {
	Selector string   `yaml:"selector"`
	Attrs    []string `yaml:"attrs,omitempty"`
}

// UnmarshalYAML accepts either a bare selector string or a mapping with
// selector and attrs keys.
func (l *Locator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var sel string
	if err := unmarshal(&sel); err == nil {
		*l = Locator{Selector: sel}
		return nil
	}
	type plain Locator
	return unmarshal((*plain)(l))
}

// Chain is an ordered selector-fallback chain for one field.
type Chain []Locator

// TextChain builds a chain reading node text from each selector in order.
func TextChain(selectors ...string) Chain {
	c := make(Chain, len(selectors))
	for i, s := range selectors {
		c[i] = Locator{Selector: s}
	}
	return c
}

// AttrChain builds a chain reading attrs (in order) from each selector.
func AttrChain(attrs []string, selectors ...string) Chain {
	c := make(Chain, len(selectors))
	for i, s := range selectors {
		c[i] = Locator{Selector: s, Attrs: attrs}
	}
	return c
}

// ExtractField returns the text of the first node matched by selectors.
func ExtractField(doc Document, selectors []string) (string, bool) {
	return Extract(doc, TextChain(selectors...))
}

// ExtractAttr returns the first non-empty attribute among attrs on the first
// node matched by selectors.
func ExtractAttr(doc Document, selectors []string, attrs ...string) (string, bool) {
	return Extract(doc, AttrChain(attrs, selectors...))
}

// Extract evaluates chain against doc. Evaluation stops at the first locator
// whose selector matches a node, even when that node yields an empty value;
// the result is present only when the value is non-empty. A locator whose
// node panics while being looked up or read is skipped.
func Extract(doc Document, chain Chain) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, loc := range chain {
		node, ok := lookup(doc, loc.Selector)
		if !ok {
			continue
		}
		val, ok := read(node, loc.Attrs)
		if !ok {
			continue
		}
		return val, val != ""
	}
	return "", false
}

func lookup(doc Document, selector string) (node Node, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			node, ok = nil, false
		}
	}()
	if strings.TrimSpace(selector) == "" {
		return nil, false
	}
	return doc.Find(selector)
}

// read returns the value of node. ok is false only when the node panicked
// while being read.
func read(node Node, attrs []string) (val string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			val, ok = "", false
		}
	}()
	if len(attrs) == 0 {
		return strings.TrimSpace(node.Text()), true
	}
	for _, a := range attrs {
		if v, found := node.Attr(a); found && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", true
}

// findAll is FindAll with the same panic containment as lookup.
func findAll(doc Document, selector string) (nodes []Node) {
	defer func() {
		if r := recover(); r != nil {
			nodes = nil
		}
	}()
	return doc.FindAll(selector)
}
