package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUpstream marks a page whose markup could not be obtained or parsed.
var ErrUpstream = errors.New("upstream failure")

// UpstreamError is the only extraction failure surfaced to callers. It is
// scoped to a single page.
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUpstream) match any UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Document is a read-only parsed markup tree.
type Document interface {
	// Find returns the first node matching selector.
	Find(selector string) (Node, bool)
	// FindAll returns every node matching selector in document order.
	FindAll(selector string) []Node
}

// Node is an element inside a Document. Queries on a node are scoped to its
// subtree.
type Node interface {
	Document
	Text() string
	Attr(name string) (string, bool)
}

// goqueryNode adapts a goquery selection to Node.
type goqueryNode struct {
	sel *goquery.Selection
}

// FromReader parses HTML into a Document.
func FromReader(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goqueryNode{sel: doc.Selection}, nil
}

// FromBytes parses raw markup fetched by a collaborator.
func FromBytes(markup []byte) (Document, error) {
	if len(bytes.TrimSpace(markup)) == 0 {
		return nil, errors.New("empty document")
	}
	return FromReader(bytes.NewReader(markup))
}

func (n goqueryNode) Find(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return goqueryNode{sel: found}, true
}

func (n goqueryNode) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, goqueryNode{sel: s})
	})
	return nodes
}

func (n goqueryNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n goqueryNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}
