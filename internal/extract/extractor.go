// Package extract segments page markup into hierarchical search records.
package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/gridkit/internal/record"
)

// Extractor walks a parsed page and groups text under heading levels.
// It is safe for concurrent use.
type Extractor struct {
	sel compiled
}

// New compiles the selectors into an Extractor.
func New(s Selectors) (*Extractor, error) {
	c, err := compile(s)
	if err != nil {
		return nil, err
	}
	return &Extractor{sel: c}, nil
}

// Extract parses HTML from r and returns its records in document order.
func (e *Extractor) Extract(r io.Reader, pageURL string) ([]record.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return e.ExtractNode(doc, pageURL), nil
}

// ExtractNode extracts records from an already parsed document.
func (e *Extractor) ExtractNode(doc *html.Node, pageURL string) []record.Record {
	start := doc
	if e.sel.root != nil {
		if n := e.sel.root.MatchFirst(doc); n != nil {
			start = n
		}
	} else if body := findBody(doc); body != nil {
		start = body
	}

	w := &walker{sel: &e.sel, url: pageURL, level: -1}
	w.walk(start)
	w.flush()
	return w.out
}

type walker struct {
	sel   *compiled
	url   string
	cur   record.Record
	level int // deepest heading level seen for cur, -1 before the first
	out   []record.Record
}

func (w *walker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if skipElement(n) {
			return
		}
		if lvl := w.levelOf(n); lvl >= 0 {
			w.heading(n, lvl)
			return
		}
		if w.sel.text.Match(n) {
			w.text(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// levelOf returns the most significant level whose selector matches n.
func (w *walker) levelOf(n *html.Node) int {
	for i, sel := range w.sel.levels {
		if sel != nil && sel.Match(n) {
			return i
		}
	}
	return -1
}

func (w *walker) heading(n *html.Node, lvl int) {
	anchor := anchorOf(n)
	switch {
	case w.level < 0 && w.cur.Text == "":
		// First heading: start accumulating here.
	case lvl > w.level && w.cur.Text == "":
		// Sub-heading with nothing collected yet extends the same record;
		// it keeps the parent's anchor unless it has its own.
	default:
		w.flush()
		w.cur.ClearFrom(lvl)
		w.cur.Text = ""
		w.cur.Anchor = ""
	}
	w.cur.SetLevel(lvl, textContent(n))
	if anchor != "" {
		w.cur.Anchor = anchor
	}
	w.level = lvl
}

func (w *walker) text(n *html.Node) {
	t := textContent(n)
	if t == "" {
		return
	}
	if w.cur.Text != "" {
		w.cur.Text += "\n"
	}
	w.cur.Text += t
}

func (w *walker) flush() {
	if strings.TrimSpace(w.cur.Text) == "" {
		return
	}
	rec := w.cur
	rec.URL = w.url
	w.out = append(w.out, rec)
}

func skipElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// anchorOf returns n's own id or name, falling back to the nearest
// descendant carrying one.
func anchorOf(n *html.Node) string {
	if a := ownAnchor(n); a != "" {
		return a
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if a := anchorOf(c); a != "" {
			return a
		}
	}
	return ""
}

func ownAnchor(n *html.Node) string {
	var name string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "id":
			if v := strings.TrimSpace(attr.Val); v != "" {
				return v
			}
		case "name":
			name = strings.TrimSpace(attr.Val)
		}
	}
	return name
}

// textContent returns the whitespace-normalized text below n, without
// script and style content.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipElement(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// Title returns the text of the document's <title>.
func Title(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := Title(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
