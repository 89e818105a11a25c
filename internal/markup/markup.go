// Package markup extracts named fields out of HTML that was never meant to
// be machine-read. Every lookup is best-effort: a missing node yields the
// zero value, never an error, so selector drift on the scraped pages
// degrades single fields instead of whole harvests.
package markup

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Locator identifies an element by tag plus either a class token or an
// attribute/value pair. Class matches any whitespace-separated token in the
// class attribute; Attr/Val matches exactly. An empty Tag matches any tag.
type Locator struct {
	Tag   string
	Class string
	Attr  string
	Val   string
}

func (l Locator) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if l.Tag != "" && n.Data != l.Tag {
		return false
	}
	if l.Class != "" && !HasClass(n, l.Class) {
		return false
	}
	if l.Attr != "" && AttrValue(n, l.Attr) != l.Val {
		return false
	}
	return true
}

// Find returns the first node under root matching the locator, depth-first,
// or nil.
func Find(root *html.Node, loc Locator) *html.Node {
	if root == nil {
		return nil
	}
	if loc.matches(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := Find(c, loc); n != nil {
			return n
		}
	}
	return nil
}

// FindAll returns every node under root matching the locator, in document
// order.
func FindAll(root *html.Node, loc Locator) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if loc.matches(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Text returns the trimmed text content of the first matching node, or ""
// when no node matches.
func Text(root *html.Node, loc Locator) string {
	return TextContent(Find(root, loc))
}

// Attr returns the named attribute of the first matching node, or "" when
// no node matches or the attribute is absent.
func Attr(root *html.Node, loc Locator, name string) string {
	return AttrValue(Find(root, loc), name)
}

// TextContent flattens all text nodes under n into one space-joined,
// trimmed string. Safe on nil.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			t := strings.TrimSpace(node.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// AttrValue returns the value of the named attribute on n, or "". Safe on
// nil.
func AttrValue(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasClass reports whether n carries the given class token.
func HasClass(n *html.Node, class string) bool {
	for _, tok := range strings.Fields(AttrValue(n, "class")) {
		if tok == class {
			return true
		}
	}
	return false
}

// Count parses human-compressed magnitudes the way the profile pages render
// them: "1.2k" is 1200, "3m" is 3000000, "3,400" is 3400. Anything
// unparsable is 0.
func Count(text string) int {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f * mult)
}
