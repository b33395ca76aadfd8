package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// matcher reports whether an element is the one being searched for.
type matcher func(*html.Node) bool

func isElement(tag string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// withClass matches tag elements whose class list contains token.
func withClass(tag, token string) matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag && hasClass(n, token)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func classList(n *html.Node) []string {
	v, _ := attr(n, "class")
	return strings.Fields(v)
}

func hasClass(n *html.Node, token string) bool {
	for _, c := range classList(n) {
		if c == token {
			return true
		}
	}
	return false
}

// classesEqual compares the node's class tokens against want as sets.
func classesEqual(n *html.Node, want ...string) bool {
	got := classList(n)
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]int, len(want))
	for _, c := range want {
		seen[c]++
	}
	for _, c := range got {
		if seen[c] == 0 {
			return false
		}
		seen[c]--
	}
	return true
}

// findFirst returns the first descendant of n, in document order, that matches.
func findFirst(n *html.Node, match matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every matching descendant of n in document order.
func findAll(n *html.Node, match matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// findNext returns the first matching node after n in document order,
// starting with n's own descendants.
func findNext(n *html.Node, match matcher) *html.Node {
	for cur := following(n); cur != nil; cur = following(cur) {
		if match(cur) {
			return cur
		}
	}
	return nil
}

func following(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for p := n; p != nil; p = p.Parent {
		if p.NextSibling != nil {
			return p.NextSibling
		}
	}
	return nil
}

// textContent concatenates all descendant text without trimming.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
