package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Style annotations such as "bold{...}" can survive normalization; the
// braced groups are dropped and the leading word kept.
var (
	bodyBraceRe    = regexp.MustCompile(`\b([a-zA-Z0-9]+)(?:\s*\{[^}]*\})+`)
	headingBraceRe = regexp.MustCompile(`\b([a-zA-Z0-9]+)(?:\{[^}]*\})+`)
)

// Cleanup strips brace-enclosed annotation groups that follow a word.
func Cleanup(s string) string {
	return bodyBraceRe.ReplaceAllString(s, "${1}")
}

func cleanupHeading(s string) string {
	return headingBraceRe.ReplaceAllString(s, "${1}")
}

// assembleParagraphs flattens a group of ltx_para containers into one string.
func assembleParagraphs(paras []*html.Node) string {
	var frags []string
	for _, para := range paras {
		for c := para.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "p":
				frags = append(frags, childFragments(c)...)
			case "table":
				if m := findFirst(c, withClass("math", "ltx_Math")); m != nil {
					frags = append(frags, normalizeInline(m))
				}
			}
		}
	}
	return Cleanup(collapseSpace(strings.Join(frags, " ")))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// paragraphContainers collects ltx_para blocks under n without entering
// nested section elements, which are emitted as their own blocks.
func paragraphContainers(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch {
			case c.Data == "section":
				continue
			case c.Data == "div" && hasClass(c, "ltx_para"):
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
