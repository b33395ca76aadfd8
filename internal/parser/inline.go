package parser

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// inlineKind classifies a child of a paragraph or heading.
type inlineKind int

const (
	inlineUnsupported inlineKind = iota
	inlineMath
	inlineFootnote
	inlineStyled
	inlineEquationTable
	inlineGeneric
)

func (k inlineKind) String() string {
	switch k {
	case inlineMath:
		return "math"
	case inlineFootnote:
		return "footnote"
	case inlineStyled:
		return "styled"
	case inlineEquationTable:
		return "equation_table"
	case inlineGeneric:
		return "generic"
	}
	return "unsupported"
}

// Footnotes carry the marker glyph and its spacing as the first two
// children of the note content.
const footnoteMarkerChildren = 2

func classifyInline(n *html.Node) inlineKind {
	if n.Type != html.ElementNode {
		return inlineUnsupported
	}
	switch n.Data {
	case "math":
		return inlineMath
	case "span", "a", "cite":
	default:
		return inlineUnsupported
	}
	switch {
	case classesEqual(n, "ltx_note", "ltx_role_footnote"):
		return inlineFootnote
	case classesEqual(n, "ltx_text"):
		return inlineStyled
	case classesEqual(n, "ltx_equation", "ltx_eqn_table"):
		return inlineEquationTable
	}
	return inlineGeneric
}

// normalizeText applies compatibility decomposition to a text payload.
func normalizeText(s string) string {
	return norm.NFKD.String(s)
}

// normalizeInline returns the text contribution of one inline element.
func normalizeInline(n *html.Node) string {
	switch classifyInline(n) {
	case inlineMath:
		alt, _ := attr(n, "alttext")
		return normalizeText(alt)
	case inlineFootnote:
		content := findNext(n, withClass("span", "ltx_note_content"))
		if content == nil {
			return "()"
		}
		frags := childFragments(content)
		if len(frags) > footnoteMarkerChildren {
			frags = frags[footnoteMarkerChildren:]
		} else {
			frags = nil
		}
		return "(" + strings.Join(frags, "") + ")"
	case inlineStyled:
		return strings.Join(childFragments(n), "")
	case inlineEquationTable:
		return ""
	case inlineGeneric:
		return normalizeText(textContent(n))
	}
	return ""
}

// normalizeNode handles both text leaves and inline elements.
func normalizeNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return normalizeText(n.Data)
	case html.ElementNode:
		return normalizeInline(n)
	}
	return ""
}

// childFragments normalizes every child of n, one fragment per child.
func childFragments(n *html.Node) []string {
	var frags []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		frags = append(frags, normalizeNode(c))
	}
	return frags
}
