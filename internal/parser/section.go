package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/papersum/internal/doctree"
	"golang.org/x/net/html"
)

var (
	ErrNoDocument     = errors.New("no ltx_document article")
	ErrNoAbstract     = errors.New("no ltx_abstract container")
	ErrMissingHeading = errors.New("heading not found")
)

// headingText reads the first headingTag element under n.
func headingText(n *html.Node, headingTag string) (string, error) {
	h := findFirst(n, isElement(headingTag))
	if h == nil {
		return "", fmt.Errorf("%w: <%s>", ErrMissingHeading, headingTag)
	}
	var sb strings.Builder
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(normalizeText(c.Data)))
			continue
		}
		sb.WriteString(normalizeNode(c))
	}
	return cleanupHeading(sb.String()), nil
}

// extractSection builds the block for one section-level container.
func extractSection(section *html.Node, headingTag string, level int) (doctree.Block, error) {
	subtitle, err := headingText(section, headingTag)
	if err != nil {
		return doctree.Block{}, err
	}
	return doctree.Block{
		Subtitle: subtitle,
		Text:     assembleParagraphs(paragraphContainers(section)),
		Level:    level,
	}, nil
}
