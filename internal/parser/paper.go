package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// ParseHTML parses a rendered paper page and extracts its document model.
func ParseHTML(r io.Reader, url string) (*doctree.Paper, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := findFirst(doc, withClass("article", "ltx_document"))
	if root == nil {
		return nil, ErrNoDocument
	}
	return BuildPaper(root, url)
}

// BuildPaper walks the document root depth-first. For each section it emits
// the section, then every subsection followed by its subsubsections, then
// the section's paragraph-level units.
func BuildPaper(root *html.Node, url string) (*doctree.Paper, error) {
	title, err := headingText(root, "h1")
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}

	abstract := findFirst(root, withClass("div", "ltx_abstract"))
	if abstract == nil {
		return nil, ErrNoAbstract
	}
	summary, err := headingText(abstract, "p")
	if err != nil {
		return nil, fmt.Errorf("abstract: %w", err)
	}

	paper := &doctree.Paper{
		Title:    title,
		Summary:  summary,
		Document: []doctree.Block{},
		URL:      url,
		ID:       uuid.NewString(),
	}

	emit := func(n *html.Node, headingTag string, level int) error {
		block, err := extractSection(n, headingTag, level)
		if err != nil {
			return err
		}
		paper.Document = append(paper.Document, block)
		return nil
	}

	for i, section := range findAll(root, withClass("section", "ltx_section")) {
		if err := emit(section, "h2", 2); err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		for j, sub := range findAll(section, withClass("section", "ltx_subsection")) {
			if err := emit(sub, "h3", 3); err != nil {
				return nil, fmt.Errorf("section %d subsection %d: %w", i, j, err)
			}
			for k, subsub := range findAll(sub, withClass("section", "ltx_subsubsection")) {
				if err := emit(subsub, "h4", 4); err != nil {
					return nil, fmt.Errorf("section %d subsection %d subsubsection %d: %w", i, j, k, err)
				}
			}
		}
		// Paragraph units follow the whole subsection subtree, even when they
		// sit between subsections in the source.
		for j, para := range findAll(section, withClass("section", "ltx_paragraph")) {
			if err := emit(para, "h4", 4); err != nil {
				return nil, fmt.Errorf("section %d paragraph %d: %w", i, j, err)
			}
		}
	}

	return paper, nil
}
