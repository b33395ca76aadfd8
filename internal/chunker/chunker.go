package chunker

import (
	"strings"

	"github.com/dgallion1/papersum/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig fits one chunk plus prompt scaffolding inside an 8k-token model.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    6000,
		ChunkOverlap: 200,
		MinChunk:     1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 4
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// ChunkPaper cuts every non-empty block into prompt-sized chunks, keeping
// block order. A block that fits stays whole.
func ChunkPaper(paper *doctree.Paper, cfg Config) []doctree.Chunk {
	cfg = cfg.withDefaults()

	var chunks []doctree.Chunk
	for i, block := range paper.Document {
		for _, part := range SplitText(block.Text, cfg) {
			chunks = append(chunks, doctree.Chunk{
				Text:       part,
				Index:      len(chunks),
				BlockIndex: i,
				Breadcrumb: breadcrumb(paper.Title, block.Subtitle),
			})
		}
	}
	return chunks
}

// SplitText breaks text into chunks of roughly cfg.ChunkSize tokens with
// cfg.ChunkOverlap tokens carried between neighbours. Chunks under
// cfg.MinChunk tokens are dropped.
func SplitText(text string, cfg Config) []string {
	cfg = cfg.withDefaults()
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var parts []string
	if EstimateTokens(text) <= cfg.ChunkSize {
		parts = []string{text}
	} else {
		var small []string
		flush := func() {
			parts = append(parts, pack(small, "\n\n", cfg)...)
			small = nil
		}
		for _, para := range splitByParagraphs(text) {
			if EstimateTokens(para) > cfg.ChunkSize {
				flush()
				parts = append(parts, pack(splitSentences(para), " ", cfg)...)
				continue
			}
			small = append(small, para)
		}
		flush()
	}

	out := parts[:0]
	for _, p := range parts {
		if EstimateTokens(p) >= cfg.MinChunk {
			out = append(out, p)
		}
	}
	return out
}

// pack greedily joins units with sep until the next unit would overflow the
// target, starting each new chunk with overlap from the previous one.
func pack(units []string, sep string, cfg Config) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, unit := range units {
		unitTokens := EstimateTokens(unit)
		if currentTokens+unitTokens > cfg.ChunkSize && currentTokens > 0 {
			result = append(result, current.String())
			overlap := overlapText(current.String(), cfg.ChunkOverlap)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(unit)
		currentTokens += unitTokens
	}
	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences splits after '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapText returns roughly the last targetTokens tokens of text.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / tokensPerWord)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func breadcrumb(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
