package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/papersum/internal/doctree"
)

func TestChunkPaper_SmallBlocksStayWhole(t *testing.T) {
	paper := &doctree.Paper{
		Title: "Paper",
		Document: []doctree.Block{
			{Subtitle: "Intro", Text: "Hello world."},
			{Subtitle: "Method", Text: strings.Repeat("word ", 200)},
		},
	}
	chunks := ChunkPaper(paper, DefaultConfig())

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "Hello world." {
		t.Errorf("expected first block verbatim, got %q", chunks[0].Text)
	}
	for i, c := range chunks {
		if c.Index != i || c.BlockIndex != i {
			t.Errorf("chunk %d: expected index/block %d, got %d/%d", i, i, c.Index, c.BlockIndex)
		}
	}
	want := []string{"Paper", "Method"}
	if strings.Join(chunks[1].Breadcrumb, "|") != strings.Join(want, "|") {
		t.Errorf("expected breadcrumb %v, got %v", want, chunks[1].Breadcrumb)
	}
}

func TestChunkPaper_LargeBlockRequiresSplitting(t *testing.T) {
	// ~2700 words -> ~3600 tokens, one paragraph of sentences.
	large := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)
	paper := &doctree.Paper{
		Title:    "Large",
		Document: []doctree.Block{{Subtitle: "Intro", Text: "short"}, {Subtitle: "Big", Text: large}},
	}
	cfg := Config{ChunkSize: 500, ChunkOverlap: 50, MinChunk: 1}
	chunks := ChunkPaper(paper, cfg)

	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if i > 0 && c.BlockIndex != 1 {
			t.Errorf("chunk %d: expected block 1, got %d", i, c.BlockIndex)
		}
		// Sentence boundaries allow slight overflow.
		if tokens := EstimateTokens(c.Text); tokens > cfg.ChunkSize*2 {
			t.Errorf("chunk %d: %d tokens exceeds 2x target %d", i, tokens, cfg.ChunkSize)
		}
	}
}

func TestChunkPaper_SkipsEmptyBlocks(t *testing.T) {
	paper := &doctree.Paper{
		Document: []doctree.Block{{Subtitle: "Empty"}, {Subtitle: "Full", Text: "Content."}},
	}
	chunks := ChunkPaper(paper, DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].BlockIndex != 1 {
		t.Errorf("expected chunk from block 1, got %d", chunks[0].BlockIndex)
	}
}

func TestSplitText_Overlap(t *testing.T) {
	var sb strings.Builder
	for i := range 60 {
		sb.WriteString("Sentence number ")
		sb.WriteString(strings.Repeat("x", i%5+1))
		sb.WriteString(" ends here. ")
	}
	parts := SplitText(sb.String(), Config{ChunkSize: 60, ChunkOverlap: 10, MinChunk: 1})
	if len(parts) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(parts))
	}
	prevWords := strings.Fields(parts[0])
	tail := strings.Join(prevWords[len(prevWords)-3:], " ")
	if !strings.Contains(parts[1], tail) {
		t.Errorf("expected second part to start with overlap %q, got %q", tail, parts[1])
	}
}

func TestSplitText_MinChunkFiltering(t *testing.T) {
	if parts := SplitText("Hi", Config{ChunkSize: 1500, MinChunk: 100}); len(parts) != 0 {
		t.Errorf("expected 0 parts below MinChunk, got %d", len(parts))
	}
}

func TestSplitText_ZeroConfigUsesDefaults(t *testing.T) {
	parts := SplitText(strings.Repeat("word ", 200), Config{})
	if len(parts) != 1 {
		t.Errorf("expected 1 part with default config, got %d", len(parts))
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Four")
	want := []string{"One.", "Two!", "Three?", "Four"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if EstimateTokens("a") != 1 {
		t.Errorf("expected 1 token for a single word, got %d", EstimateTokens("a"))
	}
	if got := EstimateTokens(strings.Repeat("w ", 100)); got != 133 {
		t.Errorf("expected 133 tokens for 100 words, got %d", got)
	}
}
