package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/papersum/internal/doctree"
)

func TestWriteJSON_UTF16HasBOMAndReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	papers := []doctree.Paper{{
		Title:    "Über Graphs",
		Summary:  "Abstract with x^2",
		Document: []doctree.Block{{Subtitle: "1 Intro", Text: "Hello world."}},
		URL:      "https://ar5iv.labs.arxiv.org/html/2305.04856",
		ID:       "0b3a3a43-2f7c-4b0e-9a43-0f7b7c4f1a11",
	}}
	if err := WriteJSON(path, papers, UTF16); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) {
		t.Fatalf("expected little-endian BOM, got % x", raw[:2])
	}

	var got []doctree.Paper
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Über Graphs" || got[0].Document[0].Text != "Hello world." {
		t.Errorf("unexpected round trip: %+v", got)
	}
}

func TestReadJSON_PlainUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`[{"title":"T","document":[{"subtitle":"S","text":"x"}]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	var got []doctree.Paper
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0].Document[0].Subtitle != "S" {
		t.Errorf("unexpected decode: %+v", got)
	}
}

func TestWriteJSON_UnknownEncoding(t *testing.T) {
	if err := WriteJSON(filepath.Join(t.TempDir(), "x.json"), 1, Encoding("latin-1")); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"utf-8": UTF8, "UTF8": UTF8, "utf_16": UTF16, "utf-16le": UTF16} {
		got, err := ParseEncoding(in)
		if err != nil || got != want {
			t.Errorf("ParseEncoding(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseEncoding("ascii"); err == nil {
		t.Error("expected error for ascii")
	}
}

func TestLoadURLs(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "urls.yaml")
	os.WriteFile(yamlPath, []byte("urls:\n  - https://a.example/1\n  - \"  \"\n  - https://a.example/2\n"), 0o644)
	textPath := filepath.Join(dir, "urls.txt")
	os.WriteFile(textPath, []byte("# batch one\nhttps://b.example/1\n\n  https://b.example/2  \n"), 0o644)

	tests := []struct {
		path string
		want []string
	}{
		{yamlPath, []string{"https://a.example/1", "https://a.example/2"}},
		{textPath, []string{"https://b.example/1", "https://b.example/2"}},
	}
	for _, tt := range tests {
		got, err := LoadURLs(tt.path)
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.path, tt.want, got)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s[%d]: expected %q, got %q", tt.path, i, tt.want[i], got[i])
			}
		}
	}
}

func TestLoadURLs_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.yml")
	os.WriteFile(path, []byte("urls: [unterminated"), 0o644)
	if _, err := LoadURLs(path); err == nil {
		t.Error("expected parse error")
	}
}
