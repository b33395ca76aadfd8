package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/papersum/internal/config"
	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/generate"
)

const samplePage = `<html><body><article class="ltx_document">` +
	`<h1 class="ltx_title ltx_title_document">CLI Paper</h1>` +
	`<div class="ltx_abstract"><p class="ltx_p">Abstract.</p></div>` +
	`<section class="ltx_section"><h2 class="ltx_title">1 Intro</h2>` +
	`<div class="ltx_para"><p class="ltx_p">Body.</p></div></section>` +
	`</article></body></html>`

func testGlobals(encoding string) *globals {
	return &globals{
		cfg:      config.Config{},
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		encoding: encoding,
	}
}

func TestExtractCmd_Stdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(samplePage), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := extractCmd(testGlobals("utf-8"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--url", "https://example.org/cli"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var p doctree.Paper
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if p.Title != "CLI Paper" || p.URL != "https://example.org/cli" || len(p.Document) != 1 {
		t.Errorf("unexpected paper: %+v", p)
	}
}

func TestExtractCmd_CorpusFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	os.WriteFile(path, []byte(samplePage), 0o644)
	out := filepath.Join(dir, "paper.json")

	cmd := extractCmd(testGlobals("utf-16"))
	cmd.SetArgs([]string{path, "-o", out})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var p doctree.Paper
	if err := corpus.ReadJSON(out, &p); err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.Summary != "Abstract." {
		t.Errorf("unexpected summary %q", p.Summary)
	}
}

func TestExtractCmd_NotAPaper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	os.WriteFile(path, []byte("<html></html>"), 0o644)
	cmd := extractCmd(testGlobals("utf-8"))
	cmd.SetArgs([]string{path})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for a page without a document")
	}
}

func TestSummaryFile(t *testing.T) {
	got := summaryFile("out", generate.FewShot, generate.Extractive)
	if got != filepath.Join("out", "few_shot_generated_summaries_extractive.json") {
		t.Errorf("unexpected file name %q", got)
	}
}
