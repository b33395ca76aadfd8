package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/papersum/internal/config"
	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/pipeline"
)

const testKey = "secret"

const testPage = `<html><body><article class="ltx_document">` +
	`<h1 class="ltx_title ltx_title_document">Test Paper</h1>` +
	`<div class="ltx_abstract"><p class="ltx_p">The abstract.</p></div>` +
	`<section class="ltx_section"><h2 class="ltx_title">1 Intro</h2>` +
	`<div class="ltx_para"><p class="ltx_p">Hello world.</p></div></section>` +
	`</article></body></html>`

type pageFetcher map[string]string

func (f pageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if p, ok := f[url]; ok {
		return []byte(p), nil
	}
	return nil, fmt.Errorf("no page for %s", url)
}

func newTestServer(t *testing.T, backend *generate.Backend) *Server {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store, err := corpus.NewStore(t.TempDir(), corpus.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{APIKey: testKey, WorkerCount: 1, MaxQueueSize: 4, JobTTL: time.Hour, MaxUploadBytes: 1 << 20}
	scraper := pipeline.NewScraper(pageFetcher{"https://example.org/p": testPage}, log, 1)
	orch := pipeline.NewOrchestrator(cfg, scraper, nil, store, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, backend, log, cfg)
}

func do(t *testing.T, s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil)
	for _, header := range []string{"", "Bearer wrong", "Basic secret"} {
		req := httptest.NewRequest(http.MethodGet, "/api/papers", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestExtract(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/extract?url=https://example.org/p", "text/html", testPage)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got map[string]any
	decode(t, rec, &got)
	for _, key := range []string{"title", "summary", "document", "url", "id"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected key %q in %v", key, got)
		}
	}
	if got["title"] != "Test Paper" || got["url"] != "https://example.org/p" {
		t.Errorf("unexpected paper: %v", got)
	}
	doc := got["document"].([]any)
	if len(doc) != 1 || doc[0].(map[string]any)["text"] != "Hello world." {
		t.Errorf("unexpected document: %v", doc)
	}
}

func TestExtract_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		body string
		want int
	}{
		{"<html><body>nothing</body></html>", http.StatusUnprocessableEntity},
		{`<article class="ltx_document"><h1>T</h1></article>`, http.StatusUnprocessableEntity},
		{"", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/api/extract", "text/html", tt.body)
		if rec.Code != tt.want {
			t.Errorf("body %q: expected %d, got %d", tt.body, tt.want, rec.Code)
		}
	}
}

func TestSubmitPaper_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing url", `{}`},
		{"relative url", `{"url":"papers/1"}`},
		{"bad method", `{"url":"https://example.org/p","summaries":[{"method":"one_shot","kind":"abstractive"}]}`},
		{"cot with kind", `{"url":"https://example.org/p","summaries":[{"method":"chain_of_thought","kind":"extractive"}]}`},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/api/papers", "application/json", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
	}
}

func TestSubmitPaper_RunsToCompletion(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/papers", "application/json", `{"url":"https://example.org/p"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &accepted)

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		decode(t, do(t, s, http.MethodGet, accepted.PollURL, "", ""), &snap)
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed job, got %+v", snap)
	}

	var list struct {
		Papers []corpus.PaperInfo `json:"papers"`
		Count  int                `json:"count"`
	}
	decode(t, do(t, s, http.MethodGet, "/api/papers", "", ""), &list)
	if list.Count != 1 || list.Papers[0].ID != snap.PaperID || list.Papers[0].Title != "Test Paper" {
		t.Errorf("unexpected listing: %+v", list)
	}

	rec = do(t, s, http.MethodGet, "/api/papers/"+snap.PaperID, "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Hello world."`) {
		t.Errorf("unexpected paper response %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/papers/"+snap.PaperID+"/summaries", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for summaries, got %d", rec.Code)
	}
}

func TestSubmitPaper_UploadedPage(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/papers?url=https://elsewhere.example/x", "text/html; charset=utf-8", testPage)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJobAndPaper_NotFound(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/jobs/nope", "/api/papers/0b3a3a43-2f7c-4b0e-9a43-0f7b7c4f1a11", "/api/papers/not-a-uuid/summaries"} {
		if rec := do(t, s, http.MethodGet, path, "", ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestLLMStats(t *testing.T) {
	s := newTestServer(t, nil)
	if rec := do(t, s, http.MethodGet, "/api/stats/llm", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without backend, got %d", rec.Code)
	}

	backend, err := generate.NewBackend(context.Background(), config.Config{
		GeneratorBackend:   config.BackendOpenChat,
		GeneratorURL:       "http://localhost:1",
		GeneratorModelName: "OpenChat Aura",
	})
	if err != nil {
		t.Fatal(err)
	}
	s = newTestServer(t, backend)
	rec := do(t, s, http.MethodGet, "/api/stats/llm", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["model"] != "OpenChat Aura" {
		t.Errorf("unexpected model %v", got["model"])
	}
}
