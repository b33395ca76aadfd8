package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/papersum/internal/generate"
)

func init() {
	backoff = func(int) time.Duration { return 0 }
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const sep = "------------"

// fakeGenerator answers summary prompts with "S(<text>)", refine prompts
// with "<current>+<text>" and evaluation prompts through score.
type fakeGenerator struct {
	mu    sync.Mutex
	reqs  []generate.Request
	fail  func(prompt string, call int) error
	score func(pred string) string
}

func (f *fakeGenerator) Generate(ctx context.Context, req generate.Request) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	call := len(f.reqs)
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(req.Prompt, call); err != nil {
			return "", err
		}
	}

	text := promptText(req.Prompt)
	switch {
	case strings.Contains(req.Prompt, "Predicted summary"):
		if f.score == nil {
			return "0.5", nil
		}
		return f.score(text), nil
	case strings.Contains(req.Prompt, "existing summary up to a certain point: "):
		rest := req.Prompt[strings.Index(req.Prompt, "certain point: ")+len("certain point: "):]
		current := rest[:strings.Index(rest, "\n")]
		return current + "+" + text, nil
	}
	return "S(" + strings.ReplaceAll(text, "\n", "|") + ")", nil
}

func (f *fakeGenerator) requests() []generate.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generate.Request(nil), f.reqs...)
}

// promptText returns the text between the last pair of separator lines.
func promptText(prompt string) string {
	end := strings.LastIndex(prompt, "\n"+sep)
	if end < 0 {
		return prompt
	}
	start := strings.LastIndex(prompt[:end], sep+"\n")
	if start < 0 {
		return prompt
	}
	return prompt[start+len(sep)+1 : end]
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return []byte(p), nil
	}
	return nil, fmt.Errorf("no page for %s", url)
}

func paperPage(title string, sections ...string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><article class="ltx_document">`)
	sb.WriteString(`<h1 class="ltx_title ltx_title_document">` + title + `</h1>`)
	sb.WriteString(`<div class="ltx_abstract"><p class="ltx_p">Abstract of ` + title + `.</p></div>`)
	for i, text := range sections {
		sb.WriteString(fmt.Sprintf(`<section class="ltx_section"><h2 class="ltx_title">%d Part</h2>`, i+1))
		sb.WriteString(`<div class="ltx_para"><p class="ltx_p">` + text + `</p></div></section>`)
	}
	sb.WriteString(`</article></body></html>`)
	return sb.String()
}
