package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/papersum/internal/chunker"
	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/generate"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyPaper is returned when a paper has no text to summarize.
var ErrEmptyPaper = errors.New("paper has no text to summarize")

// maxReduceRounds bounds how often joined section summaries are re-summarized
// before the final prompt.
const maxReduceRounds = 3

// Summarizer produces paper summaries with a text generator.
type Summarizer struct {
	gen           generate.Generator
	log           *slog.Logger
	chunkCfg      chunker.Config
	maxConcurrent int
}

func NewSummarizer(gen generate.Generator, log *slog.Logger, chunkCfg chunker.Config, maxConcurrent int) *Summarizer {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	if chunkCfg.ChunkSize <= 0 {
		chunkCfg = chunker.DefaultConfig()
	}
	return &Summarizer{gen: gen, log: log, chunkCfg: chunkCfg, maxConcurrent: maxConcurrent}
}

func (s *Summarizer) generate(ctx context.Context, req generate.Request) (string, error) {
	return withRetry(ctx, s.log, "generate", func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, req)
	})
}

// Sectionwise summarizes every chunk of the paper concurrently, joins the
// chunk summaries in document order and summarizes the joined text once more.
// Chunks whose generation fails are left out; the call fails only when none
// succeed.
func (s *Summarizer) Sectionwise(ctx context.Context, paper *doctree.Paper, method generate.Method, kind generate.Kind) (doctree.SummaryRecord, error) {
	log := s.log.With("paper_id", paper.ID, "method", method, "kind", kind)
	if _, err := generate.SummaryPrompt(method, kind, ""); err != nil {
		return doctree.SummaryRecord{}, err
	}

	chunks := chunker.ChunkPaper(paper, s.chunkCfg)
	if len(chunks) == 0 {
		return doctree.SummaryRecord{}, ErrEmptyPaper
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	joined, err := s.summarizeEach(ctx, log, texts, method, kind)
	if err != nil {
		return doctree.SummaryRecord{}, err
	}

	for round := 0; round < maxReduceRounds && chunker.EstimateTokens(joined) > s.chunkCfg.ChunkSize; round++ {
		log.Info("reducing joined summaries", "round", round, "tokens", chunker.EstimateTokens(joined))
		if joined, err = s.summarizeEach(ctx, log, chunker.SplitText(joined, s.chunkCfg), method, kind); err != nil {
			return doctree.SummaryRecord{}, err
		}
	}

	prompt, _ := generate.SummaryPrompt(method, kind, joined)
	out, err := s.generate(ctx, generate.Request{Prompt: prompt, Temperature: generate.SummaryTemperature})
	if err != nil {
		return doctree.SummaryRecord{}, fmt.Errorf("final summary: %w", err)
	}
	log.Info("sectionwise summary complete", "chunks", len(chunks))

	return doctree.SummaryRecord{
		Title:          paper.Title,
		GTSummary:      paper.Summary,
		ID:             paper.ID,
		PredSummary:    generate.PlainText(out),
		Method:         string(method),
		ExtractionType: string(kind),
	}, nil
}

// summarizeEach summarizes texts concurrently and joins the results in input
// order with newlines.
func (s *Summarizer) summarizeEach(ctx context.Context, log *slog.Logger, texts []string, method generate.Method, kind generate.Kind) (string, error) {
	var (
		mu      sync.Mutex
		results = make(map[int]string, len(texts))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, text := range texts {
		g.Go(func() error {
			prompt, err := generate.SummaryPrompt(method, kind, text)
			if err != nil {
				return err
			}
			out, err := s.generate(gctx, generate.Request{Prompt: prompt, Temperature: generate.SummaryTemperature})
			if err != nil {
				log.Warn("chunk summary failed", "chunk", i, "error", err)
				return nil
			}
			mu.Lock()
			results[i] = generate.PlainText(out)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("all %d chunk summaries failed", len(texts))
	}

	keys := make([]int, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = results[k]
	}
	return strings.Join(parts, "\n"), nil
}

// ChainOfThought summarizes the first chunk, then refines that summary with
// each following chunk in order. A paper with one chunk gets the base summary.
func (s *Summarizer) ChainOfThought(ctx context.Context, paper *doctree.Paper) (doctree.SummaryRecord, error) {
	log := s.log.With("paper_id", paper.ID, "method", generate.ChainOfThought)
	chunks := chunker.ChunkPaper(paper, s.chunkCfg)
	if len(chunks) == 0 {
		return doctree.SummaryRecord{}, ErrEmptyPaper
	}

	current, err := s.generate(ctx, generate.Request{
		Prompt:      generate.BasePrompt(chunks[0].Text),
		Temperature: generate.RefineTemperature,
	})
	if err != nil {
		return doctree.SummaryRecord{}, fmt.Errorf("base summary: %w", err)
	}
	current = generate.PlainText(current)

	for _, c := range chunks[1:] {
		refined, err := s.generate(ctx, generate.Request{
			Prompt:      generate.RefinePrompt(current, c.Text),
			Temperature: generate.RefineTemperature,
		})
		if err != nil {
			return doctree.SummaryRecord{}, fmt.Errorf("refine chunk %d: %w", c.Index, err)
		}
		current = generate.PlainText(refined)
	}
	log.Info("chain of thought summary complete", "chunks", len(chunks))

	return doctree.SummaryRecord{
		Title:          paper.Title,
		GTSummary:      paper.Summary,
		ID:             paper.ID,
		PredSummary:    current,
		Method:         string(generate.ChainOfThought),
		ExtractionType: string(generate.KindNone),
	}, nil
}

// SectionwiseAll runs Sectionwise over papers one at a time, since each
// paper already fans out over its chunks.
func (s *Summarizer) SectionwiseAll(ctx context.Context, papers []doctree.Paper, method generate.Method, kind generate.Kind) ([]doctree.SummaryRecord, []Failure, error) {
	return s.batch(ctx, papers, 1, func(ctx context.Context, p *doctree.Paper) (doctree.SummaryRecord, error) {
		return s.Sectionwise(ctx, p, method, kind)
	})
}

// ChainOfThoughtAll runs ChainOfThought over papers concurrently.
func (s *Summarizer) ChainOfThoughtAll(ctx context.Context, papers []doctree.Paper) ([]doctree.SummaryRecord, []Failure, error) {
	return s.batch(ctx, papers, s.maxConcurrent, s.ChainOfThought)
}

func (s *Summarizer) batch(ctx context.Context, papers []doctree.Paper, limit int, fn func(context.Context, *doctree.Paper) (doctree.SummaryRecord, error)) ([]doctree.SummaryRecord, []Failure, error) {
	var (
		mu       sync.Mutex
		results  = make(map[int]doctree.SummaryRecord, len(papers))
		failures []Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range papers {
		g.Go(func() error {
			rec, err := fn(gctx, &papers[i])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("summary failed", "index", i, "paper_id", papers[i].ID, "error", err)
				failures = append(failures, Failure{Index: i, Source: papers[i].ID, Err: err})
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	recs := make([]doctree.SummaryRecord, 0, len(results))
	for i := range papers {
		if rec, ok := results[i]; ok {
			recs = append(recs, rec)
		}
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].Index < failures[b].Index })
	return recs, failures, nil
}

// Evaluate scores every record against its ground truth concurrently.
// Evaluations come back in record order; a record whose answer has no usable
// score gets a nil Score.
func (s *Summarizer) Evaluate(ctx context.Context, records []doctree.SummaryRecord) ([]doctree.Evaluation, []Failure, error) {
	var (
		mu       sync.Mutex
		results  = make(map[int]doctree.Evaluation, len(records))
		failures []Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, rec := range records {
		g.Go(func() error {
			answer, err := s.generate(gctx, generate.Request{
				Prompt:      generate.EvaluationPrompt(rec.GTSummary, rec.PredSummary),
				Temperature: generate.EvaluationTemperature,
				MaxLength:   generate.EvaluationMaxLength,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("evaluation failed", "index", i, "paper_id", rec.ID, "error", err)
				failures = append(failures, Failure{Index: i, Source: rec.ID, Err: err})
				return nil
			}
			ev := doctree.Evaluation{
				ID:             rec.ID,
				Title:          rec.Title,
				Method:         rec.Method,
				ExtractionType: rec.ExtractionType,
				Raw:            answer,
			}
			if score, ok := generate.ParseScore(answer); ok {
				ev.Score = &score
			}
			results[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	evals := make([]doctree.Evaluation, 0, len(results))
	for i := range records {
		if ev, ok := results[i]; ok {
			evals = append(evals, ev)
		}
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].Index < failures[b].Index })
	return evals, failures, nil
}

// MeanScore averages the usable scores; ok is false when there are none.
func MeanScore(evals []doctree.Evaluation) (mean float64, ok bool) {
	n := 0
	for _, ev := range evals {
		if ev.Score != nil {
			mean += *ev.Score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return mean / float64(n), true
}
