package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/parser"
)

// Worker processes a single paper job.
type Worker struct {
	scraper    *Scraper
	summarizer *Summarizer
	store      *corpus.Store
	log        *slog.Logger
}

func NewWorker(scraper *Scraper, summarizer *Summarizer, store *corpus.Store, log *slog.Logger) *Worker {
	return &Worker{scraper: scraper, summarizer: summarizer, store: store, log: log}
}

// Process runs fetch, extraction, storage and any requested summaries.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "url", job.URL)

	// Phase 1: Fetch, unless the page came with the job.
	page := job.Page()
	if page == nil {
		job.SetStatus(StatusFetching, "fetching")
		data, err := w.scraper.Fetch(ctx, job.URL)
		if err != nil {
			log.Error("fetch failed", "error", err)
			job.AddError(fmt.Sprintf("fetch: %s", err))
			job.SetStatus(StatusFailed, "fetching")
			return
		}
		job.SetPage(data)
		page = data
	}

	// Phase 2: Extract.
	job.SetStatus(StatusParsing, "parsing")
	paper, err := parser.ParseHTML(bytes.NewReader(page), job.URL)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetPaper(paper.ID, paper.Title, len(paper.Document))
	log = log.With("paper_id", paper.ID)
	log.Info("extracted paper", "blocks", len(paper.Document))

	job.SetStatus(StatusStoring, "storing paper")
	if err := w.store.PutPaper(paper); err != nil {
		log.Error("store paper failed", "error", err)
		job.AddError(fmt.Sprintf("store paper: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if len(job.Summaries) == 0 {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Summaries, one request at a time.
	job.SetStatus(StatusSummarizing, "summarizing")
	stored := 0
	for _, req := range job.Summaries {
		rec, err := w.summarize(ctx, paper, req)
		if err != nil {
			log.Error("summary failed", "method", req.Method, "kind", req.Kind, "error", err)
			job.AddError(fmt.Sprintf("summary %s/%s: %s", req.Method, req.Kind, err))
			continue
		}
		if err := w.store.PutSummary(rec); err != nil {
			log.Error("store summary failed", "method", req.Method, "kind", req.Kind, "error", err)
			job.AddError(fmt.Sprintf("store summary %s/%s: %s", req.Method, req.Kind, err))
			continue
		}
		job.IncrSummariesStored()
		stored++
	}
	log.Info("summaries complete", "stored", stored, "requested", len(job.Summaries))

	// The paper itself is stored, so missing summaries only make the job partial.
	if stored < len(job.Summaries) {
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) summarize(ctx context.Context, paper *doctree.Paper, req SummaryRequest) (doctree.SummaryRecord, error) {
	if w.summarizer == nil {
		return doctree.SummaryRecord{}, fmt.Errorf("no text generator configured")
	}
	if req.Method == generate.ChainOfThought {
		return w.summarizer.ChainOfThought(ctx, paper)
	}
	return w.summarizer.Sectionwise(ctx, paper, req.Method, req.Kind)
}
