package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/parser"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Failure records one unit of a batch that did not produce a result.
type Failure struct {
	Index  int    `json:"index"`
	Source string `json:"source"` // URL for scraping, paper id for summaries
	Err    error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("#%d %s: %v", f.Index, f.Source, f.Err)
}

// Scraper fetches paper pages and extracts their structure.
type Scraper struct {
	fetcher     Fetcher
	log         *slog.Logger
	concurrency int
}

func NewScraper(fetcher Fetcher, log *slog.Logger, concurrency int) *Scraper {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scraper{fetcher: fetcher, log: log, concurrency: concurrency}
}

// Fetch downloads one page, retrying transient failures.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	return withRetry(ctx, s.log, "fetch", func(ctx context.Context) ([]byte, error) {
		return s.fetcher.Fetch(ctx, url)
	})
}

// Scrape fetches and parses a single page.
func (s *Scraper) Scrape(ctx context.Context, url string) (*doctree.Paper, error) {
	page, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	paper, err := parser.ParseHTML(bytes.NewReader(page), url)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return paper, nil
}

// ScrapeAll scrapes urls concurrently. Papers come back in input order with
// failed pages left out and reported as failures instead.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) ([]doctree.Paper, []Failure, error) {
	var (
		mu       sync.Mutex
		results  = make(map[int]*doctree.Paper, len(urls))
		failures []Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			paper, err := s.Scrape(gctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("scrape failed", "index", i, "url", url, "error", err)
				failures = append(failures, Failure{Index: i, Source: url, Err: err})
				return nil
			}
			s.log.Info("scraped paper", "index", i, "url", url, "paper_id", paper.ID, "blocks", len(paper.Document))
			results[i] = paper
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	papers := make([]doctree.Paper, 0, len(results))
	for i := range urls {
		if p, ok := results[i]; ok {
			papers = append(papers, *p)
		}
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].Index < failures[b].Index })
	return papers, failures, nil
}
