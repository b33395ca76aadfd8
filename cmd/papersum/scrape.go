package main

import (
	"fmt"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/fetch"
	"github.com/dgallion1/papersum/internal/pipeline"
	"github.com/spf13/cobra"
)

func scrapeCmd(g *globals) *cobra.Command {
	var out string
	var concurrency int
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "scrape <urls.yaml|urls.txt>",
		Short: "Fetch and extract every listed paper into one corpus file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := g.corpusEncoding()
			if err != nil {
				return err
			}
			urls, err := corpus.LoadURLs(args[0])
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no urls in %s", args[0])
			}

			var cache *fetch.DiskCache
			if cacheDir != "" {
				if cache, err = fetch.NewDiskCache(cacheDir, g.cfg.FetchCacheTTL); err != nil {
					return err
				}
			}
			scraper := pipeline.NewScraper(fetch.NewClient(g.cfg.FetchTimeout, cache, g.log), g.log, concurrency)

			papers, failures, err := scraper.ScrapeAll(cmd.Context(), urls)
			if err != nil {
				return err
			}
			reportFailures(g.log, "scrape", failures)
			if err := corpus.WriteJSON(out, papers, enc); err != nil {
				return err
			}
			g.log.Info("scrape complete", "papers", len(papers), "failed", len(failures), "out", out)
			if len(papers) == 0 {
				return fmt.Errorf("all %d pages failed", len(urls))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "papers.json", "corpus file to write")
	cmd.Flags().IntVar(&concurrency, "concurrency", g.cfg.MaxConcurrentFetch, "concurrent page fetches")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", g.cfg.FetchCacheDir, "directory for cached pages (empty disables)")
	return cmd
}
