package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/papersum/internal/api"
	"github.com/dgallion1/papersum/internal/chunker"
	"github.com/dgallion1/papersum/internal/config"
	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/fetch"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	enc, err := corpus.ParseEncoding(cfg.CorpusEncoding)
	if err != nil {
		log.Error("invalid corpus encoding", "error", err)
		os.Exit(1)
	}
	store, err := corpus.NewStore(cfg.CorpusDir, enc)
	if err != nil {
		log.Error("failed to open corpus", "dir", cfg.CorpusDir, "error", err)
		os.Exit(1)
	}

	var cache *fetch.DiskCache
	if cfg.FetchCacheDir != "" {
		if cache, err = fetch.NewDiskCache(cfg.FetchCacheDir, cfg.FetchCacheTTL); err != nil {
			log.Error("failed to open fetch cache", "error", err)
			os.Exit(1)
		}
	}
	fetcher := fetch.NewClient(cfg.FetchTimeout, cache, log)

	backend, err := generate.NewBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to create generator", "backend", cfg.GeneratorBackend, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	scraper := pipeline.NewScraper(fetcher, log, cfg.MaxConcurrentFetch)
	summarizer := pipeline.NewSummarizer(backend.Generator, log, chunker.Config{
		ChunkSize:    cfg.ChunkTokens,
		ChunkOverlap: cfg.ChunkOverlap,
		MinChunk:     1,
	}, cfg.MaxConcurrentGenerate)
	orch := pipeline.NewOrchestrator(cfg, scraper, summarizer, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, backend, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		backend.Close()
	}()

	log.Info("starting papersum", "port", cfg.Port, "backend", cfg.GeneratorBackend, "model", backend.Model)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
