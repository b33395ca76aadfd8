package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/papersum/internal/chunker"
	"github.com/dgallion1/papersum/internal/config"
	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/pipeline"
	"github.com/spf13/cobra"
)

// globals holds flags shared by every command.
type globals struct {
	cfg      config.Config
	log      *slog.Logger
	encoding string
	verbose  bool
}

func main() {
	g := &globals{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "papersum",
		Short:         "Extract research paper structure and generate section-wise summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			g.log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().StringVar(&g.encoding, "encoding", g.cfg.CorpusEncoding, "corpus file encoding: utf-16|utf-8")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(extractCmd(g), scrapeCmd(g), summarizeCmd(g), cotCmd(g), evaluateCmd(g))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *globals) corpusEncoding() (corpus.Encoding, error) {
	return corpus.ParseEncoding(g.encoding)
}

// summarizer builds a summarizer over the configured generator backend.
func (g *globals) summarizer(ctx context.Context) (*pipeline.Summarizer, *generate.Backend, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	backend, err := generate.NewBackend(ctx, g.cfg)
	if err != nil {
		return nil, nil, err
	}
	s := pipeline.NewSummarizer(backend.Generator, g.log, chunker.Config{
		ChunkSize:    g.cfg.ChunkTokens,
		ChunkOverlap: g.cfg.ChunkOverlap,
		MinChunk:     1,
	}, g.cfg.MaxConcurrentGenerate)
	return s, backend, nil
}

// generatorFlags binds the flags that override generator settings.
func (g *globals) generatorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.cfg.GeneratorBackend, "backend", g.cfg.GeneratorBackend, "generator backend: openchat|gemini")
	cmd.Flags().Float64Var(&g.cfg.RequestsPerSecond, "rps", g.cfg.RequestsPerSecond, "generation requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&g.cfg.MaxConcurrentGenerate, "concurrency", g.cfg.MaxConcurrentGenerate, "concurrent generation calls")
	cmd.Flags().IntVar(&g.cfg.ChunkTokens, "chunk-tokens", g.cfg.ChunkTokens, "prompt chunk size in tokens")
}

func reportFailures(log *slog.Logger, what string, failures []pipeline.Failure) {
	for _, f := range failures {
		log.Warn(what+" failed", "index", f.Index, "source", f.Source, "error", f.Err)
	}
}
