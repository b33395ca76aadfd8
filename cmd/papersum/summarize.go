package main

import (
	"fmt"
	"path/filepath"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/spf13/cobra"
)

// summaryFile names the corpus file for one method/kind pair.
func summaryFile(dir string, method generate.Method, kind generate.Kind) string {
	return filepath.Join(dir, fmt.Sprintf("%s_generated_summaries_%s.json", method, kind))
}

func summarizeCmd(g *globals) *cobra.Command {
	var method, kind string
	var outDir string

	cmd := &cobra.Command{
		Use:   "summarize <papers.json>",
		Short: "Generate section-wise summaries for every paper in a corpus file",
		Long: "Runs every method/kind pair (few_shot and zero_shot, extractive and abstractive) " +
			"unless --method and --kind pick one, writing one summaries file per pair.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := g.corpusEncoding()
			if err != nil {
				return err
			}
			var papers []doctree.Paper
			if err := corpus.ReadJSON(args[0], &papers); err != nil {
				return err
			}

			combos := generate.Combos
			if method != "" || kind != "" {
				if method == "" || kind == "" {
					return fmt.Errorf("--method and --kind go together")
				}
				if _, err := generate.SummaryPrompt(generate.Method(method), generate.Kind(kind), ""); err != nil {
					return err
				}
				combos = []generate.Combo{{Method: generate.Method(method), Kind: generate.Kind(kind)}}
			}

			s, backend, err := g.summarizer(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			for _, c := range combos {
				g.log.Info("generating summaries", "method", c.Method, "kind", c.Kind, "papers", len(papers))
				recs, failures, err := s.SectionwiseAll(cmd.Context(), papers, c.Method, c.Kind)
				if err != nil {
					return err
				}
				reportFailures(g.log, "summary", failures)
				out := summaryFile(outDir, c.Method, c.Kind)
				if err := corpus.WriteJSON(out, recs, enc); err != nil {
					return err
				}
				g.log.Info("summaries written", "out", out, "records", len(recs), "failed", len(failures))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "zero_shot|few_shot (default: all pairs)")
	cmd.Flags().StringVar(&kind, "kind", "", "abstractive|extractive (default: all pairs)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for summaries files")
	g.generatorFlags(cmd)
	return cmd
}

func cotCmd(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "cot <papers.json>",
		Short: "Generate chain-of-thought summaries by refining block by block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := g.corpusEncoding()
			if err != nil {
				return err
			}
			var papers []doctree.Paper
			if err := corpus.ReadJSON(args[0], &papers); err != nil {
				return err
			}

			s, backend, err := g.summarizer(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			recs, failures, err := s.ChainOfThoughtAll(cmd.Context(), papers)
			if err != nil {
				return err
			}
			reportFailures(g.log, "chain of thought", failures)
			if out == "" {
				out = summaryFile(".", generate.ChainOfThought, generate.KindNone)
			}
			if err := corpus.WriteJSON(out, recs, enc); err != nil {
				return err
			}
			g.log.Info("summaries written", "out", out, "records", len(recs), "failed", len(failures))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "summaries file (default: chain_of_thought_generated_summaries_none.json)")
	g.generatorFlags(cmd)
	return cmd
}
