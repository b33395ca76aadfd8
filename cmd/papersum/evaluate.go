package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/pipeline"
	"github.com/spf13/cobra"
)

func evaluateCmd(g *globals) *cobra.Command {
	var dir string
	var save bool

	cmd := &cobra.Command{
		Use:   "evaluate [summaries.json...]",
		Short: "Score generated summaries against the ground-truth abstracts",
		Long: "Without arguments, evaluates the summaries file of every method/kind pair plus " +
			"chain of thought found in --dir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := g.corpusEncoding()
			if err != nil {
				return err
			}
			files := args
			if len(files) == 0 {
				for _, c := range generate.Combos {
					files = append(files, summaryFile(dir, c.Method, c.Kind))
				}
				files = append(files, summaryFile(dir, generate.ChainOfThought, generate.KindNone))
			}

			s, backend, err := g.summarizer(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			for _, file := range files {
				var recs []doctree.SummaryRecord
				if err := corpus.ReadJSON(file, &recs); err != nil {
					if len(args) == 0 && errors.Is(err, os.ErrNotExist) {
						g.log.Info("skipping missing summaries file", "file", file)
						continue
					}
					return err
				}
				evals, failures, err := s.Evaluate(cmd.Context(), recs)
				if err != nil {
					return err
				}
				reportFailures(g.log, "evaluation", failures)

				label := strings.TrimSuffix(file, ".json")
				if mean, ok := pipeline.MeanScore(evals); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: mean %.3f over %d scored of %d\n", label, mean, scored(evals), len(recs))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no usable scores (%d records)\n", label, len(recs))
				}
				if save {
					out := label + "_evaluations.json"
					if err := corpus.WriteJSON(out, evals, enc); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding the default summaries files")
	cmd.Flags().BoolVar(&save, "save", false, "write <file>_evaluations.json next to each input")
	g.generatorFlags(cmd)
	return cmd
}

func scored(evals []doctree.Evaluation) int {
	n := 0
	for _, ev := range evals {
		if ev.Score != nil {
			n++
		}
	}
	return n
}
