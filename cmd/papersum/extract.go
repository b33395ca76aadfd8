package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/dgallion1/papersum/internal/parser"
	"github.com/spf13/cobra"
)

func extractCmd(g *globals) *cobra.Command {
	var url string
	var out string

	cmd := &cobra.Command{
		Use:   "extract <page.html>",
		Short: "Extract the document structure of a saved paper page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			paper, err := parser.ParseHTML(f, url)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			g.log.Info("extracted paper", "file", args[0], "blocks", len(paper.Document))

			if out != "" {
				enc, err := g.corpusEncoding()
				if err != nil {
					return err
				}
				return corpus.WriteJSON(out, paper, enc)
			}
			e := json.NewEncoder(cmd.OutOrStdout())
			e.SetEscapeHTML(false)
			e.SetIndent("", "    ")
			return e.Encode(paper)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "source URL recorded on the paper")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a corpus file instead of stdout")
	return cmd
}
