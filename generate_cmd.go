package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corpus-prep/metrics"
	"corpus-prep/pipeline"
	"corpus-prep/sheet"
	"corpus-prep/utils"
)

var generateOutput string

var generateCmd = &cobra.Command{
	Use:   "generate <table>",
	Short: "Write an IRaMuTeQ corpus from the text column",
	Long: `Normalizes every answer of the text column (dictionary substitutions,
verb-pronoun contractions, numbers spelled out, special characters removed)
and writes one text per row, each introduced by a "****" metadata line built
from the row number and the --metadata columns.

Example:
  corpus-prep generate respostas.xlsx --metadata sexo,idade --acronyms respostas_dicionario.xlsx --entities respostas_dicionario.xlsx -o corpus.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", `Corpus path, "-" for stdout (default: <table>_corpus.txt)`)
	generateCmd.Flags().StringSlice("metadata", nil, "Columns emitted as *variable_value tags")
	generateCmd.Flags().Int("workers", 0, "Rows normalized in parallel")
	generateCmd.Flags().String("contractions", "", "Verb-pronoun contractions: join, split or keep")
	generateCmd.Flags().Bool("lowercase", false, "Lowercase the corpus text")
	generateCmd.Flags().Bool("numbers", true, "Spell out numbers")

	bindFlags(generateCmd, map[string]string{
		"metadata":     "METADATA_COLUMNS",
		"workers":      "WORKERS",
		"contractions": "CONTRACTION_MODE",
		"lowercase":    "LOWERCASE",
		"numbers":      "CONVERT_NUMBERS",
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	table, err := sheet.ReadFile(args[0])
	if err != nil {
		return err
	}

	// generation never calls the recognizer
	p, store, err := newPipeline(ctx, nil, metrics.New())
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	result, err := p.Generate(ctx, table, pipeline.GenerateRequest{
		TextColumn:      cfg.TextColumn,
		MetadataColumns: cfg.MetadataColumns,
	})
	if err != nil {
		return err
	}

	out := generateOutput
	if out == "" {
		out = utils.DerivedName(args[0], "_corpus", ".txt")
	}

	if out == "-" {
		_, err = result.WriteTo(cmd.OutOrStdout())
	} else {
		err = writeFile(out, func(w io.Writer) error {
			_, err := result.WriteTo(w)
			return err
		})
	}
	if err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	logger.Info("Corpus written",
		zap.String("path", out),
		zap.Int("texts", result.RowsWritten),
		zap.Int("skipped", result.RowsSkipped))
	return nil
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	if utils.VerifyFileExists(filepath.Dir(path), filepath.Base(path)) {
		logger.Warn("Overwriting existing file", zap.String("path", path))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
