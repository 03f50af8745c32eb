package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corpus-prep/metrics"
	"corpus-prep/pipeline"
	"corpus-prep/sheet"
	"corpus-prep/utils"
)

var (
	detectOutput string
	detectJSON   bool
)

var detectCmd = &cobra.Command{
	Use:   "detect <table>",
	Short: "Find acronyms and compound entities in the text column",
	Long: `Scans every row of the text column for acronyms (isolated runs of two or
more capital letters) and multi-word named entities, and writes a dictionary
template workbook with one sheet per kind. Fill in the "substituto" column
where the default joined form is not wanted, then pass the workbook to
"generate" with --acronyms and --entities.

Example:
  corpus-prep detect respostas.xlsx --column "Comentário"`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "", "Template workbook path (default: <table>_dicionario.xlsx)")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the report as JSON instead of writing a workbook")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	table, err := sheet.ReadFile(args[0])
	if err != nil {
		return err
	}

	p, store, err := newPipeline(ctx, newRecognizer(), metrics.New())
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	report, err := p.Detect(ctx, table, cfg.TextColumn)
	if err != nil {
		return err
	}

	if detectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"rows":     report.Rows,
			"acronyms": report.Acronyms,
			"entities": report.Entities,
		})
	}

	out := detectOutput
	if out == "" {
		out = utils.DerivedName(args[0], "_dicionario", ".xlsx")
	}
	if err := writeFile(out, func(w io.Writer) error { return pipeline.WriteTemplate(w, report) }); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("Dictionary template written",
		zap.String("path", out),
		zap.Int("acronyms", len(report.Acronyms)),
		zap.Int("entities", len(report.Entities)))
	return nil
}
