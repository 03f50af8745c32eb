package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
)

var (
	dictReplace bool
	dictFormat  string
	dictOutput  string
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the dictionaries stored in Postgres",
	Long: `Stored dictionaries are merged under the files given with --acronyms and
--entities whenever a corpus is generated. Requires DATABASE_URL.`,
}

var dictImportCmd = &cobra.Command{
	Use:   "import <siglas|entidades> <file>",
	Short: "Load a dictionary file into the store",
	Long: `Reads .csv, .tsv, .xlsx or .yaml files. Use "-" to read CSV from stdin.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDictImport,
}

var dictDeleteCmd = &cobra.Command{
	Use:   "delete <siglas|entidades> <term>",
	Short: "Remove one term from a stored dictionary",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictDelete,
}

var dictExportCmd = &cobra.Command{
	Use:   "export <siglas|entidades>",
	Short: "Write a stored dictionary as CSV or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictExport,
}

func init() {
	dictImportCmd.Flags().BoolVar(&dictReplace, "replace", false, "Remove stored entries missing from the file")
	dictExportCmd.Flags().StringVar(&dictFormat, "format", "csv", "Output format: csv or yaml")
	dictExportCmd.Flags().StringVarP(&dictOutput, "output", "o", "-", `Output path, "-" for stdout`)

	dictCmd.AddCommand(dictImportCmd)
	dictCmd.AddCommand(dictExportCmd)
	dictCmd.AddCommand(dictDeleteCmd)
}

func runDictImport(cmd *cobra.Command, args []string) error {
	kind, err := dictionary.ParseKind(args[0])
	if err != nil {
		return err
	}
	var d *dictionary.Dictionary
	if args[1] == "-" {
		d, err = dictionary.LoadReader(cmd.InOrStdin(), "stdin.csv", kind)
	} else {
		d, err = dictionary.LoadFile(args[1], kind)
	}
	if err != nil {
		return err
	}

	p, store, err := newPipeline(cmd.Context(), nil, nil)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	if err := p.SaveDictionary(cmd.Context(), d, dictReplace); err != nil {
		if apperrors.IsServiceUnavailable(err) {
			return fmt.Errorf("%w: set DATABASE_URL or --database-url", err)
		}
		return err
	}
	logger.Info("Dictionary imported", zap.String("kind", string(kind)), zap.Int("entries", d.Len()))
	return nil
}

func runDictDelete(cmd *cobra.Command, args []string) error {
	kind, err := dictionary.ParseKind(args[0])
	if err != nil {
		return err
	}

	p, store, err := newPipeline(cmd.Context(), nil, nil)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	if err := p.DeleteTerm(cmd.Context(), kind, args[1]); err != nil {
		if apperrors.IsServiceUnavailable(err) {
			return fmt.Errorf("%w: set DATABASE_URL or --database-url", err)
		}
		return err
	}
	logger.Info("Dictionary term deleted", zap.String("kind", string(kind)), zap.String("term", args[1]))
	return nil
}

func runDictExport(cmd *cobra.Command, args []string) error {
	kind, err := dictionary.ParseKind(args[0])
	if err != nil {
		return err
	}

	p, store, err := newPipeline(cmd.Context(), nil, nil)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	d, err := p.StoredDictionary(cmd.Context(), kind)
	if err != nil {
		if apperrors.IsServiceUnavailable(err) {
			return fmt.Errorf("%w: set DATABASE_URL or --database-url", err)
		}
		return err
	}

	var buf bytes.Buffer
	switch strings.ToLower(dictFormat) {
	case "csv":
		err = d.WriteCSV(&buf)
	case "yaml", "yml":
		err = d.WriteYAML(&buf)
	default:
		return apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "export format %q", dictFormat)
	}
	if err != nil {
		return err
	}

	if dictOutput == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	return os.WriteFile(dictOutput, buf.Bytes(), 0o644)
}
