package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"corpus-prep/config"
	"corpus-prep/database"
	"corpus-prep/detect"
	"corpus-prep/metrics"
	"corpus-prep/pipeline"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "corpus-prep",
	Short: "Prepare Portuguese survey answers for IRaMuTeQ",
	Long: `corpus-prep detects acronyms and compound named entities in open-ended
survey answers, manages the replacement dictionaries built from them, and
writes an IRaMuTeQ corpus with starred metadata lines.

Settings come from config.yaml, environment variables and flags, in that
order of increasing priority.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger with default level to load config
		tempLogger, err := config.InitLogger("info")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// Load config (which includes log level setting)
		cfg = config.Load(tempLogger)

		// Re-initialize logger with configured level
		logger, err = config.InitLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to re-initialize logger with configured level: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		config.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string for stored dictionaries and run history")
	rootCmd.PersistentFlags().String("column", "", "Header of the text column")
	rootCmd.PersistentFlags().String("backend", "", "Entity recognizer backend (prose, rules)")
	rootCmd.PersistentFlags().String("acronyms", "", "Acronym dictionary file (csv, xlsx, yaml)")
	rootCmd.PersistentFlags().String("entities", "", "Entity dictionary file (csv, xlsx, yaml)")

	bindFlags(rootCmd, map[string]string{
		"log-level":    "LOG_LEVEL",
		"database-url": "DATABASE_URL",
		"column":       "TEXT_COLUMN",
		"backend":      "NER_BACKEND",
		"acronyms":     "ACRONYM_DICTIONARY",
		"entities":     "ENTITY_DICTIONARY",
	})

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dictCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlags ties flags of cmd to config keys so flags override env and config.yaml.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for name, key := range keys {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// openStore connects to Postgres when DATABASE_URL is set. A nil store and
// nil error mean persistence is disabled.
func openStore(ctx context.Context) (*database.PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	store, err := database.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	return store, nil
}

// newRecognizer loads the configured recognizer. Nothing can run detection
// without it, so failure stops the program.
func newRecognizer() detect.EntityRecognizer {
	rec, err := detect.NewRecognizer(detect.RecognizerConfig{
		Backend:   cfg.NERBackend,
		ModelDir:  cfg.NERModelDir,
		CacheSize: cfg.NERCacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize entity recognizer", zap.Error(err))
	}
	return rec
}

// newPipeline wires the store (if any) into a pipeline. The caller closes
// the returned store when it is not nil.
func newPipeline(ctx context.Context, rec detect.EntityRecognizer, m *metrics.Metrics) (*pipeline.Pipeline, *database.PostgresStore, error) {
	pgStore, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	var store pipeline.Store
	if pgStore != nil {
		store = pgStore
	}

	p, err := pipeline.New(cfg, rec, store, m, logger)
	if err != nil {
		if pgStore != nil {
			pgStore.Close()
		}
		return nil, nil, err
	}
	return p, pgStore, nil
}
