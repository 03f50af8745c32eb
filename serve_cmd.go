package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corpus-prep/metrics"
	"corpus-prep/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and analyst guide",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port")
	bindFlags(serveCmd, map[string]string{"port": "WEB_PORT"})
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	p, store, err := newPipeline(ctx, newRecognizer(), m)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		if cfg.RunRetentionDays > 0 {
			// Initialize cleanup service and start background cleanup routine
			cleanupService := web.NewCleanupService(store, logger)
			go cleanupService.Run(ctx, time.Hour, time.Duration(cfg.RunRetentionDays)*24*time.Hour)
		}
	}

	webServer := web.NewServer(p, m, logger, cfg)

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting corpus-prep web server", zap.String("port", port))
	return webServer.Start(ctx, port)
}
