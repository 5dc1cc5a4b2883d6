package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dreamer/internal/logging"
	"dreamer/internal/server"
	"dreamer/internal/session"
	"dreamer/internal/usage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// serveCmd runs the JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dream interpreter as a JSON API",
	Long: `Starts an HTTP server exposing sessions, symbol detection,
interpretations, the journal and downloads under /api/v1.

The Gemini key is sent per request in the X-API-Key header and is never stored.

Example:
  dreamer serve --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := usage.NewTracker()
	svc := newService(cfg, tracker)
	registry := session.NewRegistry(cfg.GetSessionTTL(), cfg.LLM.DailyQuota, session.WithOnEnd(tracker.Forget))

	if _, err := svc.Catalog(); err != nil {
		logger.Warn("symbol catalog unavailable, symbol detection disabled", zap.Error(err))
	}

	logger.Info("starting dreamer API",
		zap.String("addr", cfg.Server.Addr),
		zap.String("model", cfg.LLM.Model),
		zap.Duration("session_ttl", cfg.GetSessionTTL()),
		zap.Bool("category_logs", logging.IsDebugMode()),
	)
	return server.New(cfg, svc, registry, tracker, logger).ListenAndServe(ctx)
}
