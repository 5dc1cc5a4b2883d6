// Package main is the dreamer command: an interactive dream interpreter, a
// JSON API server and one-shot helpers over the same core.
package main

import (
	"fmt"
	"os"

	"dreamer/internal/config"
	"dreamer/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string

	// Logger
	logger *zap.Logger

	// Loaded configuration
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dreamer",
	Short: "Dream Interpreter AI",
	Long: `dreamer interprets your dreams with Google Gemini.

Describe a dream, pick the feeling that dominated it and an interpretive
approach, and get a structured interpretation plus quick symbol hints.
Interpretations are kept in an in-memory journal for the session.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		if err := logging.Initialize(cfg.Logging); err != nil {
			return err
		}
		logging.Boot("config loaded: path=%s model=%s catalog=%s", configPath, cfg.LLM.Model, cfg.Catalog.Path)

		// The interactive UI owns the terminal; no process logger.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (kept in memory only)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".dreamer/config.yaml", "Config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interpretCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
