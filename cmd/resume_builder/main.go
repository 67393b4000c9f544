// Package main provides the resume_builder CLI and HTTP API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/observability"
)

var (
	configPath string
	debug      bool

	// settings and logger are populated by the root pre-run hook.
	settings config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "resume_builder",
	Short:         "Resume Builder CLI and HTTP API",
	Long:          "Resume Builder edits structured résumé data and drafts a professional summary with the Gemini API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(configPath, os.Getenv)
		if err != nil {
			return err
		}
		settings = cfg

		level := observability.ParseLevel(cfg.LogLevel)
		if debug {
			level = slog.LevelDebug
		}
		logger = observability.NewLogger(cmd.ErrOrStderr(), level)
		slog.SetDefault(logger)
		logger.Debug("logger initialized", "level", level.String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// loadSettings builds the effective configuration: defaults, then the config
// file, then environment variables for anything still unset.
func loadSettings(path string, getenv func(string) string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	cfg.ApplyEnv(getenv)
	cfg = cfg.MergeWithDefaults(config.Default())

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
