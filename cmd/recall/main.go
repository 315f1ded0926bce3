package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/config"
	"github.com/user/recall/internal/conversation"
	"github.com/user/recall/internal/coordinator"
	"github.com/user/recall/internal/identity"
	"github.com/user/recall/internal/status"
	"github.com/user/recall/internal/types"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "recall",
	Short:        "Chat with a document QA backend",
	Long:         "recall streams answers from a document QA backend, uploads documents\nfor indexing, and tracks server-side processing as it happens.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

// loadConfig loads the config file, exiting on failure. Commands call
// this instead of threading config errors through every RunE.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newCoordinator assembles a coordinator from config. A tokenizer that
// fails to load is not fatal; turn stats degrade to fragment counts.
func newCoordinator(cfg *config.Config, notifier types.Notifier, hooks coordinator.Hooks) *coordinator.Coordinator {
	counter, err := conversation.NewCounter(cfg.Chat.TokenizerModel)
	if err != nil {
		slog.Warn("tokenizer unavailable, stats fall back to fragment counts",
			"model", cfg.Chat.TokenizerModel, "error", err)
	}

	return coordinator.New(coordinator.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Identity:   identity.NewStore(cfg.SessionPath()),
		Transcript: conversation.NewTranscript(cfg.DataDir),
		Counter:    counter,
		Notifier:   notifier,
		Reconnect: status.ReconnectPolicy{
			Base:       cfg.ReconnectBase(),
			Multiplier: cfg.Reconnect.Multiplier,
			Max:        cfg.ReconnectMax(),
		},
		MaxFileBytes:  cfg.MaxFileBytes(),
		MaxConcurrent: int64(cfg.Upload.MaxConcurrent),
		Hooks:         hooks,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
