package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/config"
	"github.com/user/recall/internal/coordinator"
	"github.com/user/recall/internal/monitor"
	"github.com/user/recall/internal/notify"
	"github.com/user/recall/internal/pipeline"
	"github.com/user/recall/internal/types"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the backend and notify on pipeline and health changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "recall.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

// buildNotifier assembles the fan-out notifier from configured targets.
// With no targets configured, notifications go to stdout.
func buildNotifier(cfg *config.Config) (types.Notifier, error) {
	reg := notify.NewRegistry()
	reg.Register("stdout", notify.StdoutBuilder())
	if cfg.Telegram.Token != "" {
		reg.Register("telegram", notify.TelegramBuilder(cfg.Telegram.Token))
	}

	targets := cfg.Notify.Targets
	if len(targets) == 0 {
		targets = []string{"stdout"}
	}
	return reg.BuildAll(targets)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}

	hooks := coordinator.Hooks{
		OnPipeline: func(stage pipeline.Stage, m pipeline.Metrics) {
			slog.Info("pipeline update",
				"stage", stage.String(),
				"elements", m.Elements,
				"chunks", m.Chunks,
				"images", m.Images,
				"tables", m.Tables,
			)
		},
	}
	c := newCoordinator(cfg, notifier, hooks)
	c.Start()
	defer c.Stop()

	probes := []monitor.Probe{
		monitor.HealthProbe(c.API(), cfg.Monitor.HealthSchedule),
		monitor.CacheProbe(c.API(), cfg.Monitor.CacheSchedule),
	}
	m := monitor.New(probes, notifier)
	m.Start()
	defer m.Stop()

	slog.Info("recall watch started",
		"backend", cfg.Backend.BaseURL,
		"session", string(c.SessionID()),
		"notify_targets", len(cfg.Notify.Targets),
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			// Clean up PID file before re-exec
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				// Re-write PID file since we failed to re-exec
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
