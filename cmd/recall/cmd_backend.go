package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/config"
	"github.com/user/recall/internal/identity"
	"github.com/user/recall/pkg/api"
)

func init() {
	rootCmd.AddCommand(statusCmd, cacheCmd, benchCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	benchCmd.Flags().Bool("save", false, "write the benchmark report server-side")
}

// backendClient builds a request client stamped with the persisted
// session identity.
func backendClient(cfg *config.Config) *api.Client {
	store := identity.NewStore(cfg.SessionPath())
	return api.New(api.Config{
		BaseURL:   cfg.Backend.BaseURL,
		SessionID: string(store.Current()),
		Timeout:   cfg.Timeout(),
	})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		client := backendClient(cfg)

		h, err := client.Health(context.Background())
		if err != nil {
			return fmt.Errorf("backend unreachable at %s: %w", cfg.Backend.BaseURL, err)
		}

		fmt.Fprintf(os.Stdout, "Backend:  %s\n", cfg.Backend.BaseURL)
		fmt.Fprintf(os.Stdout, "Status:   %s (%s)\n", h.Status, h.Service)
		fmt.Fprintf(os.Stdout, "Session:  %s\n", identity.NewStore(cfg.SessionPath()).Current())
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear backend caches",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show backend cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stats, err := backendClient(cfg).CacheStats(context.Background())
		if err != nil {
			return fmt.Errorf("fetch cache stats: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CACHE\tHITS\tMISSES\tHIT RATE\tSIZE")
		for _, row := range []struct {
			name string
			s    api.CacheStats
		}{
			{"retrieval", stats.Retrieval},
			{"answer", stats.Answer},
		} {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\t%d/%d\n",
				row.name, row.s.Hits, row.s.Misses, row.s.HitRatePct,
				row.s.CurrentSize, row.s.MaxSize)
		}
		return w.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear backend caches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		res, err := backendClient(cfg).ClearCache(context.Background())
		if err != nil {
			return fmt.Errorf("clear caches: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Cleared %d retrieval and %d answer entries.\n",
			res.RetrievalCleared, res.AnswerCleared)
		return nil
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Show backend benchmark metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		client := backendClient(cfg)
		ctx := context.Background()

		if save, _ := cmd.Flags().GetBool("save"); save {
			saved, err := client.SaveBenchmark(ctx)
			if err != nil {
				return fmt.Errorf("save benchmark: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Benchmark report saved to %s\n", saved.ReportPath)
			printBenchmark(&saved.Metrics)
			return nil
		}

		metrics, err := client.Benchmark(ctx)
		if err != nil {
			return fmt.Errorf("fetch benchmark: %w", err)
		}
		printBenchmark(metrics)
		return nil
	},
}

func printBenchmark(m *api.BenchmarkMetrics) {
	fmt.Fprintf(os.Stdout, "Ingestion runs: %d\n", len(m.IngestionRuns))
	fmt.Fprintf(os.Stdout, "Retrieval runs: %d\n", len(m.RetrievalRuns))
	if len(m.Summary) == 0 {
		return
	}

	sections := make([]string, 0, len(m.Summary))
	for s := range m.Summary {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tMETRIC\tVALUE")
	for _, s := range sections {
		metrics := make([]string, 0, len(m.Summary[s]))
		for k := range m.Summary[s] {
			metrics = append(metrics, k)
		}
		sort.Strings(metrics)
		for _, k := range metrics {
			fmt.Fprintf(w, "%s\t%s\t%.3f\n", s, k, m.Summary[s][k])
		}
	}
	w.Flush()
}
