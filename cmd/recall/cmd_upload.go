package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/coordinator"
	"github.com/user/recall/internal/pipeline"
	"github.com/user/recall/internal/types"
)

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().Int("jobs", 0, "max concurrent uploads (default from config)")
	uploadCmd.Flags().Bool("notify", false, "send a notification when indexing completes")
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf> [file.pdf ...]",
	Short: "Upload PDF documents for indexing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		cfg.Upload.MaxConcurrent = jobs
	}

	var notifier types.Notifier
	if wantNotify, _ := cmd.Flags().GetBool("notify"); wantNotify {
		n, err := buildNotifier(cfg)
		if err != nil {
			return fmt.Errorf("build notifier: %w", err)
		}
		notifier = n
	}

	hooks := coordinator.Hooks{
		OnPipeline: func(stage pipeline.Stage, m pipeline.Metrics) {
			fmt.Printf("  %-12s %d elements, %d chunks, %d images, %d tables\n",
				stage, m.Elements, m.Chunks, m.Images, m.Tables)
		},
	}
	c := newCoordinator(cfg, notifier, hooks)
	ctx := context.Background()

	if len(args) == 1 {
		// Single uploads get live progress from the push channel.
		c.Start()
		defer c.Stop()

		fmt.Printf("Uploading %s\n", args[0])
		res, err := c.Upload(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %s: %d chunks from %d elements in %.1fs (%.2f MB/s)\n",
			res.Filename, res.Report.TotalChunks, res.Report.TotalElements,
			res.Performance.DurationSeconds, res.Performance.ThroughputMBs)
		return nil
	}

	outcomes := c.UploadAll(ctx, args)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", o.Path, o.Err)
			continue
		}
		fmt.Printf("OK   %s: %d chunks\n", o.Path, o.Result.Report.TotalChunks)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(outcomes))
	}
	return nil
}
