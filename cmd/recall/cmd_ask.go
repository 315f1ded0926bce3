package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/coordinator"
	"github.com/user/recall/internal/render"
	"github.com/user/recall/pkg/api"
)

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("sources", false, "print the retrieved evidence after the answer")
	askCmd.Flags().Bool("no-stream", false, "wait for the full answer instead of streaming")
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	showSources, _ := cmd.Flags().GetBool("sources")
	noStream, _ := cmd.Flags().GetBool("no-stream")
	ctx := context.Background()

	var evidence []api.Evidence
	if noStream {
		c := newCoordinator(cfg, nil, coordinator.Hooks{})
		resp, err := c.Query(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(resp.Content)
		evidence = resp.Chunks
	} else {
		var streamed strings.Builder
		hooks := coordinator.Hooks{
			OnToken: func(fragment string) {
				streamed.WriteString(fragment)
				fmt.Print(fragment)
			},
		}
		c := newCoordinator(cfg, nil, hooks)
		res, err := c.RunTurn(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println()
		if res.Text != streamed.String() {
			fmt.Println(res.Text)
		}
		evidence = res.Evidence
	}

	if showSources && len(evidence) > 0 {
		fmt.Println()
		fmt.Println(render.List(evidence))
	}
	return nil
}
