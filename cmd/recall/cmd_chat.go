package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/coordinator"
	"github.com/user/recall/internal/render"
	"github.com/user/recall/internal/types"
	"github.com/user/recall/pkg/api"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with streamed answers",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	var streamed strings.Builder
	hooks := coordinator.Hooks{
		OnToken: func(fragment string) {
			streamed.WriteString(fragment)
			fmt.Print(fragment)
		},
	}

	c := newCoordinator(cfg, nil, hooks)
	c.Start()
	defer c.Stop()

	fmt.Printf("recall chat (session %s)\n", c.SessionID())
	fmt.Println(`Type a question. "/sources" shows the last evidence, "/reset" starts a fresh session, "/quit" exits.`)

	var lastEvidence []api.Evidence
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			id := c.ResetSession()
			lastEvidence = nil
			fmt.Printf("Session reset: %s\n", id)
			continue
		case "/sources":
			if len(lastEvidence) == 0 {
				fmt.Println("No evidence yet.")
				continue
			}
			fmt.Println(render.List(lastEvidence))
			continue
		}

		streamed.Reset()
		res, err := c.RunTurn(ctx, line)
		if err != nil {
			if errors.Is(err, coordinator.ErrSuperseded) {
				continue
			}
			fmt.Println()
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println()
		// The backend may replace the streamed text with a polished
		// final answer; show it when it differs.
		if res.Text != streamed.String() {
			fmt.Println(res.Text)
		}
		lastEvidence = res.Evidence
		fmt.Printf("(%s, %d sources)\n", statsLine(res.Stats), len(res.Evidence))
	}
}

func statsLine(s types.TurnStats) string {
	if s.Tokens > 0 {
		return fmt.Sprintf("%d tokens in %.1fs, %.1f tok/s", s.Tokens, s.Duration.Seconds(), s.TokensPerSecond)
	}
	return fmt.Sprintf("%d fragments in %.1fs", s.Fragments, s.Duration.Seconds())
}
