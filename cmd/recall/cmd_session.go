package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/conversation"
	"github.com/user/recall/internal/identity"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd, sessionResetCmd, sessionHistoryCmd)
	sessionHistoryCmd.Flags().Int("limit", 0, "max messages to show (default from config)")
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the session identity and transcript",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := identity.NewStore(cfg.SessionPath())
		id := store.Current()

		transcript := conversation.NewTranscript(cfg.DataDir)
		count, err := transcript.Count(context.Background(), id)
		if err != nil {
			count = 0
		}

		fmt.Fprintf(os.Stdout, "Session:  %s\n", id)
		fmt.Fprintf(os.Stdout, "File:     %s\n", store.Path())
		fmt.Fprintf(os.Stdout, "Messages: %d\n", count)
		return nil
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Rotate to a fresh session identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := identity.NewStore(cfg.SessionPath())
		old := store.Current()
		fresh := store.Rotate()
		fmt.Fprintf(os.Stdout, "Session rotated: %s is now %s\n", old, fresh)
		fmt.Println("The old transcript stays on disk.")
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent messages from the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Chat.HistoryLimit
		}

		store := identity.NewStore(cfg.SessionPath())
		transcript := conversation.NewTranscript(cfg.DataDir)
		msgs, err := transcript.Tail(context.Background(), store.Current(), limit)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		if len(msgs) == 0 {
			fmt.Println("No messages in this session.")
			return nil
		}

		for _, m := range msgs {
			header := fmt.Sprintf("[%s] %s", m.At.Format("2006-01-02 15:04"), m.Role)
			if len(m.Evidence) > 0 {
				header += fmt.Sprintf(" (%d sources)", len(m.Evidence))
			}
			fmt.Println(header)
			fmt.Println(m.Content)
			fmt.Println()
		}
		return nil
	},
}
