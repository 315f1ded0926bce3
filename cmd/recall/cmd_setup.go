package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/recall/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Recall Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Backend base URL
		cfg.Backend.BaseURL = prompt(scanner, "Backend base URL", cfg.Backend.BaseURL)

		// 2. Upload size cap
		maxMBStr := prompt(scanner, "Max upload size (MB)", strconv.Itoa(cfg.Upload.MaxFileMB))
		if n, err := strconv.Atoi(maxMBStr); err == nil {
			cfg.Upload.MaxFileMB = n
		}

		// 3. Tokenizer model for turn stats
		cfg.Chat.TokenizerModel = prompt(scanner, "Tokenizer model", cfg.Chat.TokenizerModel)

		// 4. Telegram bot token (optional)
		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		// 5. Notification targets (optional)
		targetsStr := prompt(scanner, "Notify targets, comma-separated (optional)", strings.Join(cfg.Notify.Targets, ","))
		cfg.Notify.Targets = nil
		for _, t := range strings.Split(targetsStr, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Notify.Targets = append(cfg.Notify.Targets, t)
			}
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
