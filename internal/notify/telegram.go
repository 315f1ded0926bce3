// internal/notify/telegram.go
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/recall/internal/types"
)

const maxTelegramMessage = 4096

// Telegram pushes notifications to a single chat. It only sends; it
// never polls for updates.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a sender for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends subject and body as one message, split when it exceeds
// the Telegram size limit.
func (t *Telegram) Notify(_ context.Context, subject, body string) error {
	text := subject
	if body != "" {
		text = subject + "\n" + body
	}

	for _, part := range splitMessage(text) {
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := t.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := t.bot.Send(msg); err != nil {
				return fmt.Errorf("send telegram message: %w", err)
			}
		}
	}
	return nil
}

// TelegramBuilder returns a Builder for telegram:<chatID> targets.
func TelegramBuilder(token string) Builder {
	return func(target string) (types.Notifier, error) {
		raw := strings.TrimPrefix(target, "telegram:")
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad telegram chat id %q: %w", raw, err)
		}
		return NewTelegram(token, chatID)
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}
