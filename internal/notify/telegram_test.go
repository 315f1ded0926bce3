// internal/notify/telegram_test.go
package notify

import (
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	parts := splitMessage("short message")
	if len(parts) != 1 {
		t.Errorf("expected 1 part, got %d", len(parts))
	}
	if parts[0] != "short message" {
		t.Errorf("unexpected content: %q", parts[0])
	}
}

func TestSplitMessageLong(t *testing.T) {
	long := strings.Repeat("a", 10000)
	parts := splitMessage(long)
	if len(parts) != 3 {
		t.Errorf("expected 3 parts, got %d", len(parts))
	}
	for i, part := range parts[:2] {
		if len(part) != maxTelegramMessage {
			t.Errorf("part %d length = %d, want %d", i, len(part), maxTelegramMessage)
		}
	}
}

func TestTelegramBuilderBadChatID(t *testing.T) {
	builder := TelegramBuilder("token")
	if _, err := builder("telegram:not-a-number"); err == nil {
		t.Error("expected error for non-numeric chat id")
	}
}
