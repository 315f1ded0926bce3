// internal/conversation/tokens.go
package conversation

import (
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/recall/internal/types"
)

// Counter measures answer length in model tokens, for per-turn stats.
type Counter struct {
	tokenizer *tiktoken.Tiktoken
}

// NewCounter creates a counter for the given model's tokenizer.
func NewCounter(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Counter{tokenizer: enc}, nil
}

// Count returns the token count for a string.
func (c *Counter) Count(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}

// Stats summarizes a finished turn.
func (c *Counter) Stats(text string, fragments int, elapsed time.Duration) types.TurnStats {
	stats := types.TurnStats{
		Tokens:    c.Count(text),
		Fragments: fragments,
		Duration:  elapsed,
	}
	if elapsed > 0 {
		stats.TokensPerSecond = float64(stats.Tokens) / elapsed.Seconds()
	}
	return stats
}
