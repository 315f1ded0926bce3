package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/user/recall/internal/protocol"
	"github.com/user/recall/pkg/api"
)

// Callbacks receive the decoded sub-events of one streaming turn. Every
// turn terminates through exactly one of OnDone or OnError; the other
// callbacks are optional progress hooks. Nil callbacks are skipped.
type Callbacks struct {
	OnQueries func(queries []string)
	OnChunks  func(chunks []api.Evidence)
	OnToken   func(fragment string)
	OnDone    func(finalText string)
	OnError   func(message string)
}

// Config describes the streaming query connection.
type Config struct {
	BaseURL   string
	SessionID string
}

// Client issues streaming queries. Each Send opens an independent
// one-shot stream; concurrent sends are not coalesced.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// New creates a streaming client. The underlying HTTP client carries no
// timeout: answers stream for as long as the producer keeps talking, and
// cancellation comes from the request context.
func New(config Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		sessionID:  config.SessionID,
		httpClient: &http.Client{},
	}
}

// queryRequest is the body of a streaming query.
type queryRequest struct {
	Query string `json:"query"`
}

// Send issues one query and dispatches the response stream to cb. It
// blocks until the turn reaches its terminal callback. A transport that
// cannot be established at all surfaces through OnError and nothing
// else; once the stream is open, the turn always ends in exactly one
// terminal callback even if the producer never says it is done.
func (c *Client) Send(ctx context.Context, query string, cb Callbacks) {
	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		fireError(cb, fmt.Sprintf("marshaling query: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(body))
	if err != nil {
		fireError(cb, fmt.Sprintf("creating request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(api.SessionHeader, c.sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fireError(cb, fmt.Sprintf("connecting stream: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fireError(cb, streamRefused(resp))
		return
	}

	t := &turn{cb: cb}
	t.consume(resp.Body)
}

// streamRefused summarizes a non-success response into an error message.
func streamRefused(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return fmt.Sprintf("stream refused (status %d): %s", resp.StatusCode, detail.Detail)
	}
	return fmt.Sprintf("stream refused (status %d)", resp.StatusCode)
}

// turn tracks one in-flight streaming response. It owns the token
// accumulator and the exactly-once guarantee on the terminal callback.
type turn struct {
	cb       Callbacks
	answer   strings.Builder
	finished bool
}

// consume feeds the body through the frame decoder and dispatches each
// frame in arrival order. Reaching the end of the body without an
// explicit done still fires OnDone with the accumulated text.
func (t *turn) consume(body io.Reader) {
	decoder := protocol.NewDecoder()
	buf := make([]byte, 4096)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, frame := range decoder.Feed(buf[:n]) {
				if stop := t.dispatch(frame); stop {
					return
				}
			}
		}
		if readErr != nil {
			break
		}
	}

	t.done("")
}

// dispatch handles one decoded frame and reports whether the stream is
// finished. An error payload terminates the turn immediately; malformed
// payloads and unknown types are dropped.
func (t *turn) dispatch(frame protocol.Frame) bool {
	if frame.Sentinel {
		t.done("")
		return true
	}

	ev, err := protocol.ParseStreamEvent(frame.Payload)
	if err != nil {
		return false
	}

	switch ev.Type {
	case protocol.EventError:
		t.fail(ev.Data)
		return true

	case protocol.EventQueries:
		if t.cb.OnQueries != nil {
			t.cb.OnQueries(ev.Queries)
		}

	case protocol.EventChunks:
		sortEvidence(ev.Chunks)
		if t.cb.OnChunks != nil {
			t.cb.OnChunks(ev.Chunks)
		}

	case protocol.EventDone:
		t.done(ev.Content)
		return true

	case protocol.EventToken:
		t.answer.WriteString(ev.Content)
		if t.cb.OnToken != nil {
			t.cb.OnToken(ev.Content)
		}
	}

	return false
}

// done fires OnDone at most once. The producer's final text wins when it
// supplies one; otherwise the accumulated tokens stand.
func (t *turn) done(final string) {
	if t.finished {
		return
	}
	t.finished = true
	if final == "" {
		final = t.answer.String()
	}
	if t.cb.OnDone != nil {
		t.cb.OnDone(final)
	}
}

// fail fires OnError at most once and seals the turn.
func (t *turn) fail(message string) {
	if t.finished {
		return
	}
	t.finished = true
	if t.cb.OnError != nil {
		t.cb.OnError(message)
	}
}

func fireError(cb Callbacks, message string) {
	if cb.OnError != nil {
		cb.OnError(message)
	}
}

// sortEvidence orders chunks descending by score, ties preserving
// arrival order.
func sortEvidence(chunks []api.Evidence) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}
