package status

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/recall/internal/pipeline"
	"github.com/user/recall/internal/protocol"
	"github.com/user/recall/pkg/api"
)

// Endpoint derives the push-channel address from the backend origin by
// rewriting the scheme to its stream-capable form.
func Endpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}

// EmitFunc receives decoded progress events together with the epoch the
// channel was registered under.
type EmitFunc func(epoch uint64, ev pipeline.Event)

// ChannelConfig describes one push-channel subscription.
type ChannelConfig struct {
	URL       string
	SessionID string
	Epoch     uint64
	Policy    ReconnectPolicy
	Emit      EmitFunc
}

// Channel maintains the persistent push connection. It dials, decodes
// envelopes into progress events, and redials with bounded backoff when
// the transport drops. A channel is bound to the epoch it was created
// under; after a reset the owner closes it and opens a fresh one.
type Channel struct {
	url       string
	sessionID string
	epoch     uint64
	policy    ReconnectPolicy
	emit      EmitFunc

	mu      sync.Mutex
	closed  bool
	conn    *websocket.Conn
	retries int

	stop chan struct{}
	done chan struct{}
}

// NewChannel creates a channel; call Start to begin connecting.
func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		url:       cfg.URL,
		sessionID: cfg.SessionID,
		epoch:     cfg.Epoch,
		policy:    cfg.Policy,
		emit:      cfg.Emit,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the connect/read/reconnect loop.
func (c *Channel) Start() {
	go c.run()
}

// Close tears the channel down: it cancels any pending reconnect,
// closes the transport, and suppresses further emission.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	close(c.stop)
	if conn != nil {
		conn.Close()
	}
}

func (c *Channel) run() {
	defer close(c.done)

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		header := http.Header{}
		if c.sessionID != "" {
			header.Set(api.SessionHeader, c.sessionID)
		}

		conn, resp, err := websocket.DefaultDialer.Dial(c.url, header)
		if err != nil {
			if resp != nil {
				resp.Body.Close()
			}
			slog.Debug("status channel dial failed", "url", c.url, "error", err)
			if !c.waitReconnect() {
				return
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.retries = 0
		c.mu.Unlock()

		slog.Info("status channel connected", "url", c.url)
		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()

		if !c.waitReconnect() {
			return
		}
	}
}

// readLoop decodes envelopes until the transport errors or closes.
// Every failure funnels through the single return path, so only one
// reconnect gets scheduled per connection.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("status channel closed", "error", err)
			}
			return
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			// Malformed envelopes are dropped, never fatal.
			slog.Debug("dropping malformed envelope", "error", err)
			continue
		}

		for _, ev := range env.Events() {
			if !c.deliver(ev) {
				return
			}
		}
	}
}

// deliver hands one event to the sink unless the channel was torn down.
func (c *Channel) deliver(ev pipeline.Event) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	c.emit(c.epoch, ev)
	return true
}

// waitReconnect sleeps out the backoff delay and increments the retry
// counter. It reports false when the channel was closed while waiting,
// which cancels the pending reconnect.
func (c *Channel) waitReconnect() bool {
	c.mu.Lock()
	delay := c.policy.Delay(c.retries)
	c.retries++
	c.mu.Unlock()

	slog.Debug("status channel reconnecting", "delay", delay)

	select {
	case <-c.stop:
		return false
	case <-time.After(delay):
		return true
	}
}

func (c *Channel) retryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retries
}
