package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/user/recall/internal/conversation"
	"github.com/user/recall/internal/identity"
	"github.com/user/recall/internal/ingest"
	"github.com/user/recall/internal/pipeline"
	"github.com/user/recall/internal/status"
	"github.com/user/recall/internal/stream"
	"github.com/user/recall/internal/types"
	"github.com/user/recall/pkg/api"
)

// ErrSuperseded reports a turn abandoned because the session was reset
// while its stream was still open.
var ErrSuperseded = errors.New("turn superseded by session reset")

// Hooks observe coordinator activity as it happens. All fields are
// optional.
type Hooks struct {
	OnPipeline func(stage pipeline.Stage, metrics pipeline.Metrics)
	OnQueries  func(queries []string)
	OnEvidence func(chunks []api.Evidence)
	OnToken    func(fragment string)
}

// Config wires a Coordinator to its collaborators.
type Config struct {
	BaseURL       string
	Identity      *identity.Store
	Transcript    types.TranscriptStore
	Counter       *conversation.Counter
	Notifier      types.Notifier
	Reconnect     status.ReconnectPolicy
	MaxFileBytes  int64
	MaxConcurrent int64
	Hooks         Hooks
}

// Coordinator owns one client context: the session identity, the
// pipeline tracker fed by the push channel, and the turn lifecycle over
// the streaming query channel. Epochs fence the tracker: every reset
// bumps the epoch and replaces the push channel, so events from the
// previous document run can no longer move anything.
type Coordinator struct {
	baseURL    string
	identity   *identity.Store
	tracker    *pipeline.Tracker
	transcript types.TranscriptStore
	counter    *conversation.Counter
	notifier   types.Notifier
	policy     status.ReconnectPolicy
	maxBytes   int64
	parallel   int64
	hooks      Hooks

	mu     sync.Mutex // guards status
	status *status.Channel

	turnMu sync.Mutex // one streaming turn at a time
}

// New creates a coordinator. Call Start to open the push channel.
func New(cfg Config) *Coordinator {
	policy := cfg.Reconnect
	if policy.Base == 0 {
		policy = status.DefaultReconnectPolicy()
	}
	return &Coordinator{
		baseURL:    cfg.BaseURL,
		identity:   cfg.Identity,
		tracker:    pipeline.NewTracker(),
		transcript: cfg.Transcript,
		counter:    cfg.Counter,
		notifier:   cfg.Notifier,
		policy:     policy,
		maxBytes:   cfg.MaxFileBytes,
		parallel:   cfg.MaxConcurrent,
		hooks:      cfg.Hooks,
	}
}

// Start opens the push channel bound to the current epoch.
func (c *Coordinator) Start() {
	c.reopenStatus(c.tracker.Epoch())
}

// Stop closes the push channel. Pending reconnects are cancelled and
// nothing is emitted afterwards.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != nil {
		c.status.Close()
		c.status = nil
	}
}

// SessionID returns the identity attached to every backend interaction.
func (c *Coordinator) SessionID() types.SessionID {
	return c.identity.Current()
}

// Pipeline returns the current stage and counters.
func (c *Coordinator) Pipeline() (pipeline.Stage, pipeline.Metrics) {
	return c.tracker.Stage(), c.tracker.Metrics()
}

// API returns a request client stamped with the current identity.
func (c *Coordinator) API() *api.Client {
	return api.New(api.Config{
		BaseURL:   c.baseURL,
		SessionID: string(c.identity.Current()),
	})
}

// ResetSession rotates the identity and starts a fresh pipeline epoch.
// The old session's transcript stays on disk; an in-flight turn is
// abandoned and its late events dropped.
func (c *Coordinator) ResetSession() types.SessionID {
	id := c.identity.Rotate()
	c.resetPipeline()
	return id
}

// TurnResult is the outcome of one completed streaming turn.
type TurnResult struct {
	Text     string
	Evidence []api.Evidence
	Queries  []string
	Stats    types.TurnStats
}

// RunTurn streams one query to completion. Turns are serialized; the
// result carries the frozen answer, the last evidence and query
// batches, and per-turn stats.
func (c *Coordinator) RunTurn(ctx context.Context, query string) (*TurnResult, error) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	sessionID := c.identity.Current()
	turnEpoch := c.tracker.Epoch()
	turnID := types.NewTurnID()

	c.record(ctx, sessionID, &types.Message{
		ID:      types.NewMessageID(),
		TurnID:  turnID,
		Role:    types.RoleUser,
		Content: query,
		At:      time.Now(),
	})

	agg := conversation.NewAggregator(turnID)
	var failMsg string

	// Late callbacks from a superseded turn must not leak into the new
	// context, so every one re-checks the epoch.
	live := func() bool { return c.tracker.Epoch() == turnEpoch }

	client := stream.New(stream.Config{BaseURL: c.baseURL, SessionID: string(sessionID)})
	client.Send(ctx, query, stream.Callbacks{
		OnQueries: func(qs []string) {
			if !live() {
				return
			}
			agg.SetQueries(qs)
			if c.hooks.OnQueries != nil {
				c.hooks.OnQueries(qs)
			}
		},
		OnChunks: func(chunks []api.Evidence) {
			if !live() {
				return
			}
			agg.SetEvidence(chunks)
			if c.hooks.OnEvidence != nil {
				c.hooks.OnEvidence(chunks)
			}
		},
		OnToken: func(fragment string) {
			if !live() {
				return
			}
			agg.AppendToken(fragment)
			if c.hooks.OnToken != nil {
				c.hooks.OnToken(fragment)
			}
		},
		OnDone: func(finalText string) {
			if !live() {
				return
			}
			agg.Finish(finalText)
		},
		OnError: func(message string) {
			if !live() {
				return
			}
			failMsg = message
		},
	})

	if c.tracker.Epoch() != turnEpoch {
		return nil, ErrSuperseded
	}
	if failMsg != "" {
		return nil, fmt.Errorf("turn failed: %s", failMsg)
	}

	agg.Finish("")
	text := agg.Text()

	stats := types.TurnStats{Fragments: agg.Fragments(), Duration: agg.Elapsed()}
	if c.counter != nil {
		stats = c.counter.Stats(text, agg.Fragments(), agg.Elapsed())
	}

	c.record(ctx, sessionID, agg.Message())

	return &TurnResult{
		Text:     text,
		Evidence: agg.Evidence(),
		Queries:  agg.Queries(),
		Stats:    stats,
	}, nil
}

// Query runs one non-streaming turn and records both sides in the
// transcript.
func (c *Coordinator) Query(ctx context.Context, query string) (*api.QueryResponse, error) {
	sessionID := c.identity.Current()
	turnID := types.NewTurnID()

	c.record(ctx, sessionID, &types.Message{
		ID:      types.NewMessageID(),
		TurnID:  turnID,
		Role:    types.RoleUser,
		Content: query,
		At:      time.Now(),
	})

	resp, err := c.API().Query(ctx, query)
	if err != nil {
		return nil, err
	}

	c.record(ctx, sessionID, &types.Message{
		ID:       types.NewMessageID(),
		TurnID:   turnID,
		Role:     types.RoleAssistant,
		Content:  resp.Content,
		At:       time.Now(),
		Evidence: resp.Chunks,
	})

	return resp, nil
}

// Upload pushes one document and drives the tracker from both sides:
// the push channel reports stages as they happen, and the upload
// acknowledgement carries the authoritative totals. The monotonic guard
// makes the race between the two harmless.
func (c *Coordinator) Upload(ctx context.Context, path string) (*api.UploadResult, error) {
	epoch := c.resetPipeline()
	c.applyEvent(epoch, pipeline.StageTransition(pipeline.StageUploading))

	result, err := c.uploader().UploadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	c.applyEvent(epoch, pipeline.CountUpdate(pipeline.StagePartitioning, result.Report.TotalElements))
	c.applyEvent(epoch, pipeline.CountUpdate(pipeline.StageChunking, result.Report.TotalChunks))
	c.applyEvent(epoch, pipeline.CompletionMetrics(result.Report.TotalImages, result.Report.TotalTables))
	c.applyEvent(epoch, pipeline.StageTransition(pipeline.StageComplete))

	c.notify(ctx, "document indexed", fmt.Sprintf(
		"%s: %d chunks from %d elements",
		result.Filename, result.Report.TotalChunks, result.Report.TotalElements,
	))

	return result, nil
}

// UploadAll pushes several documents with bounded concurrency. Bulk
// transfers bypass the tracker; per-file totals come back in the
// outcomes.
func (c *Coordinator) UploadAll(ctx context.Context, paths []string) []ingest.Outcome {
	return c.uploader().Batch(ctx, paths)
}

func (c *Coordinator) uploader() *ingest.Uploader {
	return ingest.New(ingest.Config{
		Client:        c.API(),
		MaxFileBytes:  c.maxBytes,
		MaxConcurrent: c.parallel,
	})
}

// applyEvent feeds one progress event through the tracker, surfacing
// accepted events to the pipeline hook. It is also the push channel's
// emit target.
func (c *Coordinator) applyEvent(epoch uint64, ev pipeline.Event) {
	if !c.tracker.Apply(epoch, ev) {
		return
	}
	if c.hooks.OnPipeline != nil {
		c.hooks.OnPipeline(c.tracker.Stage(), c.tracker.Metrics())
	}
}

// resetPipeline bumps the epoch, clears the tracker, and rebinds the
// push channel to the new epoch.
func (c *Coordinator) resetPipeline() uint64 {
	epoch := c.tracker.Reset()
	c.reopenStatus(epoch)
	return epoch
}

func (c *Coordinator) reopenStatus(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != nil {
		c.status.Close()
	}
	c.status = status.NewChannel(status.ChannelConfig{
		URL:       status.Endpoint(c.baseURL),
		SessionID: string(c.identity.Current()),
		Epoch:     epoch,
		Policy:    c.policy,
		Emit:      c.applyEvent,
	})
	c.status.Start()
}

func (c *Coordinator) record(ctx context.Context, sessionID types.SessionID, msg *types.Message) {
	if c.transcript == nil {
		return
	}
	if err := c.transcript.Append(ctx, sessionID, msg); err != nil {
		slog.Warn("transcript append failed", "session_id", string(sessionID), "error", err)
	}
}

func (c *Coordinator) notify(ctx context.Context, subject, body string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, subject, body); err != nil {
		slog.Warn("notification failed", "subject", subject, "error", err)
	}
}
