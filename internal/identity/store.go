// internal/identity/store.go
package identity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/recall/internal/types"
)

// Store owns the session identity: one opaque ID persisted across runs
// and stamped on every backend interaction. Persistence failures are
// never fatal; the identity then lives in memory for the process
// lifetime.
type Store struct {
	path string
	mu   sync.Mutex
	id   types.SessionID
}

// record is the on-disk shape of the persisted identity.
type record struct {
	SessionID types.SessionID `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	RotatedAt time.Time       `json:"rotated_at,omitempty"`
}

// NewStore creates a store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Current returns the session ID, adopting a previously persisted one
// when available and minting a fresh one otherwise. An unreadable or
// invalid file is treated as absent.
func (s *Store) Current() types.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" {
		return s.id
	}

	if id, ok := s.load(); ok {
		s.id = id
		return s.id
	}

	s.id = types.NewSessionID()
	s.save(record{SessionID: s.id, CreatedAt: time.Now()})
	return s.id
}

// Rotate mints a fresh session ID, abandoning the previous one, and
// persists it.
func (s *Store) Rotate() types.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = types.NewSessionID()
	s.save(record{SessionID: s.id, CreatedAt: time.Now(), RotatedAt: time.Now()})
	return s.id
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (types.SessionID, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("session file unreadable, regenerating", "path", s.path, "error", err)
		}
		return "", false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil || rec.SessionID.Validate() != nil {
		slog.Warn("session file invalid, regenerating", "path", s.path)
		return "", false
	}
	return rec.SessionID, true
}

// save writes the identity atomically. Failure leaves the in-memory
// identity in effect and is only logged.
func (s *Store) save(rec record) {
	if err := s.write(rec); err != nil {
		slog.Warn("session not persisted, continuing in memory", "path", s.path, "error", err)
	}
}

func (s *Store) write(rec record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp session: %w", err)
	}
	return nil
}
