// internal/identity/store_test.go
package identity

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreMintsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewStore(path)
	id := store.Current()
	if len(id) != 36 {
		t.Fatalf("expected UUID, got %q", id)
	}

	// Same store returns the same identity.
	if again := store.Current(); again != id {
		t.Errorf("Current() changed within a process: %q then %q", id, again)
	}

	// A fresh store over the same file adopts the persisted identity.
	reopened := NewStore(path)
	if got := reopened.Current(); got != id {
		t.Errorf("reopened store got %q, want %q", got, id)
	}
}

func TestStoreRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewStore(path)
	first := store.Current()
	second := store.Rotate()

	if second == first {
		t.Fatal("Rotate returned the old identity")
	}
	if store.Current() != second {
		t.Error("Current() did not follow Rotate")
	}

	reopened := NewStore(path)
	if got := reopened.Current(); got != second {
		t.Errorf("persisted identity = %q, want rotated %q", got, second)
	}
}

func TestStoreInvalidFileRegenerates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	id := store.Current()
	if len(id) != 36 {
		t.Fatalf("expected fresh UUID, got %q", id)
	}

	// The regenerated identity must have been written back.
	reopened := NewStore(path)
	if got := reopened.Current(); got != id {
		t.Errorf("reopened store got %q, want %q", got, id)
	}
}

func TestStoreRejectsMalformedIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"session_id":"not-a-uuid"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	id := store.Current()
	if id == "not-a-uuid" {
		t.Fatal("adopted an identity that does not parse")
	}
	if err := id.Validate(); err != nil {
		t.Fatalf("replacement identity invalid: %v", err)
	}
}

func TestStoreSurvivesUnwritablePath(t *testing.T) {
	// Parent "dir" is a regular file, so persistence must fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(filepath.Join(blocker, "session.json"))
	id := store.Current()
	if len(id) != 36 {
		t.Fatalf("expected in-memory UUID, got %q", id)
	}
	if again := store.Current(); again != id {
		t.Errorf("ephemeral identity not stable: %q then %q", id, again)
	}
}
