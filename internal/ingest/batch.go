package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/user/recall/pkg/api"
)

// Outcome describes one file's upload attempt.
type Outcome struct {
	Path   string
	Result *api.UploadResult
	Err    error
}

// Uploader pushes local documents to the backend, validating each file
// before it goes over the wire and capping how many uploads run at once.
type Uploader struct {
	client   *api.Client
	maxBytes int64
	parallel int64
}

type Config struct {
	Client        *api.Client
	MaxFileBytes  int64 // 0 means DefaultMaxFileBytes
	MaxConcurrent int64 // 0 means 2
}

func New(config Config) *Uploader {
	maxBytes := config.MaxFileBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxFileBytes
	}
	parallel := config.MaxConcurrent
	if parallel <= 0 {
		parallel = 2
	}
	return &Uploader{
		client:   config.Client,
		maxBytes: maxBytes,
		parallel: parallel,
	}
}

// UploadFile validates and pushes a single document.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*api.UploadResult, error) {
	if err := Validate(path, u.maxBytes); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return u.client.Upload(ctx, filepath.Base(path), content)
}

// Batch uploads every path with at most the configured number in flight.
// Outcomes come back in input order; a failed file never aborts its
// siblings.
func (u *Uploader) Batch(ctx context.Context, paths []string) []Outcome {
	outcomes := make([]Outcome, len(paths))
	sem := semaphore.NewWeighted(u.parallel)
	var wg sync.WaitGroup

	for i, path := range paths {
		i, path := i, path
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = Outcome{Path: path, Err: err}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result, err := u.UploadFile(ctx, path)
			if err != nil {
				slog.Error("upload failed", "file", path, "error", err)
			}
			outcomes[i] = Outcome{Path: path, Result: result, Err: err}
		}()
	}

	wg.Wait()
	return outcomes
}
