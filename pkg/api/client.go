package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// SessionHeader carries the client's session identifier on every request.
const SessionHeader = "X-Session-ID"

// Config holds connection settings for a backend client.
type Config struct {
	BaseURL   string
	SessionID string
	Timeout   time.Duration
}

// Client talks to the document-QA backend's plain request/response
// endpoints. Streaming endpoints live in their own packages; this client
// covers queries, uploads, and the system surface.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// New creates a backend client with the given configuration.
func New(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		sessionID: config.SessionID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the backend's error response shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// do performs one JSON round trip and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(SessionHeader, c.sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// statusError turns a non-OK response into an error, preferring the
// backend's detail message when one is present.
func statusError(code int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return fmt.Errorf("backend error (status %d): %s", code, eb.Detail)
	}
	return fmt.Errorf("backend error (status %d): %s", code, string(body))
}

// queryRequest is the body for query endpoints.
type queryRequest struct {
	Query string `json:"query"`
}

// Query sends one question and returns the complete answer with its
// retrieved evidence. This is the non-streaming path.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/chat", queryRequest{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &resp, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &h, nil
}

// CacheStats fetches hit/miss statistics for the backend caches.
func (c *Client) CacheStats(ctx context.Context) (*AllCacheStats, error) {
	var stats AllCacheStats
	if err := c.do(ctx, http.MethodGet, "/cache/stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	return &stats, nil
}

// ClearCache empties the backend caches and reports how many entries
// were removed.
func (c *Client) ClearCache(ctx context.Context) (*CacheClearResult, error) {
	var result CacheClearResult
	if err := c.do(ctx, http.MethodPost, "/cache/clear", nil, &result); err != nil {
		return nil, fmt.Errorf("cache clear: %w", err)
	}
	return &result, nil
}

// Benchmark fetches the backend's accumulated benchmark metrics.
func (c *Client) Benchmark(ctx context.Context) (*BenchmarkMetrics, error) {
	var metrics BenchmarkMetrics
	if err := c.do(ctx, http.MethodGet, "/benchmark", nil, &metrics); err != nil {
		return nil, fmt.Errorf("benchmark: %w", err)
	}
	return &metrics, nil
}

// SaveBenchmark asks the backend to persist its benchmark report.
func (c *Client) SaveBenchmark(ctx context.Context) (*BenchmarkSaved, error) {
	var saved BenchmarkSaved
	if err := c.do(ctx, http.MethodPost, "/benchmark/save", nil, &saved); err != nil {
		return nil, fmt.Errorf("benchmark save: %w", err)
	}
	return &saved, nil
}

// Upload submits one document for ingestion and blocks until the backend
// acknowledges with its pipeline report. Ingestion can take minutes, so
// the request deadline comes from ctx rather than the client timeout.
func (c *Client) Upload(ctx context.Context, filename string, content []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(SessionHeader, c.sessionID)

	// No client timeout here: uploads outlive the default window.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upload: %w", statusError(resp.StatusCode, respBody))
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing upload response: %w", err)
	}
	return &result, nil
}
