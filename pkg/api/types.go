package api

import "encoding/json"

// Evidence is a scored, retrieved content span returned by the backend
// search system. Score is the fused relevance value used for ordering;
// Scores carries the per-signal components it was fused from.
type Evidence struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Images    []string        `json:"images,omitempty"`
	Score     float64         `json:"score"`
	Scores    SubScores       `json:"scores"`
	Page      int             `json:"page"`
	ChunkType string          `json:"chunkType,omitempty"`
	BBox      json.RawMessage `json:"bbox,omitempty"`
}

// SubScores breaks a fused relevance score into its lexical and vector
// components.
type SubScores struct {
	Lexical float64 `json:"bm25"`
	Vector  float64 `json:"vector"`
}

// QueryResponse is the non-streaming answer for a single query.
type QueryResponse struct {
	Role        string     `json:"role"`
	Content     string     `json:"content"`
	Chunks      []Evidence `json:"retrievedChunks"`
	Performance QueryPerf  `json:"performance"`
}

// QueryPerf reports per-request retrieval timing from the backend.
type QueryPerf struct {
	RetrievalLatencyMS float64           `json:"retrieval_latency_ms"`
	NumResults         int               `json:"num_results"`
	CacheStatus        map[string]string `json:"cache_status,omitempty"`
}

// PipelineReport summarizes what ingestion extracted from a document.
// Chunk and element previews are kept raw; only the totals are
// interpreted client-side.
type PipelineReport struct {
	Chunks        []json.RawMessage `json:"chunks,omitempty"`
	Elements      []json.RawMessage `json:"elements,omitempty"`
	TotalChunks   int               `json:"total_chunks"`
	TotalElements int               `json:"total_elements"`
	TotalImages   int               `json:"total_images"`
	TotalTables   int               `json:"total_tables"`
}

// UploadPerf reports ingestion throughput for one document.
type UploadPerf struct {
	DurationSeconds float64 `json:"duration_seconds"`
	ThroughputMBs   float64 `json:"throughput_mb_s"`
}

// UploadResult is the acknowledgement returned once ingestion finishes.
type UploadResult struct {
	Status      string         `json:"status"`
	Filename    string         `json:"filename"`
	Report      PipelineReport `json:"pipeline_report"`
	Performance UploadPerf     `json:"performance"`
}

// Health is the backend liveness report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CacheStats reports hit/miss counters for one backend cache.
type CacheStats struct {
	Hits          int     `json:"hits"`
	Misses        int     `json:"misses"`
	Evictions     int     `json:"evictions"`
	Expirations   int     `json:"expirations"`
	CurrentSize   int     `json:"current_size"`
	MaxSize       int     `json:"max_size"`
	HitRatePct    float64 `json:"hit_rate_percent"`
	TotalRequests int     `json:"total_requests"`
}

// AllCacheStats groups the backend's retrieval and answer caches.
type AllCacheStats struct {
	Retrieval CacheStats `json:"retrieval_cache"`
	Answer    CacheStats `json:"answer_cache"`
}

// CacheClearResult reports how many entries a cache clear removed.
type CacheClearResult struct {
	Status           string `json:"status"`
	RetrievalCleared int    `json:"retrieval_cleared"`
	AnswerCleared    int    `json:"answer_cleared"`
}

// IngestionRun is one recorded ingestion benchmark sample.
type IngestionRun struct {
	Timestamp       string  `json:"timestamp"`
	FileSizeMB      float64 `json:"file_size_mb"`
	DurationSeconds float64 `json:"duration_seconds"`
	ThroughputMBs   float64 `json:"throughput_mb_s"`
	NumChunks       int     `json:"num_chunks"`
	MemoryMB        float64 `json:"memory_mb"`
	ColdStart       bool    `json:"is_cold_start"`
}

// RetrievalRun is one recorded retrieval benchmark sample.
type RetrievalRun struct {
	Timestamp  string  `json:"timestamp"`
	Query      string  `json:"query"`
	NumResults int     `json:"num_results"`
	LatencyMS  float64 `json:"latency_ms"`
	AvgScore   float64 `json:"avg_score"`
	MinScore   float64 `json:"min_score"`
	MaxScore   float64 `json:"max_score"`
	MemoryMB   float64 `json:"memory_mb"`
	ColdStart  bool    `json:"is_cold_start"`
}

// BenchmarkMetrics is the backend's accumulated benchmark report. Summary
// keys vary by backend version, so they stay loosely typed.
type BenchmarkMetrics struct {
	IngestionRuns []IngestionRun                `json:"ingestion_runs"`
	RetrievalRuns []RetrievalRun                `json:"retrieval_runs"`
	Summary       map[string]map[string]float64 `json:"summary"`
}

// BenchmarkSaved acknowledges a benchmark report written server-side.
type BenchmarkSaved struct {
	Status     string           `json:"status"`
	ReportPath string           `json:"report_path"`
	Metrics    BenchmarkMetrics `json:"metrics"`
}
