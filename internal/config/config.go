package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	Backend  struct {
		BaseURL        string `json:"base_url"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"backend"`
	Upload struct {
		MaxFileMB     int `json:"max_file_mb"`
		MaxConcurrent int `json:"max_concurrent"`
	} `json:"upload"`
	Chat struct {
		TokenizerModel string `json:"tokenizer_model"`
		HistoryLimit   int    `json:"history_limit"`
	} `json:"chat"`
	Reconnect struct {
		BaseSeconds int     `json:"base_seconds"`
		Multiplier  float64 `json:"multiplier"`
		MaxSeconds  int     `json:"max_seconds"`
	} `json:"reconnect"`
	Notify struct {
		Targets []string `json:"targets"`
	} `json:"notify"`
	Telegram struct {
		Token string `json:"token"`
	} `json:"telegram"`
	Monitor struct {
		HealthSchedule string `json:"health_schedule"`
		CacheSchedule  string `json:"cache_schedule"`
	} `json:"monitor"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".recall", "config.json")
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".recall"),
		LogLevel: "info",
	}
	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.TimeoutSeconds = 60
	cfg.Upload.MaxFileMB = 5
	cfg.Upload.MaxConcurrent = 2
	cfg.Chat.TokenizerModel = "gpt-4"
	cfg.Chat.HistoryLimit = 20
	cfg.Reconnect.BaseSeconds = 1
	cfg.Reconnect.Multiplier = 2.0
	cfg.Reconnect.MaxSeconds = 10
	cfg.Monitor.HealthSchedule = "@every 1m"
	cfg.Monitor.CacheSchedule = "@every 5m"

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv("RECALL_BASE_URL"); baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	if dataDir := os.Getenv("RECALL_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeBytes(path, data)
}

func writeBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// SessionPath is where the persisted session identity lives.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// MaxFileBytes converts the upload cap to bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.Upload.MaxFileMB) * 1024 * 1024
}

// Timeout is the plain request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// ReconnectBase is the first reconnect delay.
func (c *Config) ReconnectBase() time.Duration {
	return time.Duration(c.Reconnect.BaseSeconds) * time.Second
}

// ReconnectMax caps the reconnect delay.
func (c *Config) ReconnectMax() time.Duration {
	return time.Duration(c.Reconnect.MaxSeconds) * time.Second
}
