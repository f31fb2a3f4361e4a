package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/chatmark/internal/parser"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// Auth
	APIKey string

	// Request limits
	MaxBodyBytes int64

	// Rendering
	CacheSize      int
	HighlightStyle string
	DefaultDialect string

	// Batch worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Persistence; empty disables the transcript store.
	StorePath string

	StatsWindow time.Duration
}

// Load reads the configuration. When CHATMARK_CONFIG names a YAML file, its
// keys (environment variable names, any case) provide values that the
// environment then overrides.
func Load() (Config, error) {
	src := source{}
	if path := os.Getenv("CHATMARK_CONFIG"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}

	cfg := Config{
		Port:     src.envOr("PORT", "8090"),
		LogLevel: src.envLevel("LOG_LEVEL", slog.LevelInfo),

		APIKey: src.envOr("CHATMARK_API_KEY", ""),

		MaxBodyBytes: src.envInt64("MAX_BODY_BYTES", 1<<20), // 1MiB

		CacheSize:      src.envInt("CACHE_SIZE", 256),
		HighlightStyle: src.envOr("HIGHLIGHT_STYLE", "monokai"),
		DefaultDialect: strings.ToLower(src.envOr("DEFAULT_DIALECT", parser.DialectChat)),

		WorkerCount:  src.envInt("WORKER_COUNT", 4),
		MaxQueueSize: src.envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       src.envDuration("JOB_TTL", 1*time.Hour),

		StorePath: "chatmark.db",

		StatsWindow: src.envDuration("STATS_WINDOW", 1*time.Hour),
	}
	if v, ok := src.lookup("STORE_PATH"); ok {
		cfg.StorePath = v
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CHATMARK_API_KEY is required")
	}
	if !parser.IsSupportedDialect(c.DefaultDialect) {
		return fmt.Errorf("DEFAULT_DIALECT %q is not supported", c.DefaultDialect)
	}
	return nil
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	file := make(map[string]string, len(raw))
	for k, v := range raw {
		file[strings.ToUpper(k)] = v
	}
	return file, nil
}

// source resolves keys from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

func (s source) get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) envOr(key, fallback string) string {
	if v := s.get(key); v != "" {
		return v
	}
	return fallback
}

func (s source) envInt(key string, fallback int) int {
	if v := s.get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envInt64(key string, fallback int64) int64 {
	if v := s.get(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envDuration(key string, fallback time.Duration) time.Duration {
	if v := s.get(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func (s source) envLevel(key string, fallback slog.Level) slog.Level {
	if v := s.get(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
