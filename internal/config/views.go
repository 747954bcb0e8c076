package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LoggingConfig is the logging view of a Config.
type LoggingConfig struct {
	Level              slog.Level
	PerformanceLogging bool
	LogFile            string
	Verbose            bool
	Debug              bool
}

// Logging derives the logging settings. Production logs warnings, staging
// logs info, development logs debug when debug mode is on.
func (c *Config) Logging() LoggingConfig {
	lc := LoggingConfig{
		PerformanceLogging: c.LogPerformanceMetrics,
		LogFile:            c.PerformanceLogFile,
		Verbose:            c.VerboseLogging,
		Debug:              c.DebugMode,
	}
	switch {
	case c.Environment == EnvProduction:
		lc.Level = slog.LevelWarn
	case c.Environment == EnvStaging:
		lc.Level = slog.LevelInfo
	case c.DebugMode:
		lc.Level = slog.LevelDebug
	default:
		lc.Level = slog.LevelInfo
	}
	return lc
}

// CacheConfig is the cache view of a Config.
type CacheConfig struct {
	Enabled     bool
	Dir         string
	MaxSizeMB   float64
	TTL         time.Duration
	AutoCleanup bool
}

// Cache derives the cache settings.
func (c *Config) Cache() CacheConfig {
	return CacheConfig{
		Enabled:     c.CacheEnabled,
		Dir:         "cache",
		MaxSizeMB:   50,
		TTL:         24 * time.Hour,
		AutoCleanup: true,
	}
}

// EnsureDir creates the cache directory when caching is enabled.
func (cc CacheConfig) EnsureDir() error {
	if !cc.Enabled {
		return nil
	}
	if err := os.MkdirAll(cc.Dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", cc.Dir, err)
	}
	return nil
}

// MaxBytes is MaxSizeMB in bytes.
func (cc CacheConfig) MaxBytes() int64 {
	return int64(cc.MaxSizeMB * 1024 * 1024)
}

// Path joins name onto the cache directory.
func (cc CacheConfig) Path(name string) string {
	return filepath.Join(cc.Dir, name)
}
