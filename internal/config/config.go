package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Source identifies which layer supplied a configuration value.
type Source string

// Sources in increasing priority.
const (
	SourceDefault Source = "default"
	SourcePreset  Source = "preset"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceCLI     Source = "cli"
)

// Environments recognised by the preset layer.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ErrInvalidConfig is returned when a layer supplies a value that cannot be
// parsed, or the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}

// Config is the resolved performance configuration. Sources records, per
// YAML key, which layer supplied the final value.
type Config struct {
	EnableProfiling       bool   `yaml:"enable_profiling"`
	EnableMemoryTracking  bool   `yaml:"enable_memory_tracking"`
	LogPerformanceMetrics bool   `yaml:"log_performance_metrics"`
	PerformanceLogFile    string `yaml:"performance_log_file" validate:"required_if=LogPerformanceMetrics true"`

	MaxConcurrentOperations  int     `yaml:"max_concurrent_operations" validate:"gt=0"`
	MemoryWarningThresholdMB float64 `yaml:"memory_warning_threshold_mb" validate:"gte=0"`
	TimeWarningThresholdS    float64 `yaml:"execution_time_warning_threshold_s" validate:"gte=0"`

	BatchSize           int     `yaml:"batch_size" validate:"gt=0"`
	AsyncTimeoutS       float64 `yaml:"async_timeout_s" validate:"gt=0"`
	CacheEnabled        bool    `yaml:"cache_enabled"`
	LazyLoading         bool    `yaml:"lazy_loading"`
	RegressionThreshold float64 `yaml:"regression_threshold" validate:"gte=0"`

	Environment    string `yaml:"environment" validate:"oneof=development staging production"`
	DebugMode      bool   `yaml:"debug_mode"`
	VerboseLogging bool   `yaml:"verbose_logging"`
	NoColor        bool   `yaml:"no_color"`

	Sources map[string]Source `yaml:"-"`
}

// Default returns the hardcoded defaults with every source set to default.
func Default() *Config {
	c := &Config{
		EnableProfiling:          false,
		EnableMemoryTracking:     true,
		LogPerformanceMetrics:    true,
		PerformanceLogFile:       "performance.log",
		MaxConcurrentOperations:  50,
		MemoryWarningThresholdMB: 100,
		TimeWarningThresholdS:    1,
		BatchSize:                100,
		AsyncTimeoutS:            30,
		CacheEnabled:             true,
		LazyLoading:              true,
		RegressionThreshold:      0.10,
		Environment:              EnvDevelopment,
		DebugMode:                true,
		VerboseLogging:           true,
		Sources:                  make(map[string]Source, len(fields)),
	}
	for _, f := range fields {
		c.Sources[f.key] = SourceDefault
	}
	return c
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s=%v fails %s", fe.Field(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Source reports which layer supplied key.
func (c *Config) Source(key string) Source {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// StageProfile reports whether a stage profile was asked for. Only an
// explicit setting counts: the development preset turns enable_profiling on
// for its own bookkeeping but never prints a profile by itself.
func (c *Config) StageProfile() bool {
	if !c.EnableProfiling {
		return false
	}
	switch c.Source("enable_profiling") {
	case SourceFile, SourceEnv, SourceCLI:
		return true
	default:
		return false
	}
}

// ScriptTimeout bounds each external program run.
func (c *Config) ScriptTimeout() time.Duration {
	return time.Duration(c.AsyncTimeoutS * float64(time.Second))
}

// field binds a YAML key to its environment variable, CLI flag and setter.
type field struct {
	key  string
	env  string
	flag string
	set  func(c *Config, raw string) error
}

var fields = []field{
	{"enable_profiling", "PERF_ENABLE_PROFILING", "profile", boolSetter(func(c *Config) *bool { return &c.EnableProfiling })},
	{"enable_memory_tracking", "PERF_ENABLE_MEMORY", "memory", boolSetter(func(c *Config) *bool { return &c.EnableMemoryTracking })},
	{"log_performance_metrics", "PERF_LOG_METRICS", "log-metrics", boolSetter(func(c *Config) *bool { return &c.LogPerformanceMetrics })},
	{"performance_log_file", "PERF_LOG_FILE", "log-file", stringSetter(func(c *Config) *string { return &c.PerformanceLogFile })},
	{"max_concurrent_operations", "PERF_MAX_CONCURRENT", "concurrent-limit", intSetter(func(c *Config) *int { return &c.MaxConcurrentOperations })},
	{"memory_warning_threshold_mb", "PERF_MEMORY_THRESHOLD", "memory-threshold", floatSetter(func(c *Config) *float64 { return &c.MemoryWarningThresholdMB })},
	{"execution_time_warning_threshold_s", "PERF_TIME_THRESHOLD", "time-threshold", floatSetter(func(c *Config) *float64 { return &c.TimeWarningThresholdS })},
	{"batch_size", "PERF_BATCH_SIZE", "batch-size", intSetter(func(c *Config) *int { return &c.BatchSize })},
	{"async_timeout_s", "PERF_ASYNC_TIMEOUT", "timeout", floatSetter(func(c *Config) *float64 { return &c.AsyncTimeoutS })},
	{"cache_enabled", "PERF_CACHE_ENABLED", "cache", boolSetter(func(c *Config) *bool { return &c.CacheEnabled })},
	{"lazy_loading", "PERF_LAZY_LOADING", "", boolSetter(func(c *Config) *bool { return &c.LazyLoading })},
	{"regression_threshold", "PERF_REGRESSION_THRESHOLD", "regression-threshold", floatSetter(func(c *Config) *float64 { return &c.RegressionThreshold })},
	{"environment", "ENVIRONMENT", "environment", setEnvironment},
	{"debug_mode", "DEBUG", "debug", boolSetter(func(c *Config) *bool { return &c.DebugMode })},
	{"verbose_logging", "VERBOSE_LOGGING", "verbose", boolSetter(func(c *Config) *bool { return &c.VerboseLogging })},
	{"no_color", "NO_COLOR", "no-color", boolSetter(func(c *Config) *bool { return &c.NoColor })},
}

// presenceEnv lists variables that mean true whenever they are non-empty,
// following the no-color.org convention.
var presenceEnv = map[string]bool{"NO_COLOR": true}

func lookupField(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// parseBool accepts true, 1, yes and on (any case). Anything else is false.
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

func boolSetter(ptr func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*ptr(c) = parseBool(raw)
		return nil
	}
}

func stringSetter(ptr func(*Config) *string) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*ptr(c) = raw
		return nil
	}
}

func intSetter(ptr func(*Config) *int) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		*ptr(c) = v
		return nil
	}
}

func floatSetter(ptr func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return err
		}
		*ptr(c) = v
		return nil
	}
}

// setEnvironment lowercases the name. Unknown names resolve to development.
func setEnvironment(c *Config, raw string) error {
	env := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := presets[env]; !ok {
		env = EnvDevelopment
	}
	c.Environment = env
	return nil
}

// presets hold the per-environment overrides applied above the defaults.
var presets = map[string]map[string]string{
	EnvProduction: {
		"debug_mode":                "false",
		"verbose_logging":           "false",
		"enable_profiling":          "false",
		"max_concurrent_operations": "100",
		"batch_size":                "500",
	},
	EnvStaging: {
		"debug_mode":                "false",
		"verbose_logging":           "true",
		"enable_profiling":          "true",
		"max_concurrent_operations": "75",
		"batch_size":                "250",
	},
	EnvDevelopment: {
		"debug_mode":                "true",
		"verbose_logging":           "true",
		"enable_profiling":          "true",
		"max_concurrent_operations": "25",
		"batch_size":                "50",
	},
}

// getConfigPath finds .hellobench.yaml in the working directory, then in
// the user config directory. Returns "" when neither exists.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "hellobench", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
