package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	LogLevel     string `json:"log_level"`
	LogFormat    string `json:"log_format"` // json | console
	QueryPath    string `json:"query_path"`
	MaxBodyBytes int64  `json:"max_body_bytes"`

	// Interpreter
	InterpreterName           string   `json:"interpreter_name"`
	InterpreterPath           string   `json:"interpreter_path"`
	InterpreterArgs           []string `json:"interpreter_args"`
	InterpreterTimeoutSeconds int      `json:"interpreter_timeout_seconds"`
	MaxConcurrent             int      `json:"max_concurrent"`
	ScratchDir                string   `json:"scratch_dir"` // empty disables the query scratch file

	// Report parsing
	LenientConfidence bool `json:"lenient_confidence"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header"`
	APIKeys      []string `json:"api_keys"`
	EnableAuth   bool     `json:"enable_auth"`

	// Rate Limiting, 0 disables
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Observability
	EnableAuditLogging bool `json:"enable_audit_logging"`
	MetricsEnabled     bool `json:"metrics_enabled"`
}

func Default() *Config {
	return &Config{
		Host:                      DefaultHost,
		Port:                      DefaultPort,
		Environment:               DefaultEnvironment,
		LogLevel:                  DefaultLogLevel,
		LogFormat:                 DefaultLogFormat,
		QueryPath:                 DefaultQueryPath,
		MaxBodyBytes:              DefaultMaxBodyBytes,
		InterpreterName:           DefaultInterpreterName,
		InterpreterPath:           DefaultInterpreterPath,
		InterpreterTimeoutSeconds: DefaultInterpreterTimeoutSeconds,
		MaxConcurrent:             DefaultMaxConcurrent,
		CORSOrigins:               DefaultCORSOrigins,
		APIKeyHeader:              DefaultAPIKeyHeader,
		EnableAuditLogging:        true,
		MetricsEnabled:            true,
	}
}

// Load builds the config from defaults, an optional JSON file named by
// ZUERY_CONFIG, an optional .env file and the process environment, in
// that order of precedence (last wins).
func Load() (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(getEnv("ZUERY_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	if path := getEnv("ZUERY_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("ZUERY_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("ZUERY_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("ZUERY_ENVIRONMENT", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("ZUERY_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("ZUERY_LOG_FORMAT", ""); v != "" {
		cfg.LogFormat = v
	}
	if v := getEnv("ZUERY_QUERY_PATH", ""); v != "" {
		cfg.QueryPath = v
	}
	if v := getEnv("ZUERY_MAX_BODY_BYTES", ""); v != "" {
		if b, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxBodyBytes = b
		}
	}
	if v := getEnv("ZUERY_INTERPRETER_NAME", ""); v != "" {
		cfg.InterpreterName = v
	}
	if v := getEnv("ZUERY_INTERPRETER_PATH", ""); v != "" {
		cfg.InterpreterPath = v
	}
	if v := getEnv("ZUERY_INTERPRETER_ARGS", ""); v != "" {
		cfg.InterpreterArgs = strings.Fields(v)
	}
	if v := getEnv("ZUERY_INTERPRETER_TIMEOUT_SECONDS", ""); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.InterpreterTimeoutSeconds = s
		}
	}
	if v := getEnv("ZUERY_MAX_CONCURRENT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrent = n
		}
	}
	if v, ok := os.LookupEnv("ZUERY_SCRATCH_DIR"); ok {
		cfg.ScratchDir = v
	}
	if v := getEnv("ZUERY_LENIENT_CONFIDENCE", ""); v != "" {
		cfg.LenientConfidence = parseBool(v)
	}
	if v := getEnv("ZUERY_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := getEnv("ZUERY_API_KEYS", ""); v != "" {
		cfg.APIKeys = splitList(v)
	}
	if v := getEnv("ZUERY_API_KEY_HEADER", ""); v != "" {
		cfg.APIKeyHeader = v
	}
	if v := getEnv("ZUERY_ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = parseBool(v)
	}
	if v := getEnv("ZUERY_RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("ZUERY_ENABLE_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = parseBool(v)
	}
	if v := getEnv("ZUERY_METRICS_ENABLED", ""); v != "" {
		cfg.MetricsEnabled = parseBool(v)
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.InterpreterPath == "" {
		errs = append(errs, errors.New("interpreter_path is required"))
	}
	if !strings.HasPrefix(c.QueryPath, "/") {
		errs = append(errs, fmt.Errorf("query_path %q must start with /", c.QueryPath))
	}
	if c.InterpreterTimeoutSeconds < 0 {
		errs = append(errs, errors.New("interpreter_timeout_seconds must not be negative"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) InterpreterTimeout() time.Duration {
	return time.Duration(c.InterpreterTimeoutSeconds) * time.Second
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
