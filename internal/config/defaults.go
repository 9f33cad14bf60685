package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	DefaultQueryPath = "/query"

	DefaultInterpreterName = "zuery"
	DefaultInterpreterPath = "zuery"

	// 0 waits for the interpreter forever.
	DefaultInterpreterTimeoutSeconds = 0
	DefaultMaxConcurrent             = 1

	DefaultMaxBodyBytes int64 = 1 << 20

	DefaultAPIKeyHeader = "X-API-Key"

	DefaultCORSMaxAge = 300
)

var DefaultCORSOrigins = []string{"*"}
