package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	HTTPPort  int
	DB        DBConfig
	NATS      NATSConfig
	Outbox    OutboxConfig
	Retry     RetryConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	LogLevel  string
	LogFormat string
}

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// NATSConfig holds broker configuration. An empty URL selects the in-memory
// bus, which is the zero-infrastructure development mode.
type NATSConfig struct {
	URL string
}

// OutboxConfig controls the drain loop.
type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RetryConfig is the per-message consumer retry budget.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// AuthConfig holds bearer-token validation parameters. Either a public key
// file (RSA) or a shared secret (HMAC) must be set.
type AuthConfig struct {
	PublicKeyFile string
	Secret        string
	Issuer        string
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Validate checks required configuration values.
func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8090),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "finbooks"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "finbooks_gl"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Outbox: OutboxConfig{
			Interval:  getEnvDuration("OUTBOX_INTERVAL", time.Second),
			BatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		Retry: RetryConfig{
			MaxAttempts:    getEnvInt("CONSUMER_RETRY_MAX_ATTEMPTS", 3),
			InitialBackoff: getEnvDuration("CONSUMER_RETRY_INITIAL_BACKOFF", 100*time.Millisecond),
			MaxBackoff:     getEnvDuration("CONSUMER_RETRY_MAX_BACKOFF", 5*time.Second),
		},
		Auth: AuthConfig{
			PublicKeyFile: getEnv("AUTH_PUBLIC_KEY_FILE", ""),
			Secret:        getEnv("AUTH_SECRET", ""),
			Issuer:        getEnv("AUTH_ISSUER", "finbooks-identity"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  "gl-service",
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
