// Package config loads and validates the portal agent config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the front-end facing HTTP API listens on (e.g. :8081).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address the gRPC health server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// DatabaseURL is the Postgres DSN holding credentials, roles and profiles. Empty means demo-only.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// RedisAddr is the Redis address for session records and auth change notifications.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	// SessionKeyPrefix prefixes every session record key.
	SessionKeyPrefix string `mapstructure:"SESSION_KEY_PREFIX"`
	// SessionChannel is the Pub/Sub channel carrying signed_in/signed_out events.
	SessionChannel string `mapstructure:"SESSION_CHANNEL"`
	// SessionTTL is the session lifetime (e.g. "24h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// SessionTokenFile is where the agent keeps its session token between restarts.
	SessionTokenFile string `mapstructure:"SESSION_TOKEN_FILE"`
	// BootstrapTimeout bounds the initial session retrieval (e.g. "5s").
	BootstrapTimeoutRaw string `mapstructure:"BOOTSTRAP_TIMEOUT"`

	// JWTPrivateKey is the PEM-encoded private key (RSA, ECDSA or Ed25519) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// DemoAccountsEnabled turns on the fixed demo identities. Must not be true when Env is production.
	DemoAccountsEnabled bool `mapstructure:"DEMO_ACCOUNTS_ENABLED"`

	// AccessPolicyEngine selects the route gate implementation: "table" or "opa".
	AccessPolicyEngine string `mapstructure:"ACCESS_POLICY_ENGINE"`
	// AccessPolicyFile optionally overrides the built-in Rego access policy.
	AccessPolicyFile string `mapstructure:"ACCESS_POLICY_FILE"`

	// CORSAllowedOrigins is a comma-separated origin list for the front end.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Telemetry (optional). When Kafka brokers are set, session events are published to Kafka
	// and reach audit_logs through cmd/worker instead of being written by the agent.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	TelemetryKafkaTopic   string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group cmd/worker joins to archive events into audit_logs.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// OTLPEndpoint enables OTLP trace/metric/log export when set (e.g. "localhost:4317").
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_KEY_PREFIX", "portal:session:")
	v.SetDefault("SESSION_CHANNEL", "portal:auth:events")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_TOKEN_FILE", ".portal-session")
	v.SetDefault("BOOTSTRAP_TIMEOUT", "5s")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "portal-auth")
	v.SetDefault("JWT_AUDIENCE", "portal-agent")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("DEMO_ACCOUNTS_ENABLED", true)
	v.SetDefault("ACCESS_POLICY_ENGINE", "table")
	v.SetDefault("ACCESS_POLICY_FILE", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "portal-session-events")
	v.SetDefault("KAFKA_GROUP_ID", "portal-audit-worker")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "portal-agent")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.DemoAccountsEnabled && cfg.Env == "production" {
		return nil, errors.New("config: DEMO_ACCOUNTS_ENABLED must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.AccessPolicyEngine = strings.ToLower(strings.TrimSpace(cfg.AccessPolicyEngine))
	switch cfg.AccessPolicyEngine {
	case "":
		cfg.AccessPolicyEngine = "table"
	case "table", "opa":
	default:
		return nil, errors.New("config: ACCESS_POLICY_ENGINE must be table or opa")
	}

	return &cfg, nil
}

// SessionTTL parses SESSION_TTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTLRaw)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// BootstrapTimeout parses BOOTSTRAP_TIMEOUT as a time.Duration. Returns 5s if unset or invalid.
func (c *Config) BootstrapTimeout() time.Duration {
	d, err := time.ParseDuration(c.BootstrapTimeoutRaw)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// RemoteBackendEnabled reports whether the database, Redis and signing keys are all configured.
// Without them the agent serves demo identities only.
func (c *Config) RemoteBackendEnabled() bool {
	return c.DatabaseURL != "" && c.RedisAddr != "" && c.JWTPrivateKey != "" && c.JWTPublicKey != ""
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TelemetryKafkaBrokers)
}

// CORSOrigins returns the allowed CORS origins.
func (c *Config) CORSOrigins() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
