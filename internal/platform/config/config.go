package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration for the session bridge.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	// Origins allowed to open the websocket; empty accepts any.
	AllowedOrigins []string
	// CIDRs whose X-Forwarded-For is trusted.
	TrustedProxies string
	ShutdownGrace  time.Duration

	Identity   Identity
	Session    Session
	DocStore   DocStore
	Redis      RedisConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	LocalState LocalState
}

// Identity configures the identity toolkit REST backend and ID token verification.
type Identity struct {
	APIKey      string
	BaseURL     string
	TokenURL    string
	JWKSURL     string
	ProjectID   string
	HTTPTimeout time.Duration
	PhoneRegion string
}

// Issuer is the expected `iss` claim of ID tokens.
func (i Identity) Issuer() string {
	return "https://securetoken.google.com/" + i.ProjectID
}

// Session tunes the refresh scheduler and snapshot normalization.
type Session struct {
	RefreshLead time.Duration
	RetryBudget int
	RetryDelay  time.Duration
	TimeZone    string
}

// DocStore selects the live document backend.
type DocStore struct {
	Backend            string // memory | redis | postgres
	CustomerCollection string
	FareContracts      string
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the Postgres pool used by the postgres docstore.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the session audit event producer.
type KafkaConfig struct {
	Brokers string
	Topic   string
	Acks    string
	// GroupID is the consumer group of the audit tail.
	GroupID string
}

// LocalState configures persistence of per-install browser state.
type LocalState struct {
	Backend         string // memory | redis
	Secret          string // seals refresh tokens at rest; generated per process when empty
	TTL             time.Duration
	CleanupInterval time.Duration
}

var (
	DefaultRefreshLead = 60 * time.Second
	DefaultRetryBudget = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultLocalTTL    = 30 * 24 * time.Hour
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           envString("WEBSHOP_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		AllowedOrigins: envList("WEBSHOP_ALLOWED_ORIGINS"),
		TrustedProxies: os.Getenv("WEBSHOP_TRUSTED_PROXIES"),
		ShutdownGrace:  envDuration("WEBSHOP_SHUTDOWN_GRACE", 15*time.Second),
		Identity: Identity{
			APIKey:      os.Getenv("IDENTITY_API_KEY"),
			BaseURL:     envString("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
			TokenURL:    envString("IDENTITY_TOKEN_URL", "https://securetoken.googleapis.com/v1/token"),
			JWKSURL:     envString("IDENTITY_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
			ProjectID:   envString("IDENTITY_PROJECT_ID", "pilot-travelcard-webshop"),
			HTTPTimeout: envDuration("IDENTITY_HTTP_TIMEOUT", 10*time.Second),
			PhoneRegion: envString("IDENTITY_PHONE_REGION", "NO"),
		},
		Session: Session{
			RefreshLead: envDuration("SESSION_REFRESH_LEAD", DefaultRefreshLead),
			RetryBudget: envInt("SESSION_RETRY_BUDGET", DefaultRetryBudget),
			RetryDelay:  envDuration("SESSION_RETRY_DELAY", DefaultRetryDelay),
			TimeZone:    envString("SESSION_TIME_ZONE", "Europe/Oslo"),
		},
		DocStore: DocStore{
			Backend:            strings.ToLower(envString("DOCSTORE_BACKEND", "memory")),
			CustomerCollection: envString("DOCSTORE_CUSTOMERS", "customers"),
			FareContracts:      envString("DOCSTORE_FARE_CONTRACTS", "fareContracts"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 20),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        int32(envInt("DATABASE_MAX_CONNS", 25)),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Topic:   envString("KAFKA_SESSION_TOPIC", "webshop.session-events"),
			Acks:    envString("KAFKA_ACKS", "all"),
			GroupID: envString("KAFKA_AUDIT_GROUP", "webshop-audit-tail"),
		},
		LocalState: LocalState{
			Backend:         strings.ToLower(envString("LOCAL_STATE_BACKEND", "memory")),
			Secret:          os.Getenv("LOCAL_STATE_SECRET"),
			TTL:             envDuration("LOCAL_STATE_TTL", DefaultLocalTTL),
			CleanupInterval: envDuration("LOCAL_STATE_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
