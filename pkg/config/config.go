package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the cyclr-backend service.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	Port        int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Ledger gateway (AMM / token service).
	GatewayBaseURL string
	GatewayTimeout time.Duration
	// Operator wallet fallback when AWS Secrets Manager is not configured.
	OperatorAccount string
	OperatorAPIKey  string

	// Platform wallets payouts are sent from/to.
	CyclrWallet   string
	EcoFundWallet string

	// Registry backend: "memory" or "hybrid" (Redis + Postgres).
	StoreBackend string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	DatabaseURL  string

	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration

	NATSURL      string
	EventSubject string

	AWSRegion     string
	UseAWSSecrets bool
	CacheTTL      time.Duration
	CleanupFreq   time.Duration
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:         GetEnv("SERVICE_NAME", "cyclr-backend"),
		Env:                 GetEnv("ENV", "dev"),
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
		Port:                GetEnvInt("PORT", 8000),
		HTTPReadTimeout:     GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:    GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:     GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:       GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),
		GatewayBaseURL:      GetEnv("LEDGER_GATEWAY_URL", "http://localhost:9040"),
		GatewayTimeout:      GetEnvDuration("LEDGER_GATEWAY_TIMEOUT", 30*time.Second),
		OperatorAccount:     GetEnv("OPERATOR_ACCOUNT", ""),
		OperatorAPIKey:      GetEnv("OPERATOR_API_KEY", ""),
		CyclrWallet:         GetEnv("CYCLR_WALLET", ""),
		EcoFundWallet:       GetEnv("ECO_FUND_WALLET", ""),
		StoreBackend:        GetEnv("STORE_BACKEND", "memory"),
		RedisAddr:           GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             GetEnvInt("REDIS_DB", 0),
		RedisPass:           GetEnv("REDIS_PASS", ""),
		DatabaseURL:         GetEnv("DATABASE_URL", ""),
		PGMaxConns:          GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
		NATSURL:             GetEnv("NATS_URL", "nats://localhost:4222"),
		EventSubject:        GetEnv("EVENT_SUBJECT", "evt.product"),
		AWSRegion:           GetEnv("AWS_REGION", "us-east-2"),
		UseAWSSecrets:       GetEnvBool("USE_AWS_SECRETS", false),
		CacheTTL:            GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:         GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
	}
}
