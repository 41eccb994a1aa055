package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/GreenChain-Markets/exchange/pkg/config"
)

// Config holds the runtime configuration for the exchange service.
// Values come from the environment, with a .env file honored in dev.
type Config struct {
	ServiceName string
	Env         string // "dev", "uat", "prod"
	LogLevel    string
	Port        int
	MetricsPort int

	NATSURL         string
	OutboundSubject string // NATS subject prefix for marketplace events
	StreamName      string

	RedisAddr    string
	RedisDB      int
	DatabaseURL  string
	DBSecretName string // AWS SM secret holding DB credentials (non-dev)
	AWSRegion    string

	StatsRefreshInterval time.Duration
	SecretCacheTTL       time.Duration
}

// Load reads configuration from environment variables and .env if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "exchange"),
		Env:         pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:        pkgconfig.GetEnvInt("PORT", 9040),
		MetricsPort: pkgconfig.GetEnvInt("METRICS_PORT", 9041),

		NATSURL:         pkgconfig.GetEnv("NATS_URL", "nats://localhost:4222"),
		OutboundSubject: pkgconfig.GetEnv("OUTBOUND_SUBJECT", "evt.exchange"),
		StreamName:      pkgconfig.GetEnv("STREAM_NAME", "EXCHANGE_EVENTS"),

		RedisAddr:    pkgconfig.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      pkgconfig.GetEnvInt("REDIS_DB", 0),
		DatabaseURL:  pkgconfig.GetEnv("DATABASE_URL", ""),
		DBSecretName: pkgconfig.GetEnv("DB_SECRET_NAME", ""),
		AWSRegion:    pkgconfig.GetEnv("AWS_REGION", "us-east-2"),

		StatsRefreshInterval: pkgconfig.GetEnvDuration("STATS_REFRESH_INTERVAL", 30*time.Second),
		SecretCacheTTL:       pkgconfig.GetEnvDuration("SECRET_CACHE_TTL", 30*time.Minute),
	}
}
