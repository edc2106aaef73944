package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// CookieDomain scopes the session cookie in production deployments.
	CookieDomain string `env:"COOKIE_DOMAIN, default=destru.org"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	TTL         time.Duration `env:"SESSION_TTL,          default=24h"`
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL, default=720h"`
}

// IsProduction reports whether the deployment mode restricts the session
// cookie to SameSite=Lax and scopes it to CookieDomain.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	// An empty signing key would mint tokens anyone can forge.
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET must be set in production")
		panic("config: JWT_SECRET is required in production")
	}
	return &cfg
}
