package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	PGDSN          string `envconfig:"PG_DSN"`
	PGMaxOpenConns int    `envconfig:"PG_MAX_OPEN_CONNS" default:"20"`
	MigrationsDir  string `envconfig:"MIGRATIONS_DIR"`
	SeedsDir       string `envconfig:"SEEDS_DIR"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"socialhub"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"1h"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"*"`
	RatePerSecond      float64  `envconfig:"RATE_PER_SECOND" default:"20"`
	RateBurst          int      `envconfig:"RATE_BURST" default:"40"`
	LoginRatePerMinute int      `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	if cfg.RatePerSecond <= 0 || cfg.RateBurst <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
