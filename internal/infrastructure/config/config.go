package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Database DatabaseConfig
	Session  SessionConfig
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH, default=fixapp.db"`
	// SeedDemo enables the demo bootstrap account. Only honoured in the
	// development environment.
	SeedDemo bool `env:"SEED_DEMO_USER, default=false"`
}

type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL,            default=24h"`
	TokenBytes int           `env:"SESSION_TOKEN_BYTES,    default=32"`
	// SweepInterval controls the expired-session janitor; zero or negative
	// disables it.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Serverless reports whether the process runs on a serverless platform with
// no persistent disk across invocations. Checked once at startup to select
// the ephemeral storage mode.
func Serverless() bool {
	return os.Getenv("VERCEL") != "" || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
