package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const envProduction = "production"

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"JWT_EXPIRE,          default=168h"`
	RememberTTL   time.Duration `env:"JWT_REMEMBER_EXPIRE, default=720h"`
	Issuer        string        `env:"JWT_ISSUER,          default=task-management-api"`
	Audience      string        `env:"JWT_AUDIENCE,        default=task-management-client"`
	CookieName    string        `env:"AUTH_COOKIE_NAME,    default=token"`
	LookupTimeout time.Duration `env:"AUTH_LOOKUP_TIMEOUT, default=3s"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=task_management"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// IsProduction reports whether cookies must be Secure and SameSite=Strict.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// Load reads configuration through lookuper; a nil lookuper reads the
// process environment. A missing or blank JWT_SECRET is an error: the
// service never signs with a built-in key.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("load config: JWT_SECRET: %w", domain.ErrSigningKeyMissing)
	}
	if cfg.Auth.TokenTTL <= 0 || cfg.Auth.RememberTTL <= 0 {
		return nil, fmt.Errorf("load config: token lifetimes must be positive")
	}
	return &cfg, nil
}
