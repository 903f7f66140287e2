// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The public route set and asset prefixes are configuration, not code: the session
gate reads them from here and never hard-codes a path.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/notesput/internal/platform/middleware"
	"github.com/taibuivan/notesput/pkg/slice"
)

// Identity provider backends.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)

// # Configuration Schema

// Config holds all runtime configuration for the Notesput server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Identity provider selection. "local" uses PostgreSQL + Redis,
	// "remote" delegates to AUTH_PROVIDER_URL.
	Provider        string        `env:"PROVIDER"          envDefault:"local"`
	AuthProviderURL string        `env:"AUTH_PROVIDER_URL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT"  envDefault:"3s"`

	// Relational Database (PostgreSQL), local provider only.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis), local provider only.
	RedisURL string `env:"REDIS_URL"`

	// Session issuing
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL"          envDefault:"168h"`
	SessionCacheTTL   time.Duration `env:"SESSION_CACHE_TTL"    envDefault:"5m"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME"  envDefault:"notesput.session_token"`

	// Route gate
	SignInPath    string   `env:"SIGN_IN_PATH"    envDefault:"/signin"`
	PublicRoutes  []string `env:"PUBLIC_ROUTES"   envDefault:"/,/signin,/signup,/forgot-password,/api/auth,/health,/ready,/metrics" envSeparator:","`
	AssetPrefixes []string `env:"ASSET_PREFIXES"  envDefault:"/static/,/assets/" envSeparator:","`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces requirements that depend on the selected provider.
func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		missing := make([]string, 0, 3)
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
		if len(c.SessionSecret) < 32 {
			missing = append(missing, "SESSION_SECRET (min 32 bytes)")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: local provider requires %s", strings.Join(missing, ", "))
		}
	case ProviderRemote:
		if c.AuthProviderURL == "" {
			return fmt.Errorf("config: remote provider requires AUTH_PROVIDER_URL")
		}
	default:
		return fmt.Errorf("config: unknown PROVIDER %q", c.Provider)
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("config: PROVIDER_TIMEOUT must be positive")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}

	if !strings.HasPrefix(c.SignInPath, "/") {
		return fmt.Errorf("config: SIGN_IN_PATH must be an absolute path")
	}

	// A protected sign-in page would redirect to itself forever.
	if c.Routes().Classify(c.SignInPath) != middleware.Public {
		return fmt.Errorf("config: SIGN_IN_PATH %q must be covered by PUBLIC_ROUTES", c.SignInPath)
	}

	return nil
}

// Routes builds the session gate's route table from PUBLIC_ROUTES and
// ASSET_PREFIXES.
func (c *Config) Routes() *middleware.RouteTable {
	return middleware.NewRouteTable(c.PublicRoutes, c.AssetPrefixes)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a slice.
func (c *Config) AllowedOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	return slice.NonBlank(strings.Split(c.ExtraOrigins, ","))
}
