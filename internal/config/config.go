// Package config loads client and dev server settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file, and are parsed with caarlos0/env into typed structs. CLI flags
// may override individual fields after Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultCredentialKey names the persisted credential when nothing else is configured.
const DefaultCredentialKey = "news_management_token"

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Admin gate policies.
const (
	// AdminGateLegacy lets any authenticated user past admin-only routes.
	AdminGateLegacy = "legacy"
	// AdminGateEnforce checks the identity's role before admin-only routes.
	AdminGateEnforce = "enforce"
)

// Client holds runtime configuration for the newsdesk client.
type Client struct {
	BaseURL              string `env:"NEWSDESK_BASE_URL"       envDefault:"http://localhost:8080/api"`
	CredentialStorageKey string `env:"NEWSDESK_TOKEN_KEY"      envDefault:"news_management_token"`
	TimeoutMs            int    `env:"NEWSDESK_TIMEOUT_MS"     envDefault:"60000"`

	// Durable storage for the credential.
	SessionBackend string `env:"NEWSDESK_SESSION_BACKEND" envDefault:"file"`
	StateDir       string `env:"NEWSDESK_STATE_DIR"`
	RedisURL       string `env:"NEWSDESK_REDIS_URL"       envDefault:"redis://localhost:6379/0"`

	AdminGate string `env:"NEWSDESK_ADMIN_GATE" envDefault:"legacy"`
	SiteName  string `env:"NEWSDESK_SITE_NAME"  envDefault:"News Management System"`
	Debug     bool   `env:"NEWSDESK_DEBUG"      envDefault:"false"`
}

// Server holds runtime configuration for the dev server.
type Server struct {
	Addr       string        `env:"DEVSERVER_ADDR"        envDefault:":8080"`
	BasePath   string        `env:"DEVSERVER_BASE_PATH"   envDefault:"/api"`
	JWTKey     string        `env:"DEVSERVER_JWT_KEY,required"`
	AccessTTL  time.Duration `env:"DEVSERVER_ACCESS_TTL"  envDefault:"2h"`
	RefreshTTL time.Duration `env:"DEVSERVER_REFRESH_TTL" envDefault:"168h"`
	DSN        string        `env:"DEVSERVER_DSN"`
	AdminUser  string        `env:"DEVSERVER_ADMIN_USER"  envDefault:"admin"`
	AdminPass  string        `env:"DEVSERVER_ADMIN_PASS"  envDefault:"admin123"`
	Seed       bool          `env:"DEVSERVER_SEED"        envDefault:"true"`
}

// LoadDotEnv overlays variables from the given .env files when they exist.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Overload(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// LoadClient parses environment variables into a [Client] and validates it.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServer parses environment variables into a [Server].
func LoadServer() (*Server, error) {
	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints and fills fallbacks.
func (c *Client) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base url is empty")
	}
	if c.CredentialStorageKey == "" {
		c.CredentialStorageKey = DefaultCredentialKey
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %dms", c.TimeoutMs)
	}
	switch c.SessionBackend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("config: unknown session backend %q", c.SessionBackend)
	}
	switch c.AdminGate {
	case AdminGateLegacy, AdminGateEnforce:
	default:
		return fmt.Errorf("config: unknown admin gate %q", c.AdminGate)
	}
	return nil
}

// Timeout returns the per-call upper bound.
func (c *Client) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// StatePath returns the directory for durable client state.
// Falls back to $XDG_CONFIG_HOME/newsdesk, then ~/.config/newsdesk.
func (c *Client) StatePath() string {
	if c.StateDir != "" {
		return c.StateDir
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "newsdesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "newsdesk")
}
