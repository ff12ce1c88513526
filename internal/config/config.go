// Package config loads service configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	// DefaultJWTSecret must be overridden in every real deployment
	DefaultJWTSecret = "default-secret-change-in-production"

	chainIDMainnet = 137
	chainIDAmoy    = 80002
)

// Config is the root configuration
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	SIWE     SIWEConfig    `yaml:"siwe"`
	Store    StoreConfig   `yaml:"store"`
	Chain    ChainConfig   `yaml:"chain"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig holds the HTTP listener settings
type HTTPConfig struct {
	Host        string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port        string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
}

// Addr returns host:port
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig holds token and nonce lifetimes
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"default-secret-change-in-production"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"168h"`
	NonceTTL   time.Duration `yaml:"nonce_ttl" env:"NONCE_TTL" env-default:"300s"`
}

// SIWEConfig fills server-rendered sign-in messages
type SIWEConfig struct {
	Domain        string `yaml:"domain" env:"SIWE_DOMAIN" env-default:"localhost:5173"`
	URI           string `yaml:"uri" env:"SIWE_URI" env-default:"http://localhost:5173"`
	Statement     string `yaml:"statement" env:"SIWE_STATEMENT" env-default:"Sign in with Ethereum to the app."`
	EnforceDomain bool   `yaml:"enforce_domain" env:"SIWE_ENFORCE_DOMAIN" env-default:"false"`
}

// StoreConfig selects the nonce store backend
type StoreConfig struct {
	Backend  string `yaml:"backend" env:"STORE_BACKEND" env-default:"auto"`
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

// ChainConfig points at the Polygon JSON-RPC endpoint
type ChainConfig struct {
	RPCURL  string `yaml:"rpc_url" env:"POLYGON_RPC_URL" env-default:"https://rpc-amoy.polygon.technology"`
	Network string `yaml:"network" env:"POLYGON_NETWORK" env-default:"amoy"`
}

// TimeoutConfig holds request and shutdown timeouts
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// ChainID returns 137 for mainnet and 80002 (Amoy) otherwise
func (c *Config) ChainID() int64 {
	if c.Chain.Network == "mainnet" {
		return chainIDMainnet
	}
	return chainIDAmoy
}

// UsesDefaultSecret reports whether the well-known default JWT secret is configured
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == DefaultJWTSecret
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd
}

// MustLoad is Load that panics on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from path, or CONFIG_PATH when path is empty,
// then overlays environment variables. Without any file only the
// environment is read.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("invalid env %q", c.Env)
	}
	switch c.Store.Backend {
	case "auto", "redis", "memory":
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.Auth.SessionTTL <= 0 || c.Auth.NonceTTL <= 0 {
		return fmt.Errorf("session and nonce ttl must be positive")
	}
	return nil
}
