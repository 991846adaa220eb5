package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "smartcharge/backend/libs/config"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"AUTH_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		Driver string `yaml:"driver" env:"AUTH_DB_DRIVER"`
		DSN    string `yaml:"dsn" env:"AUTH_POSTGRES_DSN"`
	} `yaml:"database"`
	JWT struct {
		Secret           string `yaml:"secret" env:"AUTH_JWT_SECRET"`
		Issuer           string `yaml:"issuer" env:"AUTH_JWT_ISSUER"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"AUTH_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Demo struct {
		Name  string `yaml:"name" env:"AUTH_DEMO_NAME"`
		Email string `yaml:"email" env:"AUTH_DEMO_EMAIL"`
	} `yaml:"demo"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8081"
	cfg.Database.Driver = DriverPostgres
	cfg.JWT.ExpiresInMinutes = 60
	cfg.JWT.Issuer = "smartcharge-auth"
	cfg.Demo.Name = "Demo Driver"
	cfg.Demo.Email = "demo@smartcharge.app"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.DSN == "" {
			return nil, errors.New("config: database DSN is required")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown database driver %q", cfg.Database.Driver)
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if strings.TrimSpace(cfg.JWT.Issuer) == "" {
		return nil, errors.New("config: jwt issuer is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}
	if strings.TrimSpace(cfg.Demo.Email) == "" {
		return nil, errors.New("config: demo email is required")
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
