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

// Event broker drivers.
const (
	EventsKafka = "kafka"
	EventsAMQP  = "amqp"
	EventsNone  = "none"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"RESERVATION_HTTP_PORT"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"RESERVATION_DB_DRIVER"`
	DSN    string `yaml:"dsn" env:"RESERVATION_POSTGRES_DSN"`
	// SeedDemo fills the memory store with demo stations, users and a campaign.
	SeedDemo bool `yaml:"seedDemo" env:"RESERVATION_SEED_DEMO"`
}

// RedisConfig enables the station read cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"RESERVATION_REDIS_ADDR"`
	Password string        `yaml:"password" env:"RESERVATION_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"RESERVATION_REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"RESERVATION_REDIS_TTL"`
}

// JWTConfig must match the auth-service signing secret and issuer.
type JWTConfig struct {
	Secret string `yaml:"secret" env:"RESERVATION_JWT_SECRET"`
	Issuer string `yaml:"issuer" env:"RESERVATION_JWT_ISSUER"`
}

// EventsConfig selects where reservation events are published besides the websocket hub.
type EventsConfig struct {
	Driver  string   `yaml:"driver" env:"RESERVATION_EVENTS_DRIVER"`
	Brokers []string `yaml:"brokers" env:"RESERVATION_KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"RESERVATION_KAFKA_TOPIC"`
	AMQPURL string   `yaml:"amqpUrl" env:"RESERVATION_AMQP_URL"`
	Queue   string   `yaml:"queue" env:"RESERVATION_AMQP_QUEUE"`
}

// PricingConfig tunes slot generation.
type PricingConfig struct {
	DefaultBasePrice float64 `yaml:"defaultBasePrice" env:"RESERVATION_DEFAULT_BASE_PRICE"`
	// Timezone names the IANA location slot hours are computed in.
	Timezone string `yaml:"timezone" env:"RESERVATION_TIMEZONE"`
}

// WebSocketConfig tunes the live event stream.
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"RESERVATION_WS_PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"RESERVATION_WS_WRITE_TIMEOUT"`
}

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Events    EventsConfig    `yaml:"events"`
	Pricing   PricingConfig   `yaml:"pricing"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// Default returns the configuration used before YAML and env are applied.
func Default() *Config {
	return &Config{
		HTTP:     HTTPConfig{Port: "8082"},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Redis:    RedisConfig{TTL: 5 * time.Minute},
		JWT:      JWTConfig{Issuer: "smartcharge-auth"},
		Events: EventsConfig{
			Driver: EventsNone,
			Topic:  "smartcharge.reservations",
			Queue:  "smartcharge.reservations",
		},
		Pricing: PricingConfig{
			DefaultBasePrice: 5.0,
			Timezone:         "UTC",
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes drivers and rejects incomplete settings.
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("config: database DSN is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("config: jwt secret is required")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		return errors.New("config: jwt issuer is required")
	}

	c.Events.Driver = strings.ToLower(strings.TrimSpace(c.Events.Driver))
	switch c.Events.Driver {
	case "", EventsNone:
		c.Events.Driver = EventsNone
	case EventsKafka:
		if len(c.Events.Brokers) == 0 {
			return errors.New("config: kafka brokers are required for the kafka events driver")
		}
	case EventsAMQP:
		if c.Events.AMQPURL == "" {
			return errors.New("config: amqp url is required for the amqp events driver")
		}
	default:
		return fmt.Errorf("config: unknown events driver %q", c.Events.Driver)
	}

	if c.Pricing.DefaultBasePrice <= 0 {
		return errors.New("config: default base price must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.WebSocket.PingInterval <= 0 {
		c.WebSocket.PingInterval = 30 * time.Second
	}
	if c.WebSocket.WriteTimeout <= 0 {
		c.WebSocket.WriteTimeout = 10 * time.Second
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8082"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Location resolves the pricing timezone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Pricing.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: pricing timezone: %w", err)
	}
	return loc, nil
}
