package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"loot/pkg/domain"
)

// Development defaults. Production deployments must override both.
const (
	DevJWTSigningKey = "dev-secret-key-change-in-production"
	DevAdminAddress  = "0x00000000000000000000000000000000000000ad"
)

// Server captures process level configuration.
type Server struct {
	Addr        string        `env:"LOOT_ADDR" envDefault:":8080"`
	Environment string        `env:"LOOT_ENV" envDefault:"dev" validate:"oneof=dev test demo prod"`
	LogLevel    string        `env:"LOOT_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Store       string        `env:"LOOT_STORE" envDefault:"memory" validate:"oneof=memory postgres redis"`
	TxTimeout   time.Duration `env:"LOOT_TX_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Pluck    PluckConfig
	Events   EventsConfig
}

// DatabaseConfig configures the PostgreSQL pool used when Store is "postgres".
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// RedisConfig configures the Redis client used when Store is "redis".
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"loot"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// AuthConfig identifies callers and the single administrative principal.
type AuthConfig struct {
	JWTSigningKey  string        `env:"LOOT_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production" validate:"min=16"`
	Issuer         string        `env:"LOOT_JWT_ISSUER" envDefault:"loot"`
	TokenTTL       time.Duration `env:"LOOT_TOKEN_TTL" envDefault:"15m" validate:"gt=0"`
	AdminAddress   string        `env:"LOOT_ADMIN_ADDRESS" envDefault:"0x00000000000000000000000000000000000000ad" validate:"required"`
	AdminRecipient string        `env:"LOOT_ADMIN_RECIPIENT"`
}

// PluckConfig selects the trait derivation scheme and optional table override.
type PluckConfig struct {
	Scheme     string `env:"LOOT_PLUCK_SCHEME" envDefault:"sha256" validate:"oneof=sha256 keccak256 xor"`
	TablesPath string `env:"LOOT_TRAIT_TABLES"`
}

// EventsConfig enables the Kafka audit sink when Brokers is set.
type EventsConfig struct {
	Brokers string `env:"KAFKA_BROKERS"`
	Topic   string `env:"LOOT_EVENTS_TOPIC" envDefault:"loot.bag-events"`
	Acks    string `env:"KAFKA_ACKS" envDefault:"all" validate:"oneof=0 1 all"`
	Buffer  int    `env:"LOOT_AUDIT_BUFFER" envDefault:"256" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the cross-field rules env tags cannot express.
func (c Server) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	switch c.Store {
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when LOOT_STORE=postgres"))
		}
	case "redis":
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when LOOT_STORE=redis"))
		}
	}
	admin, adminErr := domain.ParseAddress(c.Auth.AdminAddress)
	if adminErr != nil {
		errs = append(errs, fmt.Errorf("LOOT_ADMIN_ADDRESS: %w", adminErr))
	}
	if c.Auth.AdminRecipient != "" {
		if _, err := domain.ParseAddress(c.Auth.AdminRecipient); err != nil {
			errs = append(errs, fmt.Errorf("LOOT_ADMIN_RECIPIENT: %w", err))
		}
	}
	if c.Environment == "prod" {
		if c.Auth.JWTSigningKey == DevJWTSigningKey {
			errs = append(errs, errors.New("LOOT_JWT_SIGNING_KEY must be set in prod"))
		}
		// any spelling of the dev admin counts
		if dev, _ := domain.ParseAddress(DevAdminAddress); adminErr == nil && admin == dev {
			errs = append(errs, errors.New("LOOT_ADMIN_ADDRESS must be set in prod"))
		}
	}
	return errors.Join(errs...)
}

// AdminAddress returns the parsed administrator address. Validate guarantees it parses.
func (c Server) AdminAddress() domain.Address {
	a, _ := domain.ParseAddress(c.Auth.AdminAddress)
	return a
}

// AdminRecipient returns the owner assigned to reserved-channel claims.
func (c Server) AdminRecipient() domain.Address {
	if c.Auth.AdminRecipient == "" {
		return c.AdminAddress()
	}
	a, _ := domain.ParseAddress(c.Auth.AdminRecipient)
	return a
}
