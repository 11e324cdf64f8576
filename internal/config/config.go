// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), maps them into structured Go types and validates that required
// values are present so the app fails fast on bad or missing config.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is stripped from every variable before it is mapped.
// MARKETPLACE_SERVER.PORT -> server.port -> Config.Server.Port
const EnvPrefix = "MARKETPLACE_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time. Settlement gets the same treatment for
// its individual fields.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Settlement    SettlementConfig     `koanf:"settlement"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	RateLimitPerSecond float64  `koanf:"rate_limit_per_second"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". It backs both the cache client and the job queue.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
//
// AdminRole is the Clerk organization role that unlocks the admin routes.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
	AdminRole string `koanf:"admin_role"`
}

// IntegrationConfig holds credentials for third-party providers.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`
	EmailFrom    string `koanf:"email_from"`
}

// SettlementConfig controls vendor payout policy.
//
// CommissionRate is the fraction of gross revenue retained by the platform.
type SettlementConfig struct {
	CommissionRate    float64       `koanf:"commission_rate" validate:"gte=0,lt=1"`
	MinimumWithdrawal float64       `koanf:"minimum_withdrawal" validate:"gte=0"`
	ReconcileInterval time.Duration `koanf:"reconcile_interval"`
}

const (
	DefaultCommissionRate    = 0.10
	DefaultMinimumWithdrawal = 100
	DefaultReconcileInterval = time.Hour
	DefaultAdminRole         = "org:admin"
	DefaultEmailFrom         = "Marketplace <payouts@resend.dev>"
	DefaultRateLimit         = 20
)

// Keys whose zero value is a valid setting. They are defaulted only when
// absent from the source.
const (
	KeyCommissionRate    = "settlement.commission_rate"
	KeyMinimumWithdrawal = "settlement.minimum_withdrawal"
)

// ApplyDefaults fills optional values that were not provided. isSet reports
// whether a key was present in the loaded source, so an explicit zero
// commission or minimum survives.
func (c *Config) ApplyDefaults(isSet func(key string) bool) {
	if !isSet(KeyCommissionRate) {
		c.Settlement.CommissionRate = DefaultCommissionRate
	}
	if !isSet(KeyMinimumWithdrawal) {
		c.Settlement.MinimumWithdrawal = DefaultMinimumWithdrawal
	}
	if c.Settlement.ReconcileInterval <= 0 {
		c.Settlement.ReconcileInterval = DefaultReconcileInterval
	}
	if c.Auth.AdminRole == "" {
		c.Auth.AdminRole = DefaultAdminRole
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = DefaultEmailFrom
	}
	if c.Server.RateLimitPerSecond <= 0 {
		c.Server.RateLimitPerSecond = DefaultRateLimit
	}
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config so
	// logs and traces stay consistent.
	c.Observability.ServiceName = "marketplace"
	c.Observability.Environment = c.Primary.Env
}

// envKey maps MARKETPLACE_SETTLEMENT.COMMISSION_RATE to settlement.commission_rate.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults and returns the result.
//
// Any failure is fatal: the process cannot run without its configuration.
func LoadConfig() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load initial env variables")
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal main config")
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("config validation failed")
	}

	mainConfig.ApplyDefaults(k.Exists)

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid observability config")
	}

	return mainConfig, nil
}
