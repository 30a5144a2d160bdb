package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	Port           int     `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" envconfig:"SERVER_RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" envconfig:"SERVER_RATE_LIMIT_BURST"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" envconfig:"JWT_SECRET" validate:"required,min=16"`
	RefreshSecret      string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET" validate:"required,min=16"`
	ExpiryHours        int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS" validate:"gt=0"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours" envconfig:"JWT_REFRESH_EXPIRY_HOURS" validate:"gt=0"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	User     string `mapstructure:"user" envconfig:"SMTP_USER"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

// ResolverConfig bounds the post-signup profile poll. Profile rows are
// provisioned asynchronously, so the resolver retries on a fixed interval
// with a hard attempt cap.
type ResolverConfig struct {
	PollIntervalMS   int `mapstructure:"poll_interval_ms" envconfig:"RESOLVER_POLL_INTERVAL_MS"`
	PollMaxAttempts  int `mapstructure:"poll_max_attempts" envconfig:"RESOLVER_POLL_MAX_ATTEMPTS"`
	FallbackCacheSec int `mapstructure:"fallback_cache_sec" envconfig:"RESOLVER_FALLBACK_CACHE_SEC"`
}

type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
}

func (c ResolverConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c ResolverConfig) FallbackCacheTTL() time.Duration {
	return time.Duration(c.FallbackCacheSec) * time.Second
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// LoadConfig reads config.yaml and overlays PORTAL_* environment variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("portal", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	if err := validator.New().Struct(config.JWT); err != nil {
		return nil, fmt.Errorf("invalid jwt configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 50)
	viper.SetDefault("server.rate_limit_burst", 100)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("jwt.refresh_expiry_hours", 168)
	viper.SetDefault("resolver.poll_interval_ms", 500)
	viper.SetDefault("resolver.poll_max_attempts", 10)
	viper.SetDefault("resolver.fallback_cache_sec", 30)
	viper.SetDefault("session.ttl_minutes", 60)
}
