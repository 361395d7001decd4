package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds every environment variable the service reads.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	Postgres PostgresConfig `envPrefix:"PG_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`

	DBDriver      string        `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"hangar.db"`
	JWTSecret     string        `env:"JWT_SECRET"`
	CacheBackend  string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CounterTTL    time.Duration `env:"COUNTER_CACHE_TTL" envDefault:"30s"`
	AlertDays     int           `env:"DEFAULT_ALERT_DAYS" envDefault:"7"`
	AlertHours    float64       `env:"DEFAULT_ALERT_HOURS" envDefault:"10"`
	AllowedOrigin []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"https://*,http://localhost:8081" envSeparator:","`

	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
	RateLimitWhitelist []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DB       string `env:"DB"`
}

// DSN builds a postgres URL for both lib/pq and the GORM driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load reads an optional .env file and parses the environment. A missing
// .env is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone used for "today".
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
