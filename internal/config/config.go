// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the commands read.
//
// The storage connection is DATABASE_URL when set; otherwise it is assembled
// from the DB_* parts.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME" envDefault:"wwtravelclub"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"require"`

	RedisURL    string `env:"REDIS_URL"`
	BearerToken string `env:"BEARER_TOKEN"`
	Port        string `env:"PORT" envDefault:"8080"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN returns the postgres connection string.
func (c Config) DSN() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.DBUser == "" {
		return "", errors.New("DATABASE_URL or DB_USER must be set")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	if c.DBPassword == "" {
		u.User = url.User(c.DBUser)
	}
	return u.String(), nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c Config) ValidateServe() error {
	var missing []error
	if c.RedisURL == "" {
		missing = append(missing, errors.New("REDIS_URL must be set"))
	}
	if c.BearerToken == "" {
		missing = append(missing, errors.New("BEARER_TOKEN must be set"))
	}
	return errors.Join(missing...)
}
