// Package config loads process configuration from environment variables.
//
// Configuration is parsed once in main and passed down as an immutable
// value. Nothing in the request path reads the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all process configuration.
//
// The token fields (issuer, audience, signing key, clock skew) are loaded
// once here and threaded into the token service at construction. They never
// change while the process runs.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/stagemarkt.db"`

	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"stagemarkt-api"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"stagemarkt-clients"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY"`
	JWTClockSkew  time.Duration `env:"JWT_CLOCK_SKEW" envDefault:"5m"`
	JWTTokenTTL   time.Duration `env:"JWT_TOKEN_TTL" envDefault:"1h"`

	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`
	LinkedInClientID     string `env:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`

	// ProviderTimeout bounds each remote call made while validating a
	// provider access token. A timeout fails the whole login.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, nil
}
