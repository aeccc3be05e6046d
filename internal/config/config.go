// Package config reads the backend configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the backend. Every field has a
// sensible default so a bare environment starts a working instance.
type Config struct {
	// GinMode is the mode gin runs in, "release" by default for security
	// reasons
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// LogFormat can be "human" or "json". When unset, it defaults to
	// human readable for development and JSON for release
	LogFormat string `env:"LOG_FORMAT"`

	// DBPath is the path to the SQLite database file
	DBPath string `env:"DB_PATH" envDefault:"data/pocketledger.db"`

	// APIURL is the URL the backend is reachable at. It is only used to
	// generate links in API responses
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080"`

	// CORSAllowOrigins is a space separated list of allowed CORS origins
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:" "`

	// EnablePprof mounts the pprof profiling routes
	EnablePprof bool `env:"ENABLE_PPROF"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	config := Config{}
	err := env.Parse(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
