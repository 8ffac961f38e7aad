package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	pathEnv     = "CONFIG_PATH"
	defaultPath = "./config.yaml"
)

// Load reads the YAML file named by CONFIG_PATH (default ./config.yaml), lets
// environment variables override it, normalizes and validates the result.
// A missing default file is not an error; a missing explicit one is.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(pathEnv)
	if !explicit || strings.TrimSpace(path) == "" {
		path, explicit = defaultPath, false
	}

	var cfg Config
	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// normalize folds selector values so "Postgres" and "postgres" are the same
// backend, and drops trailing slashes from public URLs.
func (c *Config) normalize() {
	fold := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	c.Store.Backend = fold(c.Store.Backend)
	c.Blob.Backend = fold(c.Blob.Backend)
	c.Cache.Backend = fold(c.Cache.Backend)
	c.Log.Format = fold(c.Log.Format)
	c.Blob.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Blob.PublicBaseURL), "/")
}
