package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read before the environment is applied. A missing file is
// not an error.
var DotEnvFile = ".env"

// loadFromEnv overrides configuration with environment variables. Fields
// whose variable is unset keep their file or default value.
func loadFromEnv(config *Config) error {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
