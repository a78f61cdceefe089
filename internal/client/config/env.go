package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is shared with the server so one shell can configure both.
const EnvPrefix = "CHARSTUDIO_"

func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
