package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name in the Config env tags.
const EnvPrefix = "CHARSTUDIO_"

// parseEnv overlays variables such as CHARSTUDIO_DATABASE_DSN onto cfg.
// Unset variables leave the current value alone. A nil environ reads the
// process environment.
func parseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
