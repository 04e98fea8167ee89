package envutil

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment returns the deployment environment name from SENTRY_ENVIRONMENT,
// or "development" if it has not been set.
func Environment() string {
	return GetEnvOrFallback("SENTRY_ENVIRONMENT", "development")
}

// GetEnvOrFallback gets the environment variable for the specified key, but if
// it doesn't find a value, it'll instead return fallback.
func GetEnvOrFallback(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	return value
}

// ReadConfig overrides the fields of cfg tagged with `env` using the process
// environment, applying `env-default` values for unset variables.
func ReadConfig(cfg interface{}) error {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("reading configuration from the environment: %w", err)
	}
	return nil
}
