package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to environment variable names, so
// server.port is read from PAPERBOY_SERVER_PORT.
const envPrefix = "PAPERBOY"

// Load configuration from environment variables.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind each known key explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret",
		"llm.gemini_api_key", "llm.model_name", "llm.language",
		"smtp.host", "smtp.port", "smtp.username", "smtp.password",
		"smtp.use_tls", "smtp.from_email", "smtp.from_name",
		"fetcher.default_query", "fetcher.max_results",
		"scheduler.tick_seconds", "scheduler.enabled",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment key %q: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.language", "English")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("smtp.from_email", "digest@paperboy.dev")
	v.SetDefault("smtp.from_name", "Paperboy")

	v.SetDefault("fetcher.default_query", "cat:cs.AI")
	v.SetDefault("fetcher.max_results", 5)

	v.SetDefault("scheduler.tick_seconds", 60)
	v.SetDefault("scheduler.enabled", true)
}
