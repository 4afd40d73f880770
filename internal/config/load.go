package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "THINKFORGE"

// keys lists every configuration key so that values supplied only through
// the environment are seen by Unmarshal.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.refresh_token_lifetime_minutes",
	"auth.bcrypt_cost",
	"llm.provider",
	"llm.model_name",
	"llm.gemini_api_key",
	"llm.openai_api_key",
	"llm.openai_base_url",
	"llm.anthropic_api_key",
	"llm.flashcard_prompt_path",
	"llm.path_prompt_path",
	"llm.temperature",
	"llm.max_output_tokens",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.timeout_seconds",
	"analytics.timezone",
	"analytics.cache_ttl_seconds",
	"session.idle_timeout_minutes",
	"session.sweep_interval_minutes",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 4096)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.cache_ttl_seconds", 60)
	v.SetDefault("session.idle_timeout_minutes", 120)
	v.SetDefault("session.sweep_interval_minutes", 10)
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigDirs are searched for config.yaml in order.
	ConfigDirs []string
	// EnvFile is loaded into the process environment when present.
	// Variables already set in the environment win.
	EnvFile string
}

// DefaultOptions searches the working directory for config.yaml and .env.
func DefaultOptions() Options {
	return Options{ConfigDirs: []string{"."}, EnvFile: ".env"}
}

// Load reads configuration using DefaultOptions.
func Load() (*Config, error) {
	return LoadWithOptions(DefaultOptions())
}

// LoadWithOptions reads configuration from the sources in opts and the
// environment, applies defaults and validates the result. Environment
// variables take precedence over config.yaml.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range opts.ConfigDirs {
		v.AddConfigPath(dir)
	}
	if len(opts.ConfigDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
