package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Analytics AnalyticsConfig `mapstructure:"analytics" validate:"required"`
	Session   SessionConfig   `mapstructure:"session" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains connection settings for PostgreSQL.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains token and password hashing settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=1440"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// LLMConfig selects and configures the content generator backend.
type LLMConfig struct {
	Provider            string  `mapstructure:"provider" validate:"required,oneof=gemini openai anthropic"`
	ModelName           string  `mapstructure:"model_name"`
	GeminiAPIKey        string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey        string  `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIBaseURL       string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	AnthropicAPIKey     string  `mapstructure:"anthropic_api_key" validate:"required_if=Provider anthropic"`
	FlashcardPromptPath string  `mapstructure:"flashcard_prompt_path" validate:"omitempty,file"`
	PathPromptPath      string  `mapstructure:"path_prompt_path" validate:"omitempty,file"`
	Temperature         float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens     int     `mapstructure:"max_output_tokens" validate:"gt=0"`
	MaxRetries          int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds   int     `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// AnalyticsConfig controls dashboard statistics.
type AnalyticsConfig struct {
	// Timezone names the IANA zone whose calendar days define a streak day.
	Timezone        string `mapstructure:"timezone" validate:"required,timezone"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// SessionConfig controls in-memory flashcard sessions.
type SessionConfig struct {
	IdleTimeoutMinutes   int `mapstructure:"idle_timeout_minutes" validate:"gt=0"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
}

// ShutdownTimeout returns the graceful shutdown window.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// TokenLifetime returns the access token lifetime.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RefreshTokenLifetime returns the refresh token lifetime.
func (c AuthConfig) RefreshTokenLifetime() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeMinutes) * time.Minute
}

// RetryDelay returns the base delay between generator retries.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Timeout returns the per-request generator timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC.
func (c AnalyticsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// CacheTTL returns how long dashboard summaries are cached.
func (c AnalyticsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// IdleTimeout returns how long an unused session is kept.
func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns how often idle sessions are evicted.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
