package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains all LLM integration related settings.
// GeminiAPIKey may be empty; the summarizer then falls back to a
// deterministic abstract truncation instead of calling the API.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
	Language     string `mapstructure:"language"`
}

// SMTPConfig contains environment-level mail settings. These act as the
// fallback when no active transport configuration exists in the database.
// An empty Host switches the dispatcher into mock mode, where sends are
// logged and reported as successful without touching the network.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"       validate:"omitempty,gt=0,lt=65536"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	UseTLS    bool   `mapstructure:"use_tls"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

// FetcherConfig contains settings for the upstream paper feed.
type FetcherConfig struct {
	DefaultQuery string `mapstructure:"default_query" validate:"required"`
	MaxResults   int    `mapstructure:"max_results"   validate:"required,gt=0,lte=100"`
}

// SchedulerConfig contains settings for the digest delivery loop.
type SchedulerConfig struct {
	TickSeconds int  `mapstructure:"tick_seconds" validate:"required,gt=0"`
	Enabled     bool `mapstructure:"enabled"`
}
