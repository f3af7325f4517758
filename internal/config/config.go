package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Local     LocalConfig     `mapstructure:"local"      validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"        validate:"required"`
	Session   SessionConfig   `mapstructure:"session"    validate:"required"`
	Task      TaskConfig      `mapstructure:"task"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Timezone is the IANA zone used to decide what "today" is for study history.
	Timezone string `mapstructure:"timezone"  validate:"required"`
}

// DatabaseConfig contains the remote Postgres settings. An empty URL disables
// remote persistence and every identity falls back to local storage.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LocalConfig controls the on-device snapshot store.
type LocalConfig struct {
	Path       string `mapstructure:"path"        validate:"required"`
	StorageKey string `mapstructure:"storage_key" validate:"required"`
}

// CacheConfig configures the optional Redis write-through cache.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"          validate:"gte=0"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings.
// An empty GeminiAPIKey selects the offline generator.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=5"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"     validate:"gt=0"`
}

// SessionConfig holds focus-session defaults.
type SessionConfig struct {
	DefaultMinutes int `mapstructure:"default_minutes" validate:"required,gt=0,lte=600"`
}

// TaskConfig holds settings for the background persistence runner.
type TaskConfig struct {
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// RateLimitConfig bounds how often a single identity may call the AI endpoints.
type RateLimitConfig struct {
	AIRequestsPerMinute int `mapstructure:"ai_requests_per_minute" validate:"required,gt=0"`
	Burst               int `mapstructure:"burst"                  validate:"required,gt=0"`
}
