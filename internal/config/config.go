package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Stripe    StripeConfig
	Storage   StorageConfig
	OpenAI    OpenAIConfig
	OAuth     OAuthConfig
	RateLimit RateLimitConfig
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	BaseURL                string `mapstructure:"BASE_URL"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
}

// RedisConfig holds configuration for Redis (catalog cache + rate limiting)
type RedisConfig struct {
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheTTL    int    `mapstructure:"REDIS_CACHE_TTL"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// AuthConfig holds configuration for session tokens and password reset
type AuthConfig struct {
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes    int    `mapstructure:"AUTH_TOKEN_TTL_MINUTES"`
	ResetTokenTTLHours int    `mapstructure:"AUTH_RESET_TOKEN_TTL_HOURS"`
}

// StripeConfig holds Stripe API credentials
type StripeConfig struct {
	SecretKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	PublishableKey string `mapstructure:"STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret  string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
}

// StorageConfig holds object storage settings. Endpoint is the
// S3-compatible endpoint (Cloudflare R2 in production).
type StorageConfig struct {
	Endpoint        string `mapstructure:"STORAGE_ENDPOINT"`
	Region          string `mapstructure:"STORAGE_REGION"`
	AccessKeyID     string `mapstructure:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"STORAGE_SECRET_ACCESS_KEY"`
	Bucket          string `mapstructure:"STORAGE_BUCKET"`
	PresignTTL      int    `mapstructure:"STORAGE_PRESIGN_TTL_SECONDS"`
}

// OpenAIConfig holds the platform OpenAI credentials used when a user
// has not configured their own key.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"OPENAI_API_KEY"`
	Model   string `mapstructure:"OPENAI_MODEL"`
	Timeout int    `mapstructure:"OPENAI_TIMEOUT_SECONDS"`
}

// OAuthProvider holds a single OAuth client registration.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

// OAuthConfig holds OAuth client registrations for login and the
// platform integrations.
type OAuthConfig struct {
	Google     OAuthProvider
	Microsoft  OAuthProvider
	Monday     OAuthProvider
	Smartsheet OAuthProvider
	// Workday runs against a sandbox tenant and is mocked when empty.
	WorkdayTenant string
}

// RateLimitConfig holds configuration for the Redis token-bucket limiter
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	// Payment endpoints get a much tighter per-user budget.
	PaymentPerHour int `mapstructure:"RATE_LIMIT_PAYMENT_PER_HOUR"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.App.HTTPPort = viper.GetString("HTTP_PORT")
	config.App.BaseURL = viper.GetString("BASE_URL")
	config.App.ShutdownTimeoutSeconds = viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.DB.Host = viper.GetString("DB_HOST")
	config.DB.Port = viper.GetString("DB_PORT")
	config.DB.User = viper.GetString("DB_USER")
	config.DB.Password = viper.GetString("DB_PASSWORD")
	config.DB.Name = viper.GetString("DB_NAME")
	config.DB.SSLMode = viper.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = viper.GetInt("DB_CONN_MAX_LIFETIME")
	config.DB.ConnMaxIdleTime = viper.GetInt("DB_CONN_MAX_IDLE_TIME")

	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.MaxRetries = viper.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = viper.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = viper.GetInt("REDIS_CACHE_TTL")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = viper.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTLMinutes = viper.GetInt("AUTH_TOKEN_TTL_MINUTES")
	config.Auth.ResetTokenTTLHours = viper.GetInt("AUTH_RESET_TOKEN_TTL_HOURS")

	config.Stripe.SecretKey = viper.GetString("STRIPE_SECRET_KEY")
	config.Stripe.PublishableKey = viper.GetString("STRIPE_PUBLISHABLE_KEY")
	config.Stripe.WebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")

	config.Storage.Endpoint = viper.GetString("STORAGE_ENDPOINT")
	config.Storage.Region = viper.GetString("STORAGE_REGION")
	config.Storage.AccessKeyID = viper.GetString("STORAGE_ACCESS_KEY_ID")
	config.Storage.SecretAccessKey = viper.GetString("STORAGE_SECRET_ACCESS_KEY")
	config.Storage.Bucket = viper.GetString("STORAGE_BUCKET")
	config.Storage.PresignTTL = viper.GetInt("STORAGE_PRESIGN_TTL_SECONDS")

	config.OpenAI.APIKey = viper.GetString("OPENAI_API_KEY")
	config.OpenAI.Model = viper.GetString("OPENAI_MODEL")
	config.OpenAI.Timeout = viper.GetInt("OPENAI_TIMEOUT_SECONDS")

	config.OAuth.Google.ClientID = viper.GetString("GOOGLE_CLIENT_ID")
	config.OAuth.Google.ClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	config.OAuth.Microsoft.ClientID = viper.GetString("MICROSOFT_CLIENT_ID")
	config.OAuth.Microsoft.ClientSecret = viper.GetString("MICROSOFT_CLIENT_SECRET")
	config.OAuth.Monday.ClientID = viper.GetString("MONDAY_CLIENT_ID")
	config.OAuth.Monday.ClientSecret = viper.GetString("MONDAY_CLIENT_SECRET")
	config.OAuth.Smartsheet.ClientID = viper.GetString("SMARTSHEET_CLIENT_ID")
	config.OAuth.Smartsheet.ClientSecret = viper.GetString("SMARTSHEET_CLIENT_SECRET")
	config.OAuth.WorkdayTenant = viper.GetString("WORKDAY_TENANT")

	config.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = viper.GetInt("RATE_LIMIT_BURST")
	config.RateLimit.Enabled = viper.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.PaymentPerHour = viper.GetInt("RATE_LIMIT_PAYMENT_PER_HOUR")

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "pmblueprints")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	viper.SetDefault("REDIS_CACHE_TTL", 300)

	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
		viper.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "pmblueprints")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")

	viper.SetDefault("AUTH_TOKEN_TTL_MINUTES", 7*24*60)
	viper.SetDefault("AUTH_RESET_TOKEN_TTL_HOURS", 1)

	viper.SetDefault("STORAGE_REGION", "auto")
	viper.SetDefault("STORAGE_BUCKET", "pmblueprints-assets")
	viper.SetDefault("STORAGE_PRESIGN_TTL_SECONDS", 900)

	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_TIMEOUT_SECONDS", 30)

	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_PAYMENT_PER_HOUR", 10)
}

// Validate checks that configuration required at startup is present.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.App.HTTPPort == "" {
		return errors.New("HTTP_PORT is required")
	}
	if c.DB.Name == "" {
		return errors.New("DB_NAME is required")
	}
	return nil
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
