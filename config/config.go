package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Inference     InferenceConfig
	SMTP          SMTPConfig
	Session       SessionConfig
	Storage       StorageConfig
	EventTriggers EventTriggerConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	MinConns    int32
	WorkOffline bool
}

type InferenceConfig struct {
	GeminiAPIKey   string
	Model          string
	TimeoutSeconds int
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type SessionConfig struct {
	TTLMinutes  int
	TokenSecret string
	TokenIssuer string
}

type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type EventTriggerConfig struct {
	ScreeningFinishedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceVersion   string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://talentscout.dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-pro")
	v.SetDefault("INFERENCE_TIMEOUT_SECONDS", 30)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SESSION_TTL_MINUTES", 120)
	v.SetDefault("SESSION_TOKEN_ISSUER", "talentscout-api")
	v.SetDefault("OTLP_SERVICE_NAME", "talentscout-api")
	v.SetDefault("OTLP_SERVICE_VERSION", "1.0.0")
	v.SetDefault("PROFILING_ENABLED", false)
	v.SetDefault("PROFILING_APP_NAME", "talentscout-api")
	v.SetDefault("PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("STORAGE_REGION", "us-east-1")

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	for _, origin := range strings.Split(v.GetString("ALLOWED_CORS_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			MaxConns:    10,
			MinConns:    2,
			WorkOffline: v.GetBool("DB_WORK_OFFLINE"),
		},
		Inference: InferenceConfig{
			GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
			Model:          v.GetString("GEMINI_MODEL"),
			TimeoutSeconds: v.GetInt("INFERENCE_TIMEOUT_SECONDS"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			From:     v.GetString("SMTP_FROM"),
			Password: v.GetString("SMTP_PASSWORD"),
		},
		Session: SessionConfig{
			TTLMinutes:  v.GetInt("SESSION_TTL_MINUTES"),
			TokenSecret: v.GetString("SESSION_TOKEN_SECRET"),
			TokenIssuer: v.GetString("SESSION_TOKEN_ISSUER"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
		},
		EventTriggers: EventTriggerConfig{
			ScreeningFinishedTriggerURL: v.GetString("SCREENING_FINISHED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("OTLP_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("OTLP_SERVICE_NAME"),
			ServiceVersion:   v.GetString("OTLP_SERVICE_VERSION"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("PROFILING_ENABLED"),
			Endpoint:              v.GetString("PROFILING_ENDPOINT"),
			AppName:               v.GetString("PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set. Missing credentials
// are fatal at startup, never discovered mid-conversation.
func (c *Config) Validate() error {
	if c.Inference.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required")
	}
	if c.SMTP.Password == "" {
		return fmt.Errorf("SMTP_PASSWORD is required")
	}

	if c.Session.TokenSecret == "" {
		return fmt.Errorf("SESSION_TOKEN_SECRET is required")
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	if !c.Database.WorkOffline && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when not in offline mode")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// InferenceTimeout returns the bounded per-call timeout for gateway calls
func (c *Config) InferenceTimeout() time.Duration {
	if c.Inference.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Inference.TimeoutSeconds) * time.Second
}
