// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`

	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string `mapstructure:"DB_READ_USER"`
	DBReadPassword                string `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	// AdminOrigins lists the hosts of the admin frontend. Requests and webhooks
	// from these origins are verified with the admin identity keys.
	AdminOrigins string `mapstructure:"ADMIN_ORIGINS"`

	ClerkJWTSecret          string `mapstructure:"CLERK_JWT_SECRET"`
	ClerkJWTPublicKey       string `mapstructure:"CLERK_JWT_PUBLIC_KEY"`
	ClerkAdminJWTPublicKey  string `mapstructure:"CLERK_ADMIN_JWT_PUBLIC_KEY"`
	ClerkIssuer             string `mapstructure:"CLERK_ISSUER"`
	UserClerkWebhookSecret  string `mapstructure:"USER_CLERK_WEBHOOK_SECRET"`
	AdminClerkWebhookSecret string `mapstructure:"ADMIN_CLERK_WEBHOOK_SECRET"`

	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	SpacesEndpoint string `mapstructure:"SPACES_ENDPOINT"`
	SpacesRegion   string `mapstructure:"SPACES_REGION"`
	SpacesBucket   string `mapstructure:"SPACES_BUCKET"`
	SpacesKey      string `mapstructure:"SPACES_KEY"`
	SpacesSecret   string `mapstructure:"SPACES_SECRET"`
	MediaRoot      string `mapstructure:"MEDIA_ROOT"`
	MediaBaseURL   string `mapstructure:"MEDIA_BASE_URL"`

	FeatureFlags string `mapstructure:"FEATURE_FLAGS"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	RateLimitGlobalPerMinute int `mapstructure:"RATE_LIMIT_GLOBAL_PER_MINUTE"`
	RateLimitWritePerMinute  int `mapstructure:"RATE_LIMIT_WRITE_PER_MINUTE"`
	RateLimitUploadPerMinute int `mapstructure:"RATE_LIMIT_UPLOAD_PER_MINUTE"`
}

const defaultClerkSecret = "dev-clerk-secret-change-in-production"

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A local .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.StorageDriver = strings.ToLower(strings.TrimSpace(config.StorageDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SERVICE_VERSION", "dev")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "dev_forum")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:3001")
	viper.SetDefault("ADMIN_ORIGINS", "localhost:3001")
	viper.SetDefault("CLERK_JWT_SECRET", defaultClerkSecret)
	// Keys without a meaningful default still need registering so that
	// Unmarshal picks them up from the environment.
	for _, key := range []string{
		"CLERK_JWT_PUBLIC_KEY", "CLERK_ADMIN_JWT_PUBLIC_KEY", "CLERK_ISSUER",
		"USER_CLERK_WEBHOOK_SECRET", "ADMIN_CLERK_WEBHOOK_SECRET",
		"SPACES_BUCKET", "SPACES_KEY", "SPACES_SECRET", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		viper.SetDefault(key, "")
	}
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("SPACES_ENDPOINT", "https://sfo3.digitaloceanspaces.com")
	viper.SetDefault("SPACES_REGION", "sfo3")
	viper.SetDefault("MEDIA_ROOT", "./media")
	viper.SetDefault("MEDIA_BASE_URL", "/media")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("RATE_LIMIT_GLOBAL_PER_MINUTE", 100)
	viper.SetDefault("RATE_LIMIT_WRITE_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_UPLOAD_PER_MINUTE", 10)
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// OriginList splits ALLOWED_ORIGINS.
func (c *Config) OriginList() []string {
	return splitList(c.AllowedOrigins)
}

// IsAdminOrigin reports whether origin (a URL or bare host) belongs to the admin frontend.
func (c *Config) IsAdminOrigin(origin string) bool {
	host := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(origin), "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return false
	}
	for _, admin := range splitList(c.AdminOrigins) {
		if strings.EqualFold(admin, host) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(host), "admin")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.ClerkJWTSecret == "" && c.ClerkJWTPublicKey == "" {
		return errors.New("CLERK_JWT_SECRET or CLERK_JWT_PUBLIC_KEY is required")
	}
	switch c.StorageDriver {
	case "", "local", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		if c.ClerkJWTPublicKey == "" && (c.ClerkJWTSecret == defaultClerkSecret || len(c.ClerkJWTSecret) < 32) {
			return errors.New("CLERK_JWT_PUBLIC_KEY or a strong CLERK_JWT_SECRET is required in production")
		}
		if c.UserClerkWebhookSecret == "" || c.AdminClerkWebhookSecret == "" {
			return errors.New("USER_CLERK_WEBHOOK_SECRET and ADMIN_CLERK_WEBHOOK_SECRET are required in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.StorageDriver == "s3" && (c.SpacesBucket == "" || c.SpacesKey == "" || c.SpacesSecret == "") {
			return errors.New("SPACES_BUCKET, SPACES_KEY and SPACES_SECRET are required when STORAGE_DRIVER=s3")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if c.ClerkJWTSecret == defaultClerkSecret && c.ClerkJWTPublicKey == "" {
		log.Println("WARNING: using the development CLERK_JWT_SECRET. Tokens signed with it are accepted.")
	}

	return nil
}
