package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Session token configuration
	Auth AuthConfig

	// Redis-backed session revocation
	Redis RedisConfig

	// Object storage for uploads and generated images
	Storage StorageConfig

	// Upload limits
	Upload UploadConfig

	// Generative API configuration
	AI AIConfig

	// Background generation jobs
	Jobs JobsConfig

	// Outgoing mail
	Mail MailConfig

	// Blog search index
	Search SearchConfig

	// Allowed browser origins
	CORS CORSConfig

	// Logging configuration
	Log LogConfig

	// First super admin account
	Bootstrap BootstrapConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

// RedisConfig holds the session store connection. An empty URL disables revocation.
type RedisConfig struct {
	URL string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

// AIConfig holds generative API settings
type AIConfig struct {
	GeminiBaseURL     string
	GeminiAPIKey      string
	GeminiFallbackKey string
	GeminiTextModel   string
	GeminiImageModel  string
	GroqBaseURL       string
	GroqAPIKey        string
	GroqModel         string
	RequestDelay      time.Duration
	Timeout           time.Duration
	MaxFixups         int
}

// JobsConfig holds background job processor settings
type JobsConfig struct {
	Workers        int
	PollInterval   time.Duration
	BatchSize      int
	MaxLifetime    time.Duration
	StaleAfter     time.Duration
	ReaperSchedule string
}

// MailConfig holds SMTP settings. Mail is disabled when Host or From is empty.
type MailConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	FromName        string
	AdminRecipients []string
}

// SearchConfig holds Meilisearch settings. An empty URL disables the index.
type SearchConfig struct {
	MeiliURL string
	MeiliKey string
	Index    string
}

// CORSConfig holds allowed origins
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// BootstrapConfig seeds the first SUPER_ADMIN account
type BootstrapConfig struct {
	SuperAdminName     string
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Load reads configuration from environment variables, after seeding them
// from a .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Environment:     getEnv("ENV", "production"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "portfolio_blog"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("TOKEN_TTL", 7*24*time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "portfolio-blog-api"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", "portfolio"),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:    getBoolEnv("STORAGE_USE_SSL", false),
			PublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		},
		Upload: UploadConfig{
			MaxSize:      getInt64Env("UPLOAD_MAX_SIZE", 10*1024*1024), // 10MB
			AllowedTypes: getListEnv("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/gif", "image/webp"}),
		},
		AI: AIConfig{
			GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiFallbackKey: getEnv("GEMINI_API_KEY_FALLBACK", ""),
			GeminiTextModel:   getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
			GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com"),
			GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
			GroqModel:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			RequestDelay:      getDurationEnv("AI_REQUEST_DELAY", 2*time.Second),
			Timeout:           getDurationEnv("AI_TIMEOUT", 45*time.Second),
			MaxFixups:         getIntEnv("AI_MAX_FIXUPS", 8),
		},
		Jobs: JobsConfig{
			Workers:        getIntEnv("JOB_WORKERS", 4),
			PollInterval:   getDurationEnv("JOB_POLL_INTERVAL", 2*time.Second),
			BatchSize:      getIntEnv("JOB_BATCH_SIZE", 20),
			MaxLifetime:    getDurationEnv("JOB_MAX_LIFETIME", 3*time.Minute),
			StaleAfter:     getDurationEnv("JOB_STALE_AFTER", 15*time.Minute),
			ReaperSchedule: getEnv("JOB_REAPER_SCHEDULE", "@every 5m"),
		},
		Mail: MailConfig{
			Host:            getEnv("SMTP_HOST", ""),
			Port:            getIntEnv("SMTP_PORT", 587),
			Username:        getEnv("SMTP_USERNAME", ""),
			Password:        getEnv("SMTP_PASSWORD", ""),
			From:            getEnv("SMTP_FROM", ""),
			FromName:        getEnv("SMTP_FROM_NAME", "Portfolio Blog"),
			AdminRecipients: getListEnv("ADMIN_NOTIFY_EMAILS", nil),
		},
		Search: SearchConfig{
			MeiliURL: getEnv("MEILI_URL", ""),
			MeiliKey: getEnv("MEILI_MASTER_KEY", ""),
			Index:    getEnv("MEILI_INDEX", "blogs"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Bootstrap: BootstrapConfig{
			SuperAdminName:     getEnv("SUPER_ADMIN_NAME", "Super Admin"),
			SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
			SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required")
		}
		c.Auth.JWTSecret = "development-only-secret"
	}
	if len(c.Auth.JWTSecret) < 16 && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive")
	}
	return nil
}

// IsDevelopment reports whether ENV=development
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blanks
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
