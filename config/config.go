package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration.
// The campus client and the chat function read the same environment; each
// binary only uses the sections it needs.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Providers     ProvidersConfig
	Chat          ChatConfig
	Client        ClientConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration for the chat function
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// RateLimit is the number of chat requests allowed per IP per RateWindow
	RateLimit  int
	RateWindow time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// AuthConfig holds credential verification settings for the chat function
type AuthConfig struct {
	// JWTSecret verifies HS256 access tokens issued by the auth project
	JWTSecret string
	// ProjectURL and AnonKey identify the hosted auth/data project
	ProjectURL string
	AnonKey    string
}

// ProvidersConfig holds LLM provider configurations
type ProvidersConfig struct {
	Groq GroqConfig
}

// GroqConfig holds the OpenAI-compatible completion API configuration
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ChatConfig holds the assistant's fixed generation parameters
type ChatConfig struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	HistoryWindow int
	MaxInputLen   int
}

// ClientConfig holds the campus client settings
type ClientConfig struct {
	APIURL          string
	ChatFunctionURL string
	AuthScheme      string
	// LoginFormat names the login response adapter; "auto" detects it
	LoginFormat string
	SessionDir  string
	Timeout     time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimit:       getEnvAsInt("CHAT_RATE_LIMIT", 30),
			RateWindow:      getEnvAsDuration("CHAT_RATE_WINDOW", time.Minute),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
			ProjectURL: getEnv("SUPABASE_URL", "https://YOUR_PROJECT.supabase.co"),
			AnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		},
		Providers: ProvidersConfig{
			Groq: GroqConfig{
				APIKey:  getEnv("GROQ_API_KEY", ""),
				BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
				Timeout: getEnvAsDuration("GROQ_TIMEOUT", 30*time.Second),
			},
		},
		Chat: ChatConfig{
			Model:         getEnv("CHAT_MODEL", "llama-3.1-8b-instant"),
			Temperature:   getEnvAsFloat("CHAT_TEMPERATURE", 0.6),
			MaxTokens:     getEnvAsInt("CHAT_MAX_TOKENS", 500),
			HistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 6),
			MaxInputLen:   getEnvAsInt("CHAT_MAX_INPUT", 500),
		},
		Client: ClientConfig{
			APIURL:          strings.TrimRight(getEnv("API_URL", "http://127.0.0.1:8000/api"), "/"),
			ChatFunctionURL: getEnv("CHAT_FUNCTION_URL", "https://YOUR_PROJECT.supabase.co/functions/v1/chat"),
			AuthScheme:      authScheme(getEnv("API_AUTH_SCHEME", "Bearer")),
			LoginFormat:     getEnv("API_LOGIN_FORMAT", "auto"),
			SessionDir:      getEnv("CAMPUS_SESSION_DIR", defaultSessionDir()),
			Timeout:         getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set.
// A missing GROQ_API_KEY is not an error here: the chat function reports it
// per request as an unavailable upstream.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Client.APIURL); err != nil {
		return fmt.Errorf("invalid API_URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.Client.ChatFunctionURL); err != nil {
		return fmt.Errorf("invalid CHAT_FUNCTION_URL: %w", err)
	}
	if c.Chat.HistoryWindow < 0 {
		return fmt.Errorf("chat history window cannot be negative")
	}
	if c.Chat.MaxTokens <= 0 {
		return fmt.Errorf("chat max tokens must be positive")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("chat rate limit must be positive")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required in production")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionFile returns the path of the persisted principal
func (c *ClientConfig) SessionFile() string {
	return filepath.Join(c.SessionDir, "campus_user.json")
}

func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		ConnectionString: getEnv("DATABASE_URL", ""),
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", false),
	}
	if cfg.ConnectionString != "" {
		return cfg
	}
	cfg.Host = getEnv("DB_HOST", "localhost")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "postgres")
	cfg.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database = getEnv("DB_NAME", "campus")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// authScheme maps "none" to the empty scheme, which sends the bare token
func authScheme(v string) string {
	if strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "campus")
	}
	return ".campus"
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
