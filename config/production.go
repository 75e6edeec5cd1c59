// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// MinStaleAfter bounds DISPATCH_STALE_AFTER from below. A running dispatch refreshes its
// campaign every StaleAfter/3, so the sweep only ever sees campaigns whose dispatch stopped.
const MinStaleAfter = time.Minute

// ProductionConfig holds all configuration for the service
type ProductionConfig struct {
	Environment string         `json:"environment"`
	Database    DatabaseConfig `json:"database"`
	Server      ServerConfig   `json:"server"`
	Security    SecurityConfig `json:"security"`
	Email       EmailConfig    `json:"email"`
	Google      GoogleConfig   `json:"google"`
	Dispatch    DispatchConfig `json:"dispatch"`
	Logging     LoggingConfig  `json:"logging"`
	Metrics     MetricsConfig  `json:"metrics"`
}

type DatabaseConfig struct {
	URL             string        `json:"-"` // full connection string, wins over the discrete fields
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"-"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

// DSN returns the connection string for the configured database
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
}

// Address returns host:port for the listener
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SecurityConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// EmailConfig selects and configures the outbound mail provider.
// Missing credentials leave the provider unconfigured; sends then fail individually.
type EmailConfig struct {
	Provider  string `json:"provider"` // smtp, ses, mock
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`

	SESRegion           string `json:"ses_region"`
	SESAccessKeyID      string `json:"-"`
	SESSecretAccessKey  string `json:"-"`
	SESConfigurationSet string `json:"ses_configuration_set"`
}

// Configured reports whether the selected provider has the credentials it needs
func (c EmailConfig) Configured() bool {
	switch c.Provider {
	case "mock":
		return true
	case "ses":
		return c.SESRegion != ""
	default:
		return c.Host != "" && c.Username != "" && c.Password != ""
	}
}

type GoogleConfig struct {
	ClientID string `json:"client_id"`
}

type DispatchConfig struct {
	FromEmail   string `json:"from_email"`
	Concurrency int    `json:"concurrency"` // 1 keeps the fan-out strictly sequential

	// campaigns left in sending longer than StaleAfter are marked failed; 0 interval disables the sweep
	SweepInterval time.Duration `json:"sweep_interval"`
	StaleAfter    time.Duration `json:"stale_after"`
}

type LoggingConfig struct {
	Level            string `json:"level"`  // debug, info, warn, error
	Format           string `json:"format"` // json, console
	Output           string `json:"output"` // stdout, file, both
	FilePath         string `json:"file_path"`
	MaxSize          int    `json:"max_size"` // MB
	MaxBackups       int    `json:"max_backups"`
	MaxAge           int    `json:"max_age"` // days
	Compress         bool   `json:"compress"`
	EnableCaller     bool   `json:"enable_caller"`
	EnableStacktrace bool   `json:"enable_stacktrace"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// IsProduction reports whether the service runs in production mode
func (c *ProductionConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// LoadProductionConfig reads configuration from envFile (when it exists) and the process
// environment. Process environment wins over the file.
func LoadProductionConfig(envFile string) (*ProductionConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	env := envReader{v: v}

	environment := env.String("APP_ENV", "")
	if environment == "" {
		environment = env.String("NODE_ENV", EnvDevelopment)
	}
	isProduction := environment == EnvProduction

	defaultFrom := env.String("DEFAULT_FROM_EMAIL", env.String("SMTP_USER", ""))

	cfg := &ProductionConfig{
		Environment: environment,
		Database: DatabaseConfig{
			URL:             env.String("DATABASE_URL", ""),
			Host:            env.String("DB_HOST", "localhost"),
			Port:            env.Int("DB_PORT", 5432),
			Name:            env.String("DB_NAME", "postgres"),
			User:            env.String("DB_USER", "postgres"),
			Password:        env.String("DB_PASSWORD", ""),
			SSLMode:         env.String("DB_SSL_MODE", "disable"),
			MaxOpenConns:    env.Int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    env.Int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: env.Duration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryTime:   env.Duration("DB_SLOW_QUERY_TIME", time.Second),
		},
		Server: ServerConfig{
			Host:            env.String("HOST", "0.0.0.0"),
			Port:            env.Int("PORT", 5000),
			ReadTimeout:     env.Duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("SERVER_WRITE_TIMEOUT", 0),
			IdleTimeout:     env.Duration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: env.Duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       env.Int("SERVER_BODY_LIMIT", 10*1024*1024),
		},
		Security: SecurityConfig{
			AllowedOrigins:   env.StringSlice("FRONTEND_URL", []string{"http://localhost:3000"}),
			AllowCredentials: env.Bool("CORS_ALLOW_CREDENTIALS", true),
		},
		Email: EmailConfig{
			Provider:            strings.ToLower(env.String("MAIL_PROVIDER", "smtp")),
			Host:                env.String("SMTP_HOST", ""),
			Port:                env.Int("SMTP_PORT", 587),
			Secure:              env.Bool("SMTP_SECURE", false),
			Username:            env.String("SMTP_USER", ""),
			Password:            env.String("SMTP_PASSWORD", ""),
			FromEmail:           defaultFrom,
			FromName:            env.String("DEFAULT_FROM_NAME", ""),
			SESRegion:           env.String("AWS_REGION", ""),
			SESAccessKeyID:      env.String("AWS_ACCESS_KEY_ID", ""),
			SESSecretAccessKey:  env.String("AWS_SECRET_ACCESS_KEY", ""),
			SESConfigurationSet: env.String("SES_CONFIGURATION_SET", ""),
		},
		Google: GoogleConfig{
			ClientID: env.String("GOOGLE_CLIENT_ID", ""),
		},
		Dispatch: DispatchConfig{
			FromEmail:     env.String("CAMPAIGN_FROM_EMAIL", "onboarding@resend.dev"),
			Concurrency:   env.Int("DISPATCH_CONCURRENCY", 1),
			SweepInterval: env.Duration("DISPATCH_SWEEP_INTERVAL", 5*time.Minute),
			StaleAfter:    env.Duration("DISPATCH_STALE_AFTER", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:            env.String("LOG_LEVEL", "info"),
			Format:           env.String("LOG_FORMAT", defaultLogFormat(isProduction)),
			Output:           env.String("LOG_OUTPUT", "stdout"),
			FilePath:         env.String("LOG_FILE_PATH", "logs/mini-crm.log"),
			MaxSize:          env.Int("LOG_MAX_SIZE", 100),
			MaxBackups:       env.Int("LOG_MAX_BACKUPS", 10),
			MaxAge:           env.Int("LOG_MAX_AGE", 30),
			Compress:         env.Bool("LOG_COMPRESS", true),
			EnableCaller:     env.Bool("LOG_ENABLE_CALLER", !isProduction),
			EnableStacktrace: env.Bool("LOG_ENABLE_STACKTRACE", !isProduction),
		},
		Metrics: MetricsConfig{
			Enabled: env.Bool("METRICS_ENABLED", true),
			Path:    env.String("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

func defaultLogFormat(isProduction bool) string {
	if isProduction {
		return "json"
	}
	return "console"
}

// envReader reads typed values through viper, falling back to a default when a key is unset
type envReader struct {
	v *viper.Viper
}

func (r envReader) String(key, defaultValue string) string {
	if value := strings.TrimSpace(r.v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r envReader) Int(key string, defaultValue int) int {
	if !r.v.IsSet(key) || r.v.GetString(key) == "" {
		return defaultValue
	}
	return r.v.GetInt(key)
}

func (r envReader) Bool(key string, defaultValue bool) bool {
	if !r.v.IsSet(key) || r.v.GetString(key) == "" {
		return defaultValue
	}
	return r.v.GetBool(key)
}

func (r envReader) Duration(key string, defaultValue time.Duration) time.Duration {
	if !r.v.IsSet(key) || r.v.GetString(key) == "" {
		return defaultValue
	}
	return r.v.GetDuration(key)
}

func (r envReader) StringSlice(key string, defaultValue []string) []string {
	var result []string
	for _, item := range strings.Split(r.v.GetString(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) > 0 {
		return result
	}
	return defaultValue
}

// ValidateProductionConfig validates the configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	switch cfg.Environment {
	case EnvProduction, EnvDevelopment, EnvTest, "local", "staging":
	default:
		errors = append(errors, "APP_ENV must be one of production, staging, development, local, test")
	}

	// Database
	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" {
			errors = append(errors, "DB_HOST or DATABASE_URL is required")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errors = append(errors, "DB_PORT must be between 1 and 65535")
		}
	}
	if cfg.Database.MaxOpenConns < 1 {
		errors = append(errors, "DB_MAX_OPEN_CONNS must be at least 1")
	}

	// Server
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.IdleTimeout < 0 {
		errors = append(errors, "SERVER_*_TIMEOUT values must not be negative")
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		errors = append(errors, "FRONTEND_URL must name at least one origin")
	}

	// Mail. Credentials are optional, the provider name is not.
	switch cfg.Email.Provider {
	case "smtp", "ses", "mock":
	default:
		errors = append(errors, "MAIL_PROVIDER must be one of smtp, ses, mock")
	}
	if cfg.Email.Port <= 0 || cfg.Email.Port > 65535 {
		errors = append(errors, "SMTP_PORT must be between 1 and 65535")
	}

	// Dispatch
	if cfg.Dispatch.Concurrency < 1 {
		errors = append(errors, "DISPATCH_CONCURRENCY must be at least 1")
	}
	if cfg.Dispatch.FromEmail == "" {
		errors = append(errors, "CAMPAIGN_FROM_EMAIL must not be empty")
	}
	if cfg.Dispatch.SweepInterval > 0 && cfg.Dispatch.StaleAfter < MinStaleAfter {
		errors = append(errors, fmt.Sprintf("DISPATCH_STALE_AFTER must be at least %s when the sweep is enabled", MinStaleAfter))
	}

	// Logging
	switch cfg.Logging.Output {
	case "stdout", "file", "both":
	default:
		errors = append(errors, "LOG_OUTPUT must be one of stdout, file, both")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
