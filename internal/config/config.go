package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	GRPC        GRPCConfig        `yaml:"grpc"`
	Database    DatabaseConfig    `yaml:"database"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	SendGrid    SendGridConfig    `yaml:"sendgrid"`
	Firebase    FirebaseConfig    `yaml:"firebase"`
	Notify      NotifyConfig      `yaml:"notify"`
	JWT         JWTConfig         `yaml:"jwt"`
	Storage     StorageConfig     `yaml:"storage"`
	Institution InstitutionConfig `yaml:"institution"`
	Log         LogConfig         `yaml:"log"`
	Submission  SubmissionConfig  `yaml:"submission"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// GRPCConfig contains the health/reflection listener settings. Port 0
// disables the listener.
type GRPCConfig struct {
	Port int `yaml:"port" env:"GRPC_PORT"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"` // "postgres" or "memory"
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	SeedFile string `yaml:"seed_file" env:"DB_SEED_FILE"` // memory driver only
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// SendGridConfig contains SendGrid API settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key" env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"from_email" env:"SENDGRID_FROM_EMAIL"`
	FromName  string `yaml:"from_name" env:"SENDGRID_FROM_NAME"`
}

// FirebaseConfig contains Cloud Messaging settings
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
	Topic           string `yaml:"topic" env:"FIREBASE_TOPIC"`
}

// NotifyConfig selects the notification channels
type NotifyConfig struct {
	Channels []string `yaml:"channels" env:"NOTIFY_CHANNELS" envSeparator:","` // smtp, sendgrid, push
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes" env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	Type      string `yaml:"type" env:"STORAGE_TYPE"`     // "local"
	UploadDir string `yaml:"upload_dir" env:"UPLOAD_DIR"` // root for stored documents and pictures
}

// InstitutionConfig contains institution-specific validation settings
type InstitutionConfig struct {
	Name        string `yaml:"name" env:"INSTITUTION_NAME"`
	EmailDomain string `yaml:"email_domain" env:"INSTITUTION_EMAIL_DOMAIN"` // e.g. "school.edu.ph"; empty allows any
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// SubmissionConfig contains public application staging settings
type SubmissionConfig struct {
	TTL         time.Duration `yaml:"ttl" env:"SUBMISSION_TTL"`
	MaxAttempts int           `yaml:"max_attempts" env:"SUBMISSION_MAX_ATTEMPTS"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PurgeExpiredSubmissions string   `yaml:"purge_expired_submissions"`
	ReviewDigest            string   `yaml:"review_digest"`
	DigestRecipients        []string `yaml:"digest_recipients" env:"DIGEST_RECIPIENTS" envSeparator:","`
}

// Load reads configuration from a YAML file, then applies a .env file (if
// present) and environment variables on top of it.
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A missing .env is normal outside local development
	_ = godotenv.Load()

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables.
// Unset variables keep the YAML values.
func (c *Config) overrideWithEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Notification channels
	if len(c.Notify.Channels) == 0 {
		c.Notify.Channels = []string{"smtp"}
	}
	for _, ch := range c.Notify.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "smtp":
			if c.SMTP.Host == "" {
				return fmt.Errorf("SMTP host is required")
			}
			if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
				return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
			}
		case "sendgrid":
			if c.SendGrid.APIKey == "" || c.SendGrid.FromEmail == "" {
				return fmt.Errorf("SendGrid api key and from email are required")
			}
		case "push":
			if c.Firebase.ProjectID == "" {
				return fmt.Errorf("firebase project id is required for push notifications")
			}
			if c.Firebase.Topic == "" {
				c.Firebase.Topic = "workflow-updates"
			}
		default:
			return fmt.Errorf("unknown notification channel: %s", ch)
		}
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Type != "local" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	// Submission defaults
	if c.Submission.TTL == 0 {
		c.Submission.TTL = 15 * time.Minute
	}
	if c.Submission.MaxAttempts == 0 {
		c.Submission.MaxAttempts = 5
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.PurgeExpiredSubmissions == "" {
		c.Scheduler.PurgeExpiredSubmissions = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.ReviewDigest == "" {
		c.Scheduler.ReviewDigest = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// HasChannel reports whether a notification channel is enabled
func (c *Config) HasChannel(name string) bool {
	for _, ch := range c.Notify.Channels {
		if strings.EqualFold(strings.TrimSpace(ch), name) {
			return true
		}
	}
	return false
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC listener address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.GRPC.Port)
}
