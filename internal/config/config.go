package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	JWT           JWTConfig          `yaml:"jwt"`
	Log           LogConfig          `yaml:"log"`
	Redis         RedisConfig        `yaml:"redis"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit"`
	Notifications NotificationConfig `yaml:"notifications"`
	Marketplace   MarketplaceConfig  `yaml:"marketplace"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	HTTPPort        int    `yaml:"http_port"`
	GRPCPort        int    `yaml:"grpc_port"` // 0 disables the health server
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig selects the store. Driver "memory" ignores the connection fields.
type DatabaseConfig struct {
	Driver         string `yaml:"driver"` // "postgres" or "memory"
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"ssl_mode"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty disables redis
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig drives the redis token bucket in front of the HTTP API.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Capacity       int           `yaml:"capacity"`
	RefillTokens   int           `yaml:"refill_tokens"`
	RefillInterval time.Duration `yaml:"refill_interval"`
	TTL            time.Duration `yaml:"ttl"`
	Prefix         string        `yaml:"prefix"`
}

type NotificationConfig struct {
	QueueSize       int          `yaml:"queue_size"`
	Workers         int          `yaml:"workers"`
	DeliveryTimeout int          `yaml:"delivery_timeout_seconds"`
	Store           *bool        `yaml:"store"` // nil means enabled
	Email           EmailConfig  `yaml:"email"`
	Broker          BrokerConfig `yaml:"broker"`
	Push            PushConfig   `yaml:"push"`
}

type EmailConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"sendgrid_api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type BrokerConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Queue   string `yaml:"queue"`
}

type PushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
}

// MarketplaceConfig holds business tunables.
type MarketplaceConfig struct {
	OrderNumberAttempts       int `yaml:"order_number_attempts"`
	CartSaveAttempts          int `yaml:"cart_save_attempts"`
	PendingGraceHours         int `yaml:"pending_grace_hours"`
	ReminderWindowHours       int `yaml:"reminder_window_hours"`
	NotificationRetentionDays int `yaml:"notification_retention_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireStalePending string `yaml:"expire_stale_pending"`
	SendStartReminders string `yaml:"send_start_reminders"`
	PurgeNotifications string `yaml:"purge_notifications"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory, when present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("HTTP_PORT", &c.Server.HTTPPort)
	envInt("GRPC_PORT", &c.Server.GRPCPort)

	// Database
	envString("DB_DRIVER", &c.Database.Driver)
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)
	envBool("DB_MIGRATE_ON_START", &c.Database.MigrateOnStart)

	// JWT
	envString("JWT_SECRET", &c.JWT.Secret)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	// Redis
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envInt("REDIS_DB", &c.Redis.DB)
	envBool("RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	envInt("RATE_LIMIT_CAPACITY", &c.RateLimit.Capacity)

	// Notifications
	envString("SENDGRID_API_KEY", &c.Notifications.Email.APIKey)
	envString("SENDGRID_FROM_EMAIL", &c.Notifications.Email.FromEmail)
	envBool("NOTIFY_EMAIL_ENABLED", &c.Notifications.Email.Enabled)
	envString("RABBITMQ_URL", &c.Notifications.Broker.URL)
	envBool("NOTIFY_BROKER_ENABLED", &c.Notifications.Broker.Enabled)
	envString("FIREBASE_CREDENTIALS_FILE", &c.Notifications.Push.CredentialsFile)
	envBool("NOTIFY_PUSH_ENABLED", &c.Notifications.Push.Enabled)
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	rl := &c.RateLimit
	if rl.Capacity < 1 {
		rl.Capacity = 60
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = 1
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = time.Second
	}
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
	if rl.Prefix == "" {
		rl.Prefix = "rl"
	}

	n := &c.Notifications
	if n.QueueSize == 0 {
		n.QueueSize = 256
	}
	if n.Workers == 0 {
		n.Workers = 2
	}
	if n.DeliveryTimeout == 0 {
		n.DeliveryTimeout = 10
	}
	if n.Broker.Queue == "" {
		n.Broker.Queue = "marketplace.notifications"
	}
	if n.Email.FromName == "" {
		n.Email.FromName = "Rent Market"
	}

	m := &c.Marketplace
	if m.OrderNumberAttempts == 0 {
		m.OrderNumberAttempts = 5
	}
	if m.CartSaveAttempts == 0 {
		m.CartSaveAttempts = 3
	}
	if m.PendingGraceHours == 0 {
		m.PendingGraceHours = 24
	}
	if m.ReminderWindowHours == 0 {
		m.ReminderWindowHours = 24
	}
	if m.NotificationRetentionDays == 0 {
		m.NotificationRetentionDays = 30
	}

	// Scheduler defaults
	if c.Scheduler.ExpireStalePending == "" {
		c.Scheduler.ExpireStalePending = "0 0 * * * *" // hourly
	}
	if c.Scheduler.SendStartReminders == "" {
		c.Scheduler.SendStartReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.PurgeNotifications == "" {
		c.Scheduler.PurgeNotifications = "0 30 3 * * *" // 3:30 AM UTC
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	switch c.Database.Driver {
	case "memory":
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
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Notifications.Workers < 1 || c.Notifications.QueueSize < 1 {
		return fmt.Errorf("notification queue size and workers must be positive")
	}
	if c.Notifications.Email.Enabled && (c.Notifications.Email.APIKey == "" || c.Notifications.Email.FromEmail == "") {
		return fmt.Errorf("email notifications need a sendgrid api key and from address")
	}
	if c.Notifications.Broker.Enabled && c.Notifications.Broker.URL == "" {
		return fmt.Errorf("broker notifications need a url")
	}
	if c.Notifications.Push.Enabled && c.Notifications.Push.CredentialsFile == "" {
		return fmt.Errorf("push notifications need a firebase credentials file")
	}
	if c.RateLimit.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("rate limiting requires redis.addr")
	}
	return nil
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

// GetHTTPAddress returns the HTTP API address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC health server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpiry) * time.Minute
}

func (c *Config) PendingGrace() time.Duration {
	return time.Duration(c.Marketplace.PendingGraceHours) * time.Hour
}

func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.Marketplace.ReminderWindowHours) * time.Hour
}

func (c *Config) NotificationRetention() time.Duration {
	return time.Duration(c.Marketplace.NotificationRetentionDays) * 24 * time.Hour
}

// StoreNotifications reports whether events are persisted for the in-app inbox.
func (c *Config) StoreNotifications() bool {
	return c.Notifications.Store == nil || *c.Notifications.Store
}

// UsesMemoryStore reports whether the in-process store was selected.
func (c *Config) UsesMemoryStore() bool {
	return strings.EqualFold(c.Database.Driver, "memory")
}
