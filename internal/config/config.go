package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Security    SecurityConfig    `yaml:"security"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Complaints  ComplaintsConfig  `yaml:"complaints"`
	DefaultUser DefaultUserConfig `yaml:"default_user"`
}

type ServerConfig struct {
	Host        string   `yaml:"host" env:"BROTODESK_HOST"`
	Port        int      `yaml:"port" env:"BROTODESK_PORT"`
	Mode        string   `yaml:"mode" env:"BROTODESK_MODE"`
	CORSOrigins []string `yaml:"cors_origins" env:"BROTODESK_CORS_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	Type     string         `yaml:"type" env:"BROTODESK_DB_TYPE"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"BROTODESK_DB_PATH"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" env:"BROTODESK_MYSQL_HOST"`
	Port     int    `yaml:"port" env:"BROTODESK_MYSQL_PORT"`
	Username string `yaml:"username" env:"BROTODESK_MYSQL_USER"`
	Password string `yaml:"password" env:"BROTODESK_MYSQL_PASSWORD"`
	Database string `yaml:"database" env:"BROTODESK_MYSQL_DATABASE"`
	Charset  string `yaml:"charset"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"BROTODESK_POSTGRES_DSN"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret" env:"BROTODESK_JWT_SECRET"`
	ExpiresIn string `yaml:"expires_in" env:"BROTODESK_JWT_EXPIRES_IN"`
	Issuer    string `yaml:"issuer"`
}

type SecurityConfig struct {
	BcryptCost int             `yaml:"bcrypt_cost"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"BROTODESK_RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

type StorageConfig struct {
	Driver         string         `yaml:"driver" env:"BROTODESK_STORAGE_DRIVER"`
	MaxUploadBytes int64          `yaml:"max_upload_bytes"`
	Disk           DiskConfig     `yaml:"disk"`
	Firebase       FirebaseConfig `yaml:"firebase"`
}

type DiskConfig struct {
	Path         string `yaml:"path" env:"BROTODESK_UPLOADS_PATH"`
	PublicPrefix string `yaml:"public_prefix"`
}

type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"BROTODESK_FIREBASE_CREDENTIALS"`
	Bucket          string `yaml:"bucket" env:"BROTODESK_FIREBASE_BUCKET"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"BROTODESK_REDIS_ADDR"`
	Password string `yaml:"password" env:"BROTODESK_REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url" env:"BROTODESK_RABBITMQ_URL"`
	Exchange string `yaml:"exchange"`
}

type ComplaintsConfig struct {
	StrictTransitions bool `yaml:"strict_transitions" env:"BROTODESK_STRICT_TRANSITIONS"`
}

type DefaultUserConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email" env:"BROTODESK_ADMIN_EMAIL"`
	Password string `yaml:"password" env:"BROTODESK_ADMIN_PASSWORD"`
	Role     string `yaml:"role"`
}

const (
	defaultTokenTTL       = 7 * 24 * time.Hour
	defaultMaxUploadBytes = 5 << 20
)

// Load reads the configuration file and applies environment overrides
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if cfg.Storage.Driver == "disk" {
		if err := os.MkdirAll(cfg.Storage.Disk.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create uploads directory: %w", err)
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.MySQL.Charset == "" {
		c.Database.MySQL.Charset = "utf8mb4"
	}
	if c.JWT.ExpiresIn == "" {
		c.JWT.ExpiresIn = "7d"
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 10
	}
	if c.Security.RateLimit.RequestsPerMinute == 0 {
		c.Security.RateLimit.RequestsPerMinute = 20
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "disk"
	}
	if c.Storage.MaxUploadBytes == 0 {
		c.Storage.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Storage.Disk.Path == "" {
		c.Storage.Disk.Path = "uploads"
	}
	if c.Storage.Disk.PublicPrefix == "" {
		c.Storage.Disk.PublicPrefix = "/uploads"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "brotodesk.events"
	}
}

// Validate reports configuration that cannot be served
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("SQLite path is required")
		}
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("Postgres DSN is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.JWT.Secret == "" && c.Server.Mode != "debug" {
		return fmt.Errorf("JWT secret is required in %s mode", c.Server.Mode)
	}
	if _, err := ParseTTL(c.JWT.ExpiresIn); err != nil {
		return fmt.Errorf("invalid jwt.expires_in: %w", err)
	}

	switch c.Storage.Driver {
	case "disk":
	case "firebase":
		if c.Storage.Firebase.Bucket == "" {
			return fmt.Errorf("firebase bucket is required for the firebase storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	return nil
}

// TokenTTL returns the bearer credential lifetime, falling back to 7 days
func (c *Config) TokenTTL() time.Duration {
	ttl, err := ParseTTL(c.JWT.ExpiresIn)
	if err != nil || ttl <= 0 {
		return defaultTokenTTL
	}
	return ttl
}

// ParseTTL accepts Go durations plus a day suffix ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultTokenTTL, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
