package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment overrides. Nested keys use a
// double underscore: PLUGU_DATABASE__MAX_OPEN_CONNS -> database.max_open_conns.
const EnvPrefix = "PLUGU_"

// DefaultConfigFile is tried when LoadConfig is given an empty path.
const DefaultConfigFile = "plugu.toml"

type Config struct {
	Server ServerConfig `koanf:"server"`

	// Relational store shared by every data access function
	Database DatabaseConfig `koanf:"database"`

	// GridFS media store for post images and avatars
	MongoDB MongoDBConfig `koanf:"mongodb"`

	// Optional cross-instance fan-out for realtime events
	Redis RedisConfig `koanf:"redis"`

	Realtime RealtimeConfig `koanf:"realtime"`

	Auth AuthConfig `koanf:"auth"`

	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string `koanf:"host"`
	APIPort         string `koanf:"api_port"`
	ChatServicePort string `koanf:"chat_service_port"`
	ReadTimeout     int    `koanf:"read_timeout"`  // seconds
	WriteTimeout    int    `koanf:"write_timeout"` // seconds
	Environment     string `koanf:"environment"`   // development, staging, production
	MediaBaseURL    string `koanf:"media_base_url"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // mysql, postgres
	Host         string `koanf:"host"`
	Port         string `koanf:"port"`
	Username     string `koanf:"username"`
	Password     string `koanf:"password"`
	DatabaseName string `koanf:"database_name"`
	SSLMode      string `koanf:"ssl_mode"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`

	// Overrides the DSN built from the fields above
	DSN string `koanf:"dsn"`
}

type MongoDBConfig struct {
	URI      string `koanf:"uri"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	Bucket   string `koanf:"bucket"`
}

type RedisConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	ChannelPrefix string `koanf:"channel_prefix"`
}

type RealtimeConfig struct {
	// Per-subscriber queue length of the in-process hub
	BufferSize int `koanf:"buffer_size"`
}

// AuthConfig holds the shared secret of the hosted backend that issues
// bearer tokens. Disabled trusts the X-User-ID header; development only.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Issuer    string `koanf:"issuer"`
	Disabled  bool   `koanf:"disabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, console
	OutputPath string `koanf:"output_path"` // stdout, stderr, or file path
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.host":              "0.0.0.0",
		"server.api_port":          "8080",
		"server.chat_service_port": "7003",
		"server.read_timeout":      15,
		"server.write_timeout":     15,
		"server.environment":       "development",
		"server.media_base_url":    "/media/",

		"database.driver":         "mysql",
		"database.host":           "localhost",
		"database.port":           "3306",
		"database.username":       "plugu",
		"database.password":       "",
		"database.database_name":  "plugu",
		"database.ssl_mode":       "disable",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 5,

		"mongodb.host":     "localhost",
		"mongodb.port":     "27017",
		"mongodb.database": "plugu",
		"mongodb.bucket":   "media_files",

		"redis.enabled":        false,
		"redis.url":            "redis://localhost:6379/0",
		"redis.channel_prefix": "plugu:",

		"realtime.buffer_size": 64,

		"auth.issuer":   "",
		"auth.disabled": false,

		"logging.level":       "info",
		"logging.format":      "json",
		"logging.output_path": "stdout",
	}
}

// LoadConfig layers defaults, an optional TOML file and PLUGU_ environment
// variables (a .env file is loaded into the environment first).
func LoadConfig(configPath string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", configPath, err)
		}
	} else if _, err := os.Stat(DefaultConfigFile); err == nil {
		if err := k.Load(file.Provider(DefaultConfigFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", DefaultConfigFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the settings every service depends on.
func (cfg *Config) Validate() error {
	var errs []error

	switch cfg.Database.Driver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver))
	}
	if cfg.Server.APIPort == "" {
		errs = append(errs, errors.New("server.api_port is required"))
	}
	if cfg.Server.ChatServicePort == "" {
		errs = append(errs, errors.New("server.chat_service_port is required"))
	}
	if !cfg.Auth.Disabled && cfg.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required unless auth.disabled is set"))
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", cfg.Logging.Format))
	}
	if cfg.Redis.Enabled && cfg.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required when redis is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development"
}

// DSN builds the driver specific connection string.
func (cfg *Config) DSN() string {
	db := cfg.Database
	if db.DSN != "" {
		return db.DSN
	}

	host := db.Host
	if host == "" {
		host = "localhost"
	}

	if db.Driver == "postgres" {
		port := db.Port
		if port == "" {
			port = "5432"
		}
		sslMode := db.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, db.Username, db.Password, db.DatabaseName, sslMode)
	}

	port := db.Port
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		db.Username,
		db.Password,
		host,
		port,
		db.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.URI != "" {
		return m.URI
	}
	if m.Username != "" && m.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			url.QueryEscape(m.Username), url.QueryEscape(m.Password), m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
}
