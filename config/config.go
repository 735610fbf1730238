package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment     `koanf:"environment"`
	Server      ServerConfig    `koanf:"server"`
	Database    DatabaseConfig  `koanf:"database"`
	Redis       RedisConfig     `koanf:"redis"`
	Storage     StorageConfig   `koanf:"storage"`
	Auth        AuthConfig      `koanf:"auth"`
	Feed        FeedConfig      `koanf:"feed"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
	Logging     LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig selects and configures the record store
type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=postgres sqlite"`
	Host            string        `koanf:"host" validate:"required_if=Driver postgres"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode         string        `koanf:"ssl_mode"`
	SQLitePath      string        `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrationsDir   string        `koanf:"migrations_dir"`
}

// RedisConfig configures the optional Redis instance. An empty Host and URL
// disables the owner hint cache and rate limiting.
type RedisConfig struct {
	Host         string        `koanf:"host"`
	Port         string        `koanf:"port"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	URL          string        `koanf:"url"`
	OwnerHintTTL time.Duration `koanf:"owner_hint_ttl"`
}

// Enabled reports whether a Redis endpoint was configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

// StorageConfig configures the image blob store
type StorageConfig struct {
	BucketName    string `koanf:"bucket_name"`
	Region        string `koanf:"region"`
	PublicBaseURL string `koanf:"public_base_url"`
	RecipeFolder  string `koanf:"recipe_folder" validate:"required"`
	ProfileFolder string `koanf:"profile_folder" validate:"required"`
}

// AuthConfig configures token issuance
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

// FeedConfig holds the aggregation tunables
type FeedConfig struct {
	RecentLimit     int `koanf:"recent_limit" validate:"gt=0"`
	QuickMaxMinutes int `koanf:"quick_max_minutes" validate:"gt=0"`
	SuggestionLimit int `koanf:"suggestion_limit" validate:"gt=0"`
}

// RateLimitConfig bounds write traffic per user
type RateLimitConfig struct {
	Window time.Duration `koanf:"window"`
	Limit  int           `koanf:"limit" validate:"gte=0"`
}

// LoggingConfig configures the global logger
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ConfigPathEnvVar overrides the location of the optional YAML file
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

// envMappings maps the deployment's environment variable names onto koanf paths
var envMappings = map[string]string{
	"server_port":           "server.port",
	"server_host":           "server.host",
	"cors_origins":          "server.cors_origins",
	"db_driver":             "database.driver",
	"db_host":               "database.host",
	"db_port":               "database.port",
	"db_user":               "database.user",
	"db_password":           "database.password",
	"db_name":               "database.name",
	"db_ssl_mode":           "database.ssl_mode",
	"db_sqlite_path":        "database.sqlite_path",
	"db_max_open_conns":     "database.max_open_conns",
	"migrations_dir":        "database.migrations_dir",
	"redis_host":            "redis.host",
	"redis_port":            "redis.port",
	"redis_password":        "redis.password",
	"redis_url":             "redis.url",
	"redis_owner_hint_ttl":  "redis.owner_hint_ttl",
	"s3_bucket_name":        "storage.bucket_name",
	"aws_region":            "storage.region",
	"s3_public_base_url":    "storage.public_base_url",
	"jwt_secret":            "auth.jwt_secret",
	"jwt_token_ttl":         "auth.token_ttl",
	"feed_recent_limit":     "feed.recent_limit",
	"feed_quick_max_min":    "feed.quick_max_minutes",
	"feed_suggestion_limit": "feed.suggestion_limit",
	"rate_limit_window":     "rate_limit.window",
	"rate_limit_limit":      "rate_limit.limit",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"http://localhost:5173", "http://frontend:5173"},
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "mealshare",
			SSLMode:         "disable",
			SQLitePath:      "mealshare.db",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
			MigrationsDir:   "migrations",
		},
		Redis: RedisConfig{
			OwnerHintTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			BucketName:    "mealshare-images",
			RecipeFolder:  "recipe_images",
			ProfileFolder: "profile_images",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Feed: FeedConfig{
			RecentLimit:     100,
			QuickMaxMinutes: 30,
			SuggestionLimit: 5,
		},
		RateLimit: RateLimitConfig{
			Window: time.Hour,
			Limit:  60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig layers defaults, an optional YAML file, environment variables and
// Docker secrets, then validates the result for the current environment.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.CORSOrigins = trimList(cfg.Server.CORSOrigins)

	cfg.Environment = GetEnvironment()
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform returns "" for variables that do not belong to the application,
// which makes koanf skip them.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applySecrets fills credentials left empty by the environment from Docker secrets
func applySecrets(cfg *Config) {
	if cfg.Database.Password == "" {
		cfg.Database.Password = readSecret("db_password")
	}
	if cfg.Database.User == "" {
		cfg.Database.User = readSecret("db_user")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = readSecret("jwt_secret")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = readSecret("redis_password")
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// trimList drops blanks left by comma-separated env values such as "a, b,"
func trimList(in []string) []string {
	var out []string
	for _, part := range in {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Addr returns the host:port the HTTP server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}
