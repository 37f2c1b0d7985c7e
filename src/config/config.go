package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML file layered between defaults and environment.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	TempDir      string        `koanf:"temp_dir"`
	CORSOrigins  []string      `koanf:"cors_origins"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	URL           string        `koanf:"url"`
	SlowThreshold time.Duration `koanf:"slow_threshold"`
	WatchInterval time.Duration `koanf:"watch_interval"`
	MaxFailures   int           `koanf:"max_failures"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenLifetime time.Duration `koanf:"token_lifetime"`
	BcryptRounds  int           `koanf:"bcrypt_rounds"`
}

type StorageConfig struct {
	Driver      string `koanf:"driver"`
	Root        string `koanf:"root"`
	S3Bucket    string `koanf:"s3_bucket"`
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3PathStyle bool   `koanf:"s3_path_style"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "",
			Port:         3000,
			TempDir:      "./temp",
			CORSOrigins:  []string{"*"},
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			SlowThreshold: 200 * time.Millisecond,
			WatchInterval: 15 * time.Second,
			MaxFailures:   3,
		},
		Auth: AuthConfig{
			TokenLifetime: time.Hour,
			BcryptRounds:  12,
		},
		Storage: StorageConfig{
			Driver:   "fs",
			Root:     "./data",
			S3Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings keeps the variable names the deployment has always used.
var envMappings = map[string]string{
	"host":              "server.host",
	"server_host":       "server.host",
	"port":              "server.port",
	"temp_dir":          "server.temp_dir",
	"cors_origins":      "server.cors_origins",
	"read_timeout":      "server.read_timeout",
	"write_timeout":     "server.write_timeout",
	"database_url":      "database.url",
	"db_slow_threshold": "database.slow_threshold",
	"db_watch_interval": "database.watch_interval",
	"db_max_failures":   "database.max_failures",
	"jwt_secret":        "auth.jwt_secret",
	"token_lifetime":    "auth.token_lifetime",
	"bcrypt_rounds":     "auth.bcrypt_rounds",
	"storage_driver":    "storage.driver",
	"storage_root":      "storage.root",
	"s3_bucket":         "storage.s3_bucket",
	"s3_region":         "storage.s3_region",
	"s3_endpoint":       "storage.s3_endpoint",
	"s3_path_style":     "storage.s3_path_style",
	"log_level":         "log.level",
	"log_format":        "log.format",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unknown variables are dropped so the rest of the environment does not leak into the tree.
	return ""
}

// Load builds the configuration: defaults, optional YAML file, .env, then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// CORS_ORIGINS arrives as a comma separated string.
	if raw, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitList(raw)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Database.URL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s is missing from the environment", strings.Join(missing, ", "))
	}

	switch c.Storage.Driver {
	case "fs", "memory":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Auth.BcryptRounds < 4 || c.Auth.BcryptRounds > 31 {
		return fmt.Errorf("BCRYPT_ROUNDS must be between 4 and 31, got %d", c.Auth.BcryptRounds)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
