package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// StorageConfig selects the slot backend: memory, postgres or redis.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	DatabaseURL   string `yaml:"database_url"`
	RedisURL      string `yaml:"redis_url"`
	EncryptionKey string `yaml:"encryption_key"` // base64, 32 bytes once decoded
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
}

type AnalysisConfig struct {
	HostedURL string        `yaml:"hosted_url"`
	OpenAIURL string        `yaml:"openai_url"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, CORSOrigins: []string{"*"}},
		Log:    LogConfig{Level: "info", Format: "json", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Auth: AuthConfig{
			TokenTTL:      24 * time.Hour,
			AdminEmail:    "admin@mindjournal.com",
			AdminPassword: "admin123",
		},
		Analysis: AnalysisConfig{
			HostedURL: "https://toolkit.rork.com/text/llm/",
			OpenAIURL: "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-3.5-turbo",
			Timeout:   30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional yaml file, a .env
// file and the process environment, in that order of precedence (last wins).
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	c := Default()
	paths := []string{"config.yaml", "/etc/mindjournal/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if configFile != "" {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		break
	}

	envOverrideInt(&c.Server.Port, "PORT")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.Format, "LOG_FORMAT")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Storage.Backend, "STORAGE_BACKEND")
	envOverride(&c.Storage.DatabaseURL, "DATABASE_URL")
	envOverride(&c.Storage.RedisURL, "REDIS_URL")
	envOverride(&c.Storage.EncryptionKey, "ENCRYPTION_KEY")
	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverrideDuration(&c.Auth.TokenTTL, "TOKEN_TTL")
	envOverride(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	envOverride(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	envOverride(&c.Analysis.HostedURL, "ANALYSIS_HOSTED_URL")
	envOverride(&c.Analysis.OpenAIURL, "OPENAI_URL")
	envOverride(&c.Analysis.Model, "OPENAI_MODEL")
	envOverrideDuration(&c.Analysis.Timeout, "ANALYSIS_TIMEOUT")

	return c, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
