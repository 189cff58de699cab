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

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "change-me"
)

type Config struct {
	Environment       string        `yaml:"env"`
	DBDSN             string        `yaml:"db_dsn"`
	HTTPAddr          string        `yaml:"http_addr"`
	JWTSecret         string        `yaml:"jwt_secret"`
	TelegramToken     string        `yaml:"telegram_token"`
	BlobDir           string        `yaml:"blob_dir"`
	MigrationsEnabled bool          `yaml:"migrations_enabled"`
	DBSExpiryCron     string        `yaml:"dbs_expiry_cron"`
	NotifyCron        string        `yaml:"notify_cron"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
}

// Load reads .env (if present), then the environment, then the optional YAML
// file named by CONFIG_FILE. Values in the file override the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment:       getEnv("ENV", EnvDevelopment),
		DBDSN:             os.Getenv("DB_DSN"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		BlobDir:           getEnv("BLOB_DIR", "./data/blobs"),
		MigrationsEnabled: true,
		DBSExpiryCron:     getEnv("DBS_EXPIRY_CRON", "0 3 * * *"),
		NotifyCron:        getEnv("NOTIFY_CRON", "@every 30s"),
		ShutdownTimeout:   10 * time.Second,
		MaxUploadBytes:    5 << 20,
	}

	var err error
	if cfg.MigrationsEnabled, err = getBool("MIGRATIONS_ENABLED", cfg.MigrationsEnabled); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// Validate checks required values. The default JWT secret is only accepted
// in development.
func (c *Config) Validate() error {
	var errs []error

	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required but not set"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.JWTSecret == defaultJWTSecret && !c.IsDevelopment() {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be set outside %s", EnvDevelopment))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// BotEnabled reports whether a Telegram token was configured
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
