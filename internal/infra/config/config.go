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

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config aggregates application settings. Values come from an optional YAML
// file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	Env              string          `yaml:"env"`
	LogLevel         string          `yaml:"log_level"`
	HTTPAddr         string          `yaml:"http_addr"`
	StorageDriver    string          `yaml:"storage_driver"`
	MongoURI         string          `yaml:"mongo_uri"`
	MongoDB          string          `yaml:"mongo_db"`
	PostgresDSN      string          `yaml:"postgres_dsn"`
	RedisAddr        string          `yaml:"redis_addr"`
	RedisPassword    string          `yaml:"redis_password"`
	RedisDB          int             `yaml:"redis_db"`
	LockTTL          time.Duration   `yaml:"lock_ttl"`
	LockTimeout      time.Duration   `yaml:"lock_timeout"`
	KafkaBrokers     []string        `yaml:"kafka_brokers"`
	KafkaTopicPrefix string          `yaml:"kafka_topic_prefix"`
	IdempotencyTTL   time.Duration   `yaml:"idempotency_ttl"`
	OutboxPoll       time.Duration   `yaml:"outbox_poll_interval"`
	RetryBackoff     []time.Duration `yaml:"retry_backoff"`
	PropertyCacheTTL time.Duration   `yaml:"property_cache_ttl"`
	JWTSecret        string          `yaml:"jwt_secret"`
	FixturesPath     string          `yaml:"fixtures_path"`
	DefaultCurrency  string          `yaml:"default_currency"`
	CORSOrigins      []string        `yaml:"cors_origins"`
}

func defaults() Config {
	return Config{
		Env:              "dev",
		LogLevel:         "info",
		HTTPAddr:         ":8080",
		StorageDriver:    DriverMemory,
		MongoDB:          "rentbook",
		LockTTL:          30 * time.Second,
		LockTimeout:      5 * time.Second,
		IdempotencyTTL:   168 * time.Hour,
		OutboxPoll:       500 * time.Millisecond,
		RetryBackoff:     []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
		PropertyCacheTTL: time.Minute,
		DefaultCurrency:  "USD",
		CORSOrigins:      []string{"*"},
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile expands ${VAR} references before decoding the YAML.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.KafkaTopicPrefix = getEnv("KAFKA_TOPIC_PREFIX", cfg.KafkaTopicPrefix)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FixturesPath = getEnv("FIXTURES_PATH", cfg.FixturesPath)
	cfg.DefaultCurrency = strings.ToUpper(getEnv("DEFAULT_CURRENCY", cfg.DefaultCurrency))

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"LOCK_TTL", &cfg.LockTTL},
		{"LOCK_TIMEOUT", &cfg.LockTimeout},
		{"IDEMP_TTL", &cfg.IdempotencyTTL},
		{"OUTBOX_POLL_INTERVAL", &cfg.OutboxPoll},
		{"PROPERTY_CACHE_TTL", &cfg.PropertyCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.key, *d.dst); err != nil {
			return err
		}
	}
	if raw := os.Getenv("RETRY_BACKOFF"); raw != "" {
		backoff, err := parseBackoff(raw)
		if err != nil {
			return err
		}
		cfg.RetryBackoff = backoff
	}
	return nil
}

// Validate checks that the selected driver has what it needs.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3-letter code, got %q", c.DefaultCurrency)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBackoff(raw string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range splitList(raw) {
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
