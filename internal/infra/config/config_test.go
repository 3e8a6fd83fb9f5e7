package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != DriverMemory || cfg.HTTPAddr != ":8080" || cfg.DefaultCurrency != "USD" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.RetryBackoff, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}) {
		t.Fatalf("unexpected backoff %v", cfg.RetryBackoff)
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "rentbook.yaml")
	content := "storage_driver: postgres\npostgres_dsn: ${TEST_PG_DSN}\nhttp_addr: \":9000\"\nkafka_brokers: [\"k1:9092\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_PG_DSN", "postgres://localhost/rentbook")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != DriverPostgres || cfg.PostgresDSN != "postgres://localhost/rentbook" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Fatalf("env should win over file, got %q", cfg.HTTPAddr)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092"}) {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if !reflect.DeepEqual(cfg.RetryBackoff, []time.Duration{2 * time.Second, 10 * time.Second}) {
		t.Fatalf("backoff = %v", cfg.RetryBackoff)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":    {"STORAGE_DRIVER": "sqlite"},
		"mongo without uri": {"STORAGE_DRIVER": "mongo", "MONGO_URI": ""},
		"bad duration":      {"LOCK_TTL": "soon"},
		"bad backoff":       {"RETRY_BACKOFF": "1s,x"},
		"bad currency":      {"DEFAULT_CURRENCY": "EURO"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("CONFIG_FILE", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
