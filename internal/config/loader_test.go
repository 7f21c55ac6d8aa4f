package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "TASKIFY_ADDR", "STORE_DRIVER", "STORE_DSN", "MONGO_URI", "MONGO_DATABASE",
	"TASKIFY_API_URL", "TASKIFY_OFFLINE", "TASKIFY_MIRROR", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":5000" {
		t.Errorf("Addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.Store.Driver != DriverMySQL {
		t.Errorf("Driver: got %q", cfg.Store.Driver)
	}
	if cfg.Store.DSN != DefaultMySQLDSN {
		t.Errorf("DSN: got %q", cfg.Store.DSN)
	}
	if cfg.Client.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout: got %s", cfg.Client.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadJSONC(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.jsonc", `{
  // local dev
  "http": {"addr": "127.0.0.1:9000"},
  "store": {"driver": "sqlite", "dsn": "/tmp/tasks.db",},
  "client": {"timeout": "2s", "offline": true},
  "log": {"level": "debug"},
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "/tmp/tasks.db" {
		t.Errorf("Store: got %+v", cfg.Store)
	}
	if cfg.Client.Timeout.Duration != 2*time.Second || !cfg.Client.Offline {
		t.Errorf("Client: got %+v", cfg.Client)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level: got %q", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
store:
  driver: mongo
  dsn: mongodb://db:27017
  database: todo
client:
  base_url: http://api:5000
  timeout: 750ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Store.Database != "todo" {
		t.Errorf("Store: got %+v", cfg.Store)
	}
	if cfg.Client.BaseURL != "http://api:5000" || cfg.Client.Timeout.Duration != 750*time.Millisecond {
		t.Errorf("Client: got %+v", cfg.Client)
	}
}

func TestLoadBadDuration(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"client": {"timeout": "soon"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("TASKIFY_OFFLINE", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8081" {
		t.Errorf("Addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Store.DSN != "mongodb://mongo:27017" {
		t.Errorf("Store: got %+v", cfg.Store)
	}
	if !cfg.Client.Offline {
		t.Error("expected offline")
	}
}

func TestEnvOfflineInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKIFY_OFFLINE", "maybe")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	path := writeFile(t, ".env", "STORE_DRIVER=mongo\nSTORE_DSN=\"from-dotenv\"\n")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("STORE_DRIVER"); got != "sqlite" {
		t.Errorf("STORE_DRIVER overridden: %q", got)
	}
}

func TestLoadDotenvMissing(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(os.Stderr, LogConfig{Level: "warn", Format: "json"}); err != nil {
		t.Errorf("json: %v", err)
	}
	if _, err := NewLogger(os.Stderr, LogConfig{Level: "loud"}); err == nil {
		t.Error("expected level error")
	}
	if _, err := NewLogger(os.Stderr, LogConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected format error")
	}
}
