package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Load reads the config file at path (YAML for .yaml/.yml, JSONC otherwise),
// applies environment overrides and fills defaults. A missing file is not an
// error; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		return json.Unmarshal(std, cfg)
	}
}

// LoadDotenv sets variables from a .env file without overriding ones
// already present. A missing file is ignored.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("TASKIFY_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		if cfg.Store.Driver == "" {
			cfg.Store.Driver = DriverMongo
		}
		if cfg.Store.Driver == DriverMongo && cfg.Store.DSN == "" {
			cfg.Store.DSN = v
		}
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Store.Database = v
	}
	if v := os.Getenv("TASKIFY_API_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("TASKIFY_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKIFY_OFFLINE: %w", err)
		}
		cfg.Client.Offline = b
	}
	if v := os.Getenv("TASKIFY_MIRROR"); v != "" {
		cfg.Client.MirrorPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":5000"
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMySQL
	}
	if cfg.Store.DSN == "" {
		switch cfg.Store.Driver {
		case DriverMySQL:
			cfg.Store.DSN = DefaultMySQLDSN
		case DriverSQLite:
			cfg.Store.DSN = "taskify.db"
		case DriverMongo:
			cfg.Store.DSN = "mongodb://localhost:27017"
		}
	}
	if cfg.Store.Database == "" {
		cfg.Store.Database = AppName
	}
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:5000"
	}
	if cfg.Client.Timeout.Duration == 0 {
		cfg.Client.Timeout.Duration = 5 * time.Second
	}
	if cfg.Client.MirrorPath == "" {
		cfg.Client.MirrorPath = DefaultMirrorPath()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
