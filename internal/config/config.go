// Package config loads taskify settings from a config file, the environment
// and .env, and builds the process logger.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskify"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	DefaultMySQLDSN = "root:123456@tcp(127.0.0.1:3306)/taskify?parseTime=true"
)

// Config is the whole file. Server and CLI client read the same one.
type Config struct {
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Client ClientConfig `json:"client" yaml:"client"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

type HTTPConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// StoreConfig selects the persistence backend. DSN is a MySQL DSN, a SQLite
// file path or a MongoDB URI depending on Driver.
type StoreConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	DSN      string `json:"dsn" yaml:"dsn"`
	Database string `json:"database" yaml:"database"`
}

type ClientConfig struct {
	BaseURL    string   `json:"base_url" yaml:"base_url"`
	Timeout    Duration `json:"timeout" yaml:"timeout"`
	Offline    bool     `json:"offline" yaml:"offline"`
	MirrorPath string   `json:"mirror_path" yaml:"mirror_path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Duration reads "5s"-style strings from JSON and YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMySQL, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unknown store driver %q (want mysql|sqlite|mongo)", c.Store.Driver)
	}
	if c.Client.Timeout.Duration <= 0 {
		return fmt.Errorf("client timeout must be positive, got %s", c.Client.Timeout)
	}
	return nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/taskify/config.jsonc, falling
// back to $HOME/.config.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.jsonc")
}

// DefaultMirrorPath is where the offline client keeps its local copy.
func DefaultMirrorPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "mirror.db")
}

func xdgDir(env, fallback string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, fallback, AppName)
}
