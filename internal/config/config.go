// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session token and profile go to
// the credential store.
//
// Sources are layered, later ones winning: built-in defaults, config.json,
// a .env file in the working directory, then EDUAUTISMO_* environment variables.
// Command flags are applied by the caller on top of the returned Config.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"eduautismo/cli/internal/xdg"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EDUAUTISMO_"

// Storage backends accepted by StorageConfig.Backend.
const (
	StorageAuto     = "auto"
	StorageKeychain = "keychain"
	StorageFile     = "file"
	StorageMemory   = "memory"
)

// Broadcast drivers accepted by BroadcastConfig.Driver.
const (
	BroadcastFile  = "file"
	BroadcastRedis = "redis"
	BroadcastNone  = "none"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL         string          `json:"api_url"`
	Locale         string          `json:"locale"`
	LogLevel       string          `json:"log_level"`
	RequestTimeout Duration        `json:"request_timeout"`
	Storage        StorageConfig   `json:"storage"`
	Broadcast      BroadcastConfig `json:"broadcast"`
	Guard          GuardConfig     `json:"guard"`
	Endpoints      Endpoints       `json:"endpoints"`
}

// StorageConfig selects where the session credential is persisted.
type StorageConfig struct {
	Backend string `json:"backend"`
	// FileDir overrides the directory of the encrypted file backend.
	FileDir string `json:"file_dir,omitempty"`
}

// BroadcastConfig selects how session changes propagate to other processes.
type BroadcastConfig struct {
	Driver   string `json:"driver"`
	RedisURL string `json:"redis_url,omitempty"`
	Channel  string `json:"channel,omitempty"`
}

// GuardConfig tunes the route guard.
type GuardConfig struct {
	// PreserveTarget appends ?next=<path> to login redirects.
	PreserveTarget bool `json:"preserve_target"`
}

// Endpoints overrides individual REST paths. Empty fields keep the defaults.
type Endpoints struct {
	Login          string `json:"login,omitempty"`
	Register       string `json:"register,omitempty"`
	ForgotPassword string `json:"forgot_password,omitempty"`
	ResetPassword  string `json:"reset_password,omitempty"`
	Logout         string `json:"logout,omitempty"`
	Me             string `json:"me,omitempty"`
	Health         string `json:"health,omitempty"`
}

// Duration is a time.Duration that reads "10s" style strings or integer seconds from JSON.
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "1m30s" strings or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		d.Duration = v
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		Locale:         "en",
		LogLevel:       "warn",
		RequestTimeout: Duration{10 * time.Second},
		Storage:        StorageConfig{Backend: StorageAuto},
		Broadcast:      BroadcastConfig{Driver: BroadcastFile, Channel: "eduautismo:session"},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. The .env file and
// environment overrides are applied afterwards.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	c, err := LoadFile(p)
	if err != nil {
		return c, err
	}
	// .env is a convenience for local development; its absence is normal.
	_ = godotenv.Load()
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile reads configuration from p on top of the defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

// ApplyEnv overlays EDUAUTISMO_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("API_URL", &c.APIURL)
	str("LOCALE", &c.Locale)
	str("LOG_LEVEL", &c.LogLevel)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_FILE_DIR", &c.Storage.FileDir)
	str("BROADCAST_DRIVER", &c.Broadcast.Driver)
	str("BROADCAST_REDIS_URL", &c.Broadcast.RedisURL)
	str("BROADCAST_CHANNEL", &c.Broadcast.Channel)

	if v, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		c.RequestTimeout = Duration{d}
	}
	if v, ok := lookup(EnvPrefix + "GUARD_PRESERVE_TARGET"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sGUARD_PRESERVE_TARGET: %w", EnvPrefix, err)
		}
		c.Guard.PreserveTarget = b
	}
	return nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is required")
	}
	switch c.Storage.Backend {
	case StorageAuto, StorageKeychain, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Broadcast.Driver {
	case BroadcastFile, BroadcastNone:
	case BroadcastRedis:
		if c.Broadcast.RedisURL == "" {
			return errors.New("broadcast.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown broadcast driver %q", c.Broadcast.Driver)
	}
	if c.RequestTimeout.Duration <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes c to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
