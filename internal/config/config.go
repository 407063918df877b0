// Package config loads settings from defaults, the profile's config.toml,
// TODO_* environment variables and command-line flags, in rising priority.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperr "github.com/idilsaglam/todo/internal/errors"
)

const (
	EnvPrefix      = "TODO"
	ConfigFileName = "config.toml"
	DefaultDirName = ".todo"
)

// Config holds the full configuration.
type Config struct {
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	UI      UIConfig      `toml:"ui" mapstructure:"ui"`

	// ConfigFile is where the settings were read from; empty when none was found.
	ConfigFile string `toml:"-" mapstructure:"-"`
}

// StorageConfig selects the durable key-value backend.
type StorageConfig struct {
	Backend      string        `toml:"backend" mapstructure:"backend"`
	Dir          string        `toml:"dir" mapstructure:"dir"`
	File         string        `toml:"file" mapstructure:"file"`
	SQLiteFile   string        `toml:"sqlite_file" mapstructure:"sqlite_file"`
	LockTimeout  time.Duration `toml:"lock_timeout" mapstructure:"lock_timeout"`
	SyncRetries  uint64        `toml:"sync_retries" mapstructure:"sync_retries"`
	SyncTimeout  time.Duration `toml:"sync_timeout" mapstructure:"sync_timeout"`
	RetryBackoff time.Duration `toml:"retry_backoff" mapstructure:"retry_backoff"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// UIConfig controls rendering.
type UIConfig struct {
	Theme         string        `toml:"theme" mapstructure:"theme"`
	Group         bool          `toml:"group" mapstructure:"group"`
	DeleteDelay   time.Duration `toml:"delete_delay" mapstructure:"delete_delay"`
	ToastDuration time.Duration `toml:"toast_duration" mapstructure:"toast_duration"`
}

// DefaultDir is ~/.todo, or ./.todo when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:      "file",
			Dir:          DefaultDir(),
			File:         "storage.json",
			SQLiteFile:   "storage.db",
			LockTimeout:  5 * time.Second,
			SyncRetries:  3,
			SyncTimeout:  2 * time.Second,
			RetryBackoff: 50 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			Theme:         "classic",
			DeleteDelay:   300 * time.Millisecond,
			ToastDuration: 2 * time.Second,
		},
	}
}

// FlagBindings maps config keys to the persistent flag names that override them.
var FlagBindings = map[string]string{
	"storage.backend": "backend",
	"storage.dir":     "dir",
	"log.level":       "log-level",
	"ui.theme":        "theme",
	"ui.group":        "group",
}

// Load resolves the configuration. configFile may be empty, in which case
// config.toml is looked up in $TODO_STORAGE_DIR or the default directory and
// silently skipped when missing. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, apperr.NewConfigError("bind flag "+name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.NewConfigError("read "+configFile, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(expandHome(v.GetString("storage.dir")))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, apperr.NewConfigError("read config", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperr.NewConfigError("decode config", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.file", d.Storage.File)
	v.SetDefault("storage.sqlite_file", d.Storage.SQLiteFile)
	v.SetDefault("storage.lock_timeout", d.Storage.LockTimeout)
	v.SetDefault("storage.sync_retries", d.Storage.SyncRetries)
	v.SetDefault("storage.sync_timeout", d.Storage.SyncTimeout)
	v.SetDefault("storage.retry_backoff", d.Storage.RetryBackoff)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.group", d.UI.Group)
	v.SetDefault("ui.delete_delay", d.UI.DeleteDelay)
	v.SetDefault("ui.toast_duration", d.UI.ToastDuration)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return apperr.NewConfigError(
			fmt.Sprintf("storage.backend must be file, sqlite or memory, got %q", c.Storage.Backend), nil).
			WithContext("key", "storage.backend")
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return apperr.NewConfigError("storage.dir is empty", nil).WithContext("key", "storage.dir")
	}
	if c.UI.DeleteDelay < 0 || c.UI.ToastDuration < 0 {
		return apperr.NewConfigError("ui durations must not be negative", nil)
	}
	return nil
}

// Path returns the default config file location for this configuration.
func (c *Config) Path() string {
	return filepath.Join(c.Storage.Dir, ConfigFileName)
}

// fileConfig is the on-disk shape: durations are written as "300ms" strings,
// which viper decodes back into time.Duration.
type fileConfig struct {
	Storage struct {
		Backend      string `toml:"backend"`
		Dir          string `toml:"dir"`
		File         string `toml:"file"`
		SQLiteFile   string `toml:"sqlite_file"`
		LockTimeout  string `toml:"lock_timeout"`
		SyncRetries  uint64 `toml:"sync_retries"`
		SyncTimeout  string `toml:"sync_timeout"`
		RetryBackoff string `toml:"retry_backoff"`
	} `toml:"storage"`
	Log LogConfig `toml:"log"`
	UI  struct {
		Theme         string `toml:"theme"`
		Group         bool   `toml:"group"`
		DeleteDelay   string `toml:"delete_delay"`
		ToastDuration string `toml:"toast_duration"`
	} `toml:"ui"`
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var f fileConfig
	f.Storage.Backend = c.Storage.Backend
	f.Storage.Dir = c.Storage.Dir
	f.Storage.File = c.Storage.File
	f.Storage.SQLiteFile = c.Storage.SQLiteFile
	f.Storage.LockTimeout = c.Storage.LockTimeout.String()
	f.Storage.SyncRetries = c.Storage.SyncRetries
	f.Storage.SyncTimeout = c.Storage.SyncTimeout.String()
	f.Storage.RetryBackoff = c.Storage.RetryBackoff.String()
	f.Log = c.Log
	f.UI.Theme = c.UI.Theme
	f.UI.Group = c.UI.Group
	f.UI.DeleteDelay = c.UI.DeleteDelay.String()
	f.UI.ToastDuration = c.UI.ToastDuration.String()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("toml encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes c to path. An existing file is kept unless force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	b, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
