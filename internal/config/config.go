// Package config loads the client configuration.
//
// Values are layered, lowest priority first: built-in defaults, the TOML
// config file, TODO_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL    = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
	DefaultErrorTTL  = 3 * time.Second
	DefaultTheme     = "classic"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	envPrefix = "TODO"
)

var (
	// ErrNoUser means no user identity is configured.
	ErrNoUser = errors.New("no user id configured: set user_id in the config file or TODO_USER_ID")
	// ErrExists is returned by WriteDefault when the file is already there.
	ErrExists = errors.New("config file already exists")
)

// Config is the effective configuration.
type Config struct {
	APIURL    string        `mapstructure:"api_url"`
	UserID    int           `mapstructure:"user_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ErrorTTL  time.Duration `mapstructure:"error_ttl"`
	Theme     string        `mapstructure:"theme"`
	NoColor   bool          `mapstructure:"no_color"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	LogFile   string        `mapstructure:"log_file"`

	// Path is the config file that was read, empty when none was.
	Path string `mapstructure:"-"`
}

// flagKeys maps config keys to the flag names that may override them.
var flagKeys = map[string]string{
	"api_url":   "api-url",
	"user_id":   "user",
	"timeout":   "timeout",
	"theme":     "theme",
	"no_color":  "no-color",
	"log_level": "log-level",
	"log_file":  "log-file",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Timeout:   DefaultTimeout,
		ErrorTTL:  DefaultErrorTTL,
		Theme:     DefaultTheme,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// DefaultPath returns ~/.config/todo/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".config", "todo", "config.toml"), nil
}

// Load reads the configuration. An explicit path must exist; the default
// path is optional. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("error_ttl", d.ErrorTTL)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("no_color", d.NoColor)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_file", d.LogFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Path = path
	return cfg, nil
}

// Validate checks the settings needed to talk to the service.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is empty")
	}
	if c.UserID <= 0 {
		return ErrNoUser
	}
	if c.Timeout < 0 || c.ErrorTTL < 0 {
		return errors.New("timeout and error_ttl must not be negative")
	}
	return nil
}

// fileLayout is the on-disk TOML shape; durations are written as strings
// like "3s" so they read back through viper's duration hook.
type fileLayout struct {
	APIURL    string `toml:"api_url"`
	UserID    int    `toml:"user_id"`
	Timeout   string `toml:"timeout"`
	ErrorTTL  string `toml:"error_ttl"`
	Theme     string `toml:"theme"`
	NoColor   bool   `toml:"no_color"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(fileLayout{
		APIURL:    cfg.APIURL,
		UserID:    cfg.UserID,
		Timeout:   cfg.Timeout.String(),
		ErrorTTL:  cfg.ErrorTTL.String(),
		Theme:     cfg.Theme,
		NoColor:   cfg.NoColor,
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		LogFile:   cfg.LogFile,
	})
}

// WriteDefault writes cfg to path, creating parent directories. Without
// force an existing file is left alone and ErrExists returned.
func WriteDefault(path string, cfg Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
