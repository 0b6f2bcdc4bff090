// Package config loads the CLI configuration from config.yaml and SUPERNOVA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "SUPERNOVA"

// EnvConfigDir names the environment variable overriding the config directory.
const EnvConfigDir = "SUPERNOVA_CONFIG_DIR"

// Default configuration values.
const (
	DefaultEnvironment = "production"
	DefaultLogLevel    = "info"
	DefaultLogFile     = "~/.config/supernova/supernova.log"
	DefaultConcurrency = 4
	DefaultRateLimit   = 10.0
)

// Config is the typed CLI configuration. Command-line flags override it.
type Config struct {
	APIKey      string `mapstructure:"api_key"`
	Environment string `mapstructure:"environment"`
	// APIURL overrides the base URL derived from Environment.
	APIURL   string `mapstructure:"api_url"`
	LogLevel string `mapstructure:"log_level"`
	// LogFile is the rotating JSON log file. Empty disables file logging.
	LogFile string `mapstructure:"log_file"`
	// Concurrency bounds how many output files are resolved at once.
	Concurrency int `mapstructure:"concurrency"`
	// RateLimit is the maximum number of API requests per second; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	// ProxyURL routes API calls and remote downloads through a proxy. Empty
	// falls back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	ProxyURL string `mapstructure:"proxy_url"`
}

// Default returns the configuration used when no file or variable sets a key.
func Default() Config {
	return Config{
		Environment: DefaultEnvironment,
		LogLevel:    DefaultLogLevel,
		LogFile:     DefaultLogFile,
		Concurrency: DefaultConcurrency,
		RateLimit:   DefaultRateLimit,
	}
}

// Load reads config.yaml from the first directory that has one, in order:
//  1. $SUPERNOVA_CONFIG_DIR
//  2. ~/.config/supernova
//  3. the current working directory
//
// A missing file is not an error; defaults and environment variables apply.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		v.AddConfigPath(dir)
	}
	if dir := Dir(); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath reads configuration from a specific file. The file must exist.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(ExpandHome(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Dir returns the default config directory, or "" when the home directory is
// unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "supernova")
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	// api_key, api_url and proxy_url have no default but must be known keys for
	// AutomaticEnv to apply during Unmarshal.
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("environment", d.Environment)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("proxy_url", d.ProxyURL)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogFile = ExpandHome(cfg.LogFile)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandHome expands a leading "~" or "~/" to the user's home directory. Other
// paths, including "~user", are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' && path[1] != filepath.Separator {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}
