// Package config handles configuration management for fuzzy-explorer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FZX_EXPLORER_SEPARATOR.
const EnvPrefix = "FZX"

// Config holds all configuration for the application.
type Config struct {
	// Dir is the config directory the file was loaded from.
	Dir string `mapstructure:"-"`

	IgnoredNames []string       `mapstructure:"ignored_names"`
	Explorer     ExplorerConfig `mapstructure:"explorer"`
	Server       ServerConfig   `mapstructure:"server"`
	Logging      LoggingConfig  `mapstructure:"logging"`
	History      HistoryConfig  `mapstructure:"history"`
}

// ExplorerConfig holds the settings specific to the explorer index.
type ExplorerConfig struct {
	IgnoredNames    []string `mapstructure:"ignored_names"`
	Separator       int      `mapstructure:"separator"`
	MaxResults      int      `mapstructure:"max_results"`
	Concurrency     int      `mapstructure:"concurrency"`
	WatchDebounceMS int      `mapstructure:"watch_debounce_ms"`
	Root            string   `mapstructure:"root"` // base for relative patterns
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HistoryConfig controls the build history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads <dir>/config.yaml, applying defaults and FZX_ environment
// overrides. An empty dir resolves through GetConfigDir. A missing config
// file is not an error.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = GetConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFileName))
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Dir = dir

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ignored_names", DefaultIgnoredNames)

	v.SetDefault("explorer.ignored_names", []string{})
	v.SetDefault("explorer.separator", SeparatorDefault)
	v.SetDefault("explorer.max_results", 50)
	v.SetDefault("explorer.concurrency", 0)
	v.SetDefault("explorer.watch_debounce_ms", 100)
	v.SetDefault("explorer.root", "")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("history.enabled", true)
}

// isNotFound reports a missing config file. viper returns its own error type
// only when searching config paths; with an explicit file it is an fs error.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

// postProcess resolves the pattern root to an absolute path.
func postProcess(cfg *Config) error {
	if cfg.Explorer.Root == "" {
		return nil
	}
	root, err := filepath.Abs(expandHome(cfg.Explorer.Root))
	if err != nil {
		return fmt.Errorf("failed to resolve explorer.root: %w", err)
	}
	cfg.Explorer.Root = root
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// MergedIgnoredNames returns the global ignore names followed by the explorer
// ones.
func (c *Config) MergedIgnoredNames() []string {
	names := make([]string, 0, len(c.IgnoredNames)+len(c.Explorer.IgnoredNames))
	names = append(names, c.IgnoredNames...)
	return append(names, c.Explorer.IgnoredNames...)
}

// WatchDebounce returns the cache watch coalescing window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Explorer.WatchDebounceMS) * time.Millisecond
}

// ConfigFile returns the path of config.yaml.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.Dir, ConfigFileName)
}

// PatternFile returns the path of the user-edited pattern list.
func (c *Config) PatternFile() string {
	return filepath.Join(c.Dir, PatternFileName)
}

// CacheFile returns the path of the index cache.
func (c *Config) CacheFile() string {
	return filepath.Join(c.Dir, CacheDirName, CacheFileName)
}

// HistoryFile returns the path of the build history database.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.Dir, HistoryFileName)
}

// GetConfigDir returns the user config directory for fuzzy-explorer.
// FZX_CONFIG_DIR overrides the default of ~/.fuzzy-explorer.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return filepath.Abs(expandHome(dir))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".fuzzy-explorer"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
