package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/brianly1003/fuzzy-explorer/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

// configCmd displays or manages configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display and manage configuration",
	Long: `Display and manage fuzzy-explorer configuration.

Without subcommands, shows the current effective configuration.

Examples:
  fuzzy-explorer config                          # Show current config
  fuzzy-explorer config init                     # Create config.yaml with defaults
  fuzzy-explorer config path                     # Show file locations
  fuzzy-explorer config get explorer.separator
  fuzzy-explorer config set explorer.separator 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		out, err := yaml.Marshal(configValues(cfg))
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config.yaml with default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config, pattern, cache and history file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by key. Keys use dot notation.

Examples:
  fuzzy-explorer config get server.port
  fuzzy-explorer config get explorer.ignored_names`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by key, keeping the comments in config.yaml.
The file is created if it does not exist. A value that fails validation is
rolled back.

Examples:
  fuzzy-explorer config set explorer.separator 2
  fuzzy-explorer config set logging.level debug
  fuzzy-explorer config set explorer.ignored_names node_modules,dist`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite existing config file")
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return config.GetConfigDir()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path := (&config.Config{Dir: dir}).ConfigFile()

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	cfg := &config.Config{Dir: dir}

	fmt.Printf("Config directory: %s\n", dir)
	for _, f := range []struct{ name, path string }{
		{"config", cfg.ConfigFile()},
		{"patterns", cfg.PatternFile()},
		{"cache", cfg.CacheFile()},
		{"history", cfg.HistoryFile()},
	} {
		exists := "not found"
		if _, err := os.Stat(f.path); err == nil {
			exists = "exists"
		}
		fmt.Printf("  %-9s %s (%s)\n", f.name+":", f.path, exists)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	value, ok := configValues(cfg)[args[0]]
	if !ok {
		return fmt.Errorf("unknown config key: %s", args[0])
	}
	if list, ok := value.([]string); ok {
		value = strings.Join(list, ",")
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	current, ok := configValues(&config.Config{})[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	value, err := parseValue(current, raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	path := (&config.Config{Dir: dir}).ConfigFile()
	previous, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	existed := err == nil

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}
	if _, err := config.Load(dir); err != nil {
		if existed {
			_ = os.WriteFile(path, previous, 0o644)
		} else {
			_ = os.Remove(path)
		}
		return err
	}

	fmt.Printf("Set %s = %s in %s\n", key, raw, path)
	return nil
}

// configValues flattens cfg into its dotted keys.
func configValues(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"ignored_names":              cfg.IgnoredNames,
		"explorer.ignored_names":     cfg.Explorer.IgnoredNames,
		"explorer.separator":         cfg.Explorer.Separator,
		"explorer.max_results":       cfg.Explorer.MaxResults,
		"explorer.concurrency":       cfg.Explorer.Concurrency,
		"explorer.watch_debounce_ms": cfg.Explorer.WatchDebounceMS,
		"explorer.root":              cfg.Explorer.Root,
		"server.host":                cfg.Server.Host,
		"server.port":                cfg.Server.Port,
		"logging.level":              cfg.Logging.Level,
		"logging.format":             cfg.Logging.Format,
		"history.enabled":            cfg.History.Enabled,
	}
}

// parseValue converts raw to the type of like. Lists are comma separated.
func parseValue(like interface{}, raw string) (interface{}, error) {
	switch like.(type) {
	case int:
		return strconv.Atoi(raw)
	case bool:
		return strconv.ParseBool(raw)
	case []string:
		list := []string{}
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		return list, nil
	default:
		return raw, nil
	}
}

const defaultConfig = `# fuzzy-explorer configuration
# Environment overrides use the FZX_ prefix, e.g. FZX_EXPLORER_SEPARATOR=1.

# Names skipped anywhere in a path, matched case-insensitively
ignored_names:
  - ".git"
  - ".hg"
  - ".svn"
  - ".DS_Store"
  - "Thumbs.db"

explorer:
  # Extra names skipped only by the explorer
  ignored_names: []

  # Separator for copied and inserted paths: 0 native, 1 forward, 2 back
  separator: 0

  # Default number of search results
  max_results: 50

  # Patterns expanded in parallel (0 = number of CPUs)
  concurrency: 0

  # Window for coalescing cache file changes (milliseconds)
  watch_debounce_ms: 100

  # Base directory for relative patterns (empty = current directory)
  root: ""

server:
  host: "127.0.0.1"
  port: 8787

logging:
  # debug, info, warn, error
  level: "info"
  # console or json
  format: "console"

history:
  # Record every index build in history.db
  enabled: true
`
