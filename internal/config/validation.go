package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate validates the configuration.
func Validate(cfg *Config) error {
	if err := validateExplorer(&cfg.Explorer); err != nil {
		return err
	}

	if err := validateServer(&cfg.Server); err != nil {
		return err
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	for _, name := range cfg.MergedIgnoredNames() {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("ignored_names contains an empty value")
		}
	}

	return nil
}

func validateExplorer(cfg *ExplorerConfig) error {
	if cfg.Separator < SeparatorDefault || cfg.Separator > SeparatorBack {
		return fmt.Errorf("explorer.separator must be 0 (default), 1 (forward slash) or 2 (backslash)")
	}
	if cfg.MaxResults < 1 {
		return fmt.Errorf("explorer.max_results must be at least 1")
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("explorer.concurrency cannot be negative")
	}
	if cfg.WatchDebounceMS < 0 {
		return fmt.Errorf("explorer.watch_debounce_ms cannot be negative")
	}
	if cfg.WatchDebounceMS > 10000 {
		return fmt.Errorf("explorer.watch_debounce_ms cannot exceed 10000ms")
	}

	// explorer.root is optional; only validate if explicitly configured
	if cfg.Root != "" {
		info, err := os.Stat(cfg.Root)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("explorer.root does not exist: %s", cfg.Root)
			}
			return fmt.Errorf("error accessing explorer.root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("explorer.root is not a directory: %s", cfg.Root)
		}
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.Host == "" {
		return fmt.Errorf("server.host cannot be empty")
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error")
	}
	switch cfg.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}
	return nil
}
