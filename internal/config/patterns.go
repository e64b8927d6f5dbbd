package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// PatternTemplate is written by EnsurePatternFile for a new pattern file.
const PatternTemplate = `# Glob patterns to index, one list entry per line.
# Relative patterns are resolved against explorer.root.
#
# - "C:/Projects/**/*.js"
# - "~/notes/**/*.md"
`

// LoadPatterns reads the pattern list at path. Duplicates, empty entries and
// non-string entries are dropped. A missing or malformed file yields an
// empty list.
func LoadPatterns(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("failed to read pattern file")
		}
		return []string{}
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("malformed pattern file")
		return []string{}
	}
	if raw == nil {
		return []string{}
	}

	list, ok := raw.([]interface{})
	if !ok {
		log.Warn().Str("path", path).Msg("pattern file is not a list")
		return []string{}
	}

	seen := make(map[string]struct{}, len(list))
	patterns := make([]string, 0, len(list))
	for _, entry := range list {
		s, ok := entry.(string)
		if !ok || s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		patterns = append(patterns, expandHome(s))
	}
	return patterns
}

// EnsurePatternFile creates the pattern file from PatternTemplate if it does
// not exist. It reports whether the file was created.
func EnsurePatternFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat pattern file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(PatternTemplate), 0o644); err != nil {
		return false, fmt.Errorf("failed to write pattern file: %w", err)
	}
	return true, nil
}
