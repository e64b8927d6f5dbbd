package config

import (
	"fmt"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/rs/zerolog/log"
)

// Source serves the settings a rebuild needs, re-reading config.yaml and the
// pattern file on every call so edits apply without a restart.
type Source struct {
	dir string
}

// NewSource creates a settings source for the resolved config directory dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Config loads the current configuration. An invalid file falls back to the
// defaults so a typo never blocks a rebuild.
func (s *Source) Config() *Config {
	cfg, err := Load(s.dir)
	if err == nil {
		return cfg
	}
	log.Warn().Err(err).Str("dir", s.dir).Msg("invalid config, using defaults")
	return &Config{
		Dir:          s.dir,
		IgnoredNames: append([]string(nil), DefaultIgnoredNames...),
	}
}

// IgnoredNames returns the global and explorer ignore names, merged.
func (s *Source) IgnoredNames() []string {
	return s.Config().MergedIgnoredNames()
}

// Patterns returns the glob patterns from the pattern file.
func (s *Source) Patterns() []string {
	return LoadPatterns((&Config{Dir: s.dir}).PatternFile())
}

// Separator returns the configured separator style.
func (s *Source) Separator() int {
	return s.Config().Explorer.Separator
}

// SetSeparator persists a separator style to config.yaml.
func (s *Source) SetSeparator(style int) error {
	if style < SeparatorDefault || style > SeparatorBack {
		return fmt.Errorf("invalid separator style %d", style)
	}
	return SetValue((&Config{Dir: s.dir}).ConfigFile(), "explorer.separator", style)
}

var _ ports.Settings = (*Source)(nil)
