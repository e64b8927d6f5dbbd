// Package glob expands glob patterns against the file system.
package glob

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// Expander runs glob patterns against the file system.
//
// Every expansion is case-sensitive, unsorted, includes dotfiles, returns
// absolute paths and reports directories as well as files. Relative patterns
// are resolved against the expander root.
type Expander struct {
	root string
}

// NewExpander creates an expander. An empty root means the working directory.
func NewExpander(root string) *Expander {
	return &Expander{root: root}
}

// Expand returns the absolute paths matching pattern. A pattern that matches
// nothing, cannot be parsed, or whose base directory cannot be read yields an
// empty slice.
func (e *Expander) Expand(ctx context.Context, pattern string) []string {
	if filepath.Separator == '\\' {
		pattern = strings.ReplaceAll(pattern, `\`, "/")
	}

	base, rel := doublestar.SplitPattern(pattern)
	if base == "" {
		base = "/"
	}
	base = filepath.FromSlash(base)
	if !filepath.IsAbs(base) {
		root, err := e.rootDir()
		if err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("cannot resolve glob root")
			return []string{}
		}
		base = filepath.Join(root, base)
	}

	var paths []string
	err := doublestar.GlobWalk(os.DirFS(base), rel, func(p string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		paths = append(paths, filepath.Join(base, filepath.FromSlash(p)))
		return nil
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("pattern", pattern).
			Str("base", base).
			Msg("glob expansion failed")
		return []string{}
	}

	log.Debug().
		Str("pattern", pattern).
		Int("matches", len(paths)).
		Msg("glob expanded")

	if paths == nil {
		return []string{}
	}
	return paths
}

func (e *Expander) rootDir() (string, error) {
	if e.root != "" {
		return filepath.Abs(e.root)
	}
	return os.Getwd()
}
