package ports

import (
	"context"
	"io"
)

// PathMatcher decides whether an indexed path is excluded.
type PathMatcher interface {
	IsIgnored(path string) bool
}

// Expander expands one glob pattern into absolute paths.
// Failures are reported as an empty result, never as an error.
type Expander interface {
	Expand(ctx context.Context, pattern string) []string
}

// IndexBuilder turns patterns into one deduplicated, filtered, sorted path list.
type IndexBuilder interface {
	Build(ctx context.Context, patterns []string, matcher PathMatcher) ([]string, error)
}

// CacheStore persists the item list and reports external mutation of it.
type CacheStore interface {
	// Path returns the cache file location.
	Path() string

	// Load reads the cache file. ok is false when the file is absent or corrupt.
	Load() (items []string, ok bool)

	// Save writes the full item list, replacing previous contents.
	Save(items []string) error

	// Watch replaces any active watch with a new one.
	Watch(onChange, onDelete func()) (io.Closer, error)
}

// Settings provides the user configuration consumed by a rebuild.
// Implementations re-read their sources on every call.
type Settings interface {
	// IgnoredNames returns the global and package ignore lists, merged.
	IgnoredNames() []string

	// Patterns returns the configured glob patterns.
	Patterns() []string
}

// Presenter is the presentation layer as seen by the index.
type Presenter interface {
	// Visible reports whether the item list is currently shown.
	Visible() bool
}

// BuildRecorder stores a summary of each rebuild.
type BuildRecorder interface {
	Record(ctx context.Context, rec BuildRecord) error
}
