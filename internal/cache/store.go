// Package cache persists the explorer index as a JSON array of paths and
// watches the cache file for changes made by other processes.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the coalescing window for cache file events.
const DefaultDebounce = 100 * time.Millisecond

// Store reads, writes and watches one cache file.
type Store struct {
	path     string
	debounce time.Duration

	mu     sync.Mutex
	active *Subscription
}

// New creates a store for the cache file at path. A debounce of zero or less
// uses DefaultDebounce.
func New(path string, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Store{path: path, debounce: debounce}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache file. ok is false when the file is absent, unreadable,
// or does not hold a JSON array of strings.
func (s *Store) Load() ([]string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read index cache")
		}
		return nil, false
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("ignoring malformed index cache")
		return nil, false
	}
	if items == nil {
		log.Warn().Str("path", s.path).Msg("index cache is not an array")
		return nil, false
	}
	return items, true
}

// Save writes items as a JSON array, creating the cache directory if needed.
// The file is replaced atomically so watchers never observe a partial write.
func (s *Store) Save(items []string) error {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode index cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write index cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace index cache: %w", err)
	}

	log.Debug().Str("path", s.path).Int("items", len(items)).Msg("index cache saved")
	return nil
}

// Watch starts watching the cache file, replacing any previous watch.
// onChange runs when the file is created or written, onDelete when it is
// removed or renamed away. Callbacks run on a timer goroutine.
func (s *Store) Watch(onChange, onDelete func()) (io.Closer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		_ = s.active.Close()
		s.active = nil
	}

	sub, err := newSubscription(s.path, s.debounce, onChange, onDelete)
	if err != nil {
		return nil, err
	}
	s.active = sub
	return sub, nil
}

// Unwatch closes the active watch, if any.
func (s *Store) Unwatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		_ = s.active.Close()
		s.active = nil
	}
}

// Watching reports whether a watch is active.
func (s *Store) Watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil && !s.active.closed()
}

var _ ports.CacheStore = (*Store)(nil)
