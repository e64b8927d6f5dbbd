package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Subscription is an active watch on a cache file.
type Subscription struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	done      chan struct{}
	closeOnce sync.Once
}

// newSubscription watches the parent directory of path, since the file itself
// may not exist yet and is replaced by rename on every save.
func newSubscription(path string, window time.Duration, onChange, onDelete func()) (*Subscription, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	sub := &Subscription{
		path:    path,
		watcher: w,
		done:    make(chan struct{}),
	}
	sub.debouncer = newDebouncer(window, func(_ string, kind changeKind) {
		log.Debug().Str("path", path).Stringer("change", kind).Msg("index cache changed externally")
		switch kind {
		case changeDeleted:
			if onDelete != nil {
				onDelete()
			}
		default:
			if onChange != nil {
				onChange()
			}
		}
	})

	go sub.run()
	return sub, nil
}

func (s *Subscription) run() {
	name := filepath.Base(s.path)
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				s.debouncer.add(name, changeDeleted)
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				s.debouncer.add(name, changeWritten)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", s.path).Msg("cache watcher error")
		}
	}
}

// Close stops the watch. Pending debounced callbacks are dropped.
// Close is safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.debouncer.stop()
		err = s.watcher.Close()
	})
	return err
}

func (s *Subscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
