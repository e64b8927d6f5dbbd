// Package explorer owns the in-memory file index: the item list, the pending
// refresh flag and the single in-flight build.
package explorer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/ignore"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options are the collaborators of an Index. Store, Builder and Settings are
// required; the rest may be nil.
type Options struct {
	Store     ports.CacheStore
	Builder   ports.IndexBuilder
	Settings  ports.Settings
	Hub       ports.EventHub
	Recorder  ports.BuildRecorder
	Presenter ports.Presenter
}

// Index is the single holder of the explorer item list.
type Index struct {
	store     ports.CacheStore
	builder   ports.IndexBuilder
	settings  ports.Settings
	hub       ports.EventHub
	recorder  ports.BuildRecorder
	presenter ports.Presenter

	mu       sync.Mutex
	items    []string
	pending  bool
	building bool
	watch    io.Closer
	watchGen uint64 // bumped on every observe and unobserve
	closed   bool

	async sync.WaitGroup
}

// New creates an index. Call Start to load the cache.
func New(opts Options) *Index {
	return &Index{
		store:     opts.Store,
		builder:   opts.Builder,
		settings:  opts.Settings,
		hub:       opts.Hub,
		recorder:  opts.Recorder,
		presenter: opts.Presenter,
		items:     []string{},
	}
}

// Start watches the cache file and adopts its contents if it holds a valid
// list. It never triggers a build.
func (x *Index) Start() error {
	if err := x.observe(); err != nil {
		return err
	}

	if items, ok := x.store.Load(); ok {
		x.mu.Lock()
		x.items = items
		x.pending = true
		x.mu.Unlock()
		log.Info().Int("items", len(items)).Str("cache", x.store.Path()).Msg("index loaded from cache")
	}
	x.notify()
	return nil
}

// Rebuild recomputes the index from the current settings and persists it.
// It returns domain.ErrBuildInProgress, without touching any state, when a
// build is already running, and domain.ErrIndexClosed after Close. If the new list cannot be saved it still
// replaces the in-memory items and the save error is returned.
func (x *Index) Rebuild(ctx context.Context) error {
	if err := x.begin(); err != nil {
		return err
	}
	return x.run(ctx)
}

// RebuildAsync starts a rebuild on a new goroutine. It reports false when a
// build is already in flight or the index is closed. ctx must outlive the
// build.
func (x *Index) RebuildAsync(ctx context.Context) bool {
	if err := x.begin(); err != nil {
		return false
	}

	go func() {
		if err := x.run(ctx); err != nil {
			log.Error().Err(err).Msg("background index build failed")
		}
	}()
	return true
}

// begin claims the build slot. The async counter is taken under the same
// lock that Close uses, so Close never misses a build it has to wait for.
func (x *Index) begin() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return domain.ErrIndexClosed
	}
	if x.building {
		return domain.ErrBuildInProgress
	}
	x.building = true
	x.async.Add(1)
	return nil
}

func (x *Index) run(ctx context.Context) error {
	defer x.async.Done()

	buildID := uuid.NewString()
	started := time.Now()

	x.unobserve()

	matcher := ignore.Compile(x.settings.IgnoredNames())
	patterns := x.settings.Patterns()

	logger := log.With().Str("build_id", buildID).Int("patterns", len(patterns)).Logger()
	logger.Info().Msg("index build started")
	x.publish(events.NewBuildStartedEvent(buildID, len(patterns)))

	items, err := x.builder.Build(ctx, patterns, matcher)
	if err != nil {
		err = fmt.Errorf("build index: %w", err)
		if obsErr := x.observe(); obsErr != nil {
			logger.Warn().Err(obsErr).Msg("failed to re-watch index cache")
		}
		x.finish(ctx, buildID, started, len(patterns), 0, err)
		return err
	}

	x.mu.Lock()
	x.items = items
	x.mu.Unlock()

	var buildErr error
	if err := x.store.Save(items); err != nil {
		buildErr = &domain.BuildError{Stage: "save", Err: err}
	}

	if err := x.observe(); err != nil {
		logger.Warn().Err(err).Msg("failed to re-watch index cache")
	}

	x.mu.Lock()
	x.pending = true
	x.mu.Unlock()

	x.finish(ctx, buildID, started, len(patterns), len(items), buildErr)
	x.notify()
	return buildErr
}

// IsBuilding reports whether a build is in flight.
func (x *Index) IsBuilding() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.building
}

// Pending reports whether items changed since the presenter last took them.
func (x *Index) Pending() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.pending
}

// Items returns a copy of the current item list.
func (x *Index) Items() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.items...)
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.items)
}

// GetItems hands out the item list if it changed since the last call and the
// presenter is visible (or force is set), clearing the pending flag.
func (x *Index) GetItems(force bool) ([]string, bool) {
	visible := force || x.visible()

	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.pending || !visible {
		return nil, false
	}
	x.pending = false
	return append([]string(nil), x.items...), true
}

// Close stops watching the cache file and waits for background builds.
func (x *Index) Close() error {
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()

	x.async.Wait()
	x.unobserve()
	return nil
}

func (x *Index) observe() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}

	x.watchGen++
	gen := x.watchGen
	w, err := x.store.Watch(
		func() { x.onCacheChanged(gen) },
		func() { x.onCacheDeleted(gen) },
	)
	if err != nil {
		return fmt.Errorf("watch index cache: %w", err)
	}
	x.watch = w
	return nil
}

// unobserve closes the watch. Callbacks of the closed watch that are
// already running see a stale generation and do nothing.
func (x *Index) unobserve() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.watchGen++
	if x.watch != nil {
		_ = x.watch.Close()
		x.watch = nil
	}
}

// current reports whether gen is the live watch generation.
func (x *Index) current(gen uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return gen == x.watchGen
}

func (x *Index) onCacheChanged(gen uint64) {
	if !x.current(gen) {
		return
	}
	items, ok := x.store.Load()

	x.mu.Lock()
	if gen != x.watchGen {
		x.mu.Unlock()
		return
	}
	if ok {
		x.items = items
	}
	x.pending = true
	n := len(x.items)
	x.mu.Unlock()

	log.Info().Int("items", n).Bool("loaded", ok).Msg("index cache changed on disk")
	x.publish(events.NewCacheChangedEvent(x.store.Path(), n))
	x.notify()
}

func (x *Index) onCacheDeleted(gen uint64) {
	x.mu.Lock()
	if gen != x.watchGen {
		x.mu.Unlock()
		return
	}
	x.items = []string{}
	x.pending = true
	x.mu.Unlock()

	log.Info().Str("cache", x.store.Path()).Msg("index cache deleted, items cleared")
	x.publish(events.NewCacheDeletedEvent(x.store.Path()))
	x.notify()
}

// notify pushes the refreshed list to a visible presenter. A hidden presenter
// picks it up on the next GetItems(true).
func (x *Index) notify() {
	if !x.visible() {
		return
	}
	items, ok := x.GetItems(false)
	if !ok {
		return
	}
	x.publish(events.NewIndexUpdatedEvent(items, x.HelpMarkdown()))
}

func (x *Index) finish(ctx context.Context, buildID string, started time.Time, patterns, items int, err error) {
	duration := time.Since(started)

	x.mu.Lock()
	x.building = false
	x.mu.Unlock()

	if x.recorder != nil {
		rec := ports.BuildRecord{
			ID:        buildID,
			StartedAt: started,
			Duration:  duration,
			Patterns:  patterns,
			Items:     items,
			Err:       err,
		}
		if recErr := x.recorder.Record(context.WithoutCancel(ctx), rec); recErr != nil {
			log.Warn().Err(recErr).Str("build_id", buildID).Msg("failed to record build")
		}
	}

	if err != nil {
		log.Error().Err(err).Str("build_id", buildID).Dur("duration", duration).Msg("index build failed")
		x.publish(events.NewBuildFailedEvent(buildID, err))
		return
	}

	log.Info().
		Str("build_id", buildID).
		Int("items", items).
		Dur("duration", duration).
		Msg("index build completed")
	x.publish(events.NewBuildCompletedEvent(buildID, items, duration.Milliseconds()))
}

func (x *Index) visible() bool {
	return x.presenter != nil && x.presenter.Visible()
}

func (x *Index) publish(e events.Event) {
	if x.hub != nil {
		x.hub.Publish(e)
	}
}
