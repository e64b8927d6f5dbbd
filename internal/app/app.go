// Package app wires the explorer components together.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/actions"
	"github.com/brianly1003/fuzzy-explorer/internal/cache"
	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/config"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/explorer"
	"github.com/brianly1003/fuzzy-explorer/internal/glob"
	"github.com/brianly1003/fuzzy-explorer/internal/history"
	"github.com/brianly1003/fuzzy-explorer/internal/hub"
	"github.com/brianly1003/fuzzy-explorer/internal/icon"
	"github.com/brianly1003/fuzzy-explorer/internal/indexer"
	"github.com/brianly1003/fuzzy-explorer/internal/pathutil"
	"github.com/brianly1003/fuzzy-explorer/internal/server"
	"github.com/brianly1003/fuzzy-explorer/internal/server/websocket"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Options overrides the default collaborators. Zero values select the OS
// integrations.
type Options struct {
	Version   string
	Logger    *slog.Logger
	Opener    ports.Opener
	Workspace ports.Workspace
	Clipboard ports.Clipboard
	Editors   ports.EditorProvider
	Chat      ports.ChatSink
}

// App owns every long-lived component.
type App struct {
	cfg     *config.Config
	version string
	logger  *slog.Logger

	hub      *hub.Hub
	store    *cache.Store
	history  *history.Store
	icons    *icon.Provider
	settings *config.Source
	index    *explorer.Index
	actions  *actions.Runner
	commands *commands.Registry
	events   *websocket.Handler

	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	running bool
}

// New builds the component graph. Nothing runs until Start.
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Opener == nil {
		opts.Opener = pathutil.NewSystemOpener()
	}
	if opts.Workspace == nil {
		opts.Workspace = pathutil.NewEditorWorkspace(opts.Opener)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = pathutil.NewSystemClipboard()
	}

	if err := config.EnsureConfigDir(cfg.Dir); err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		version:  opts.Version,
		logger:   opts.Logger,
		hub:      hub.New(),
		store:    cache.New(cfg.CacheFile(), cfg.WatchDebounce()),
		icons:    icon.NewProvider(0),
		settings: config.NewSource(cfg.Dir),
	}
	a.lifetime, a.cancel = context.WithCancel(context.Background())

	var recorder ports.BuildRecorder
	if cfg.History.Enabled {
		hist, err := history.Open(cfg.HistoryFile())
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.HistoryFile()).Msg("build history disabled")
		} else {
			a.history = hist
			recorder = hist
		}
	}

	a.events = websocket.NewHandler(a.hub, nil, a.logger)

	a.index = explorer.New(explorer.Options{
		Store:     a.store,
		Builder:   indexer.NewBuilder(glob.NewExpander(cfg.Explorer.Root), cfg.Explorer.Concurrency),
		Settings:  a.settings,
		Hub:       a.hub,
		Recorder:  recorder,
		Presenter: a.events,
	})
	a.events.SetStatusProvider(a.index)

	a.actions = actions.NewRunner(actions.Options{
		Opener:    opts.Opener,
		Workspace: opts.Workspace,
		Editors:   opts.Editors,
		Clipboard: opts.Clipboard,
		Chat:      opts.Chat,
		Separator: a.settings,
		Hub:       a.hub,
	})

	a.commands = commands.NewRegistry()
	a.commands.Use(logCommands)
	commands.Register(a.commands, commands.Deps{
		Index:       a.index,
		Actions:     a.actions,
		Settings:    a.settings,
		Icons:       a.icons,
		Hub:         a.hub,
		PatternFile: cfg.PatternFile(),
		Lifetime:    a.lifetime,
	})

	return a, nil
}

// Start starts the event hub and loads the cached index.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return fmt.Errorf("application is already running")
	}

	if err := a.hub.Start(); err != nil {
		return fmt.Errorf("failed to start event hub: %w", err)
	}
	a.hub.Subscribe(hub.NewLogSubscriber("internal-logger", func(event events.Event) {
		log.Debug().
			Str("event_type", string(event.Type())).
			Time("timestamp", event.Timestamp()).
			Msg("event broadcast")
	}))

	if err := a.index.Start(); err != nil {
		_ = a.hub.Stop()
		return fmt.Errorf("failed to start index: %w", err)
	}
	a.running = true
	return nil
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := server.New(server.Options{
		Host:       a.cfg.Server.Host,
		Port:       a.cfg.Server.Port,
		Index:      a.index,
		Commands:   a.commands,
		Events:     a.events,
		MaxResults: a.cfg.Explorer.MaxResults,
		Version:    a.version,
		Logger:     a.logger,
		Lifetime:   a.lifetime,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// Close interrupts background builds and releases every component.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel()
	if a.running {
		a.running = false
		log.Debug().Msg("shutting down")

		if err := a.index.Close(); err != nil {
			log.Error().Err(err).Msg("error closing index")
		}
		if err := a.hub.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping event hub")
		}
	}

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Error().Err(err).Msg("error closing build history")
		}
		a.history = nil
	}
	return nil
}

// Config returns the configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Index returns the explorer index.
func (a *App) Index() *explorer.Index { return a.index }

// Commands returns the command registry.
func (a *App) Commands() *commands.Registry { return a.commands }

// History returns the build history, or nil when it is disabled.
func (a *App) History() *history.Store { return a.history }

// Hub returns the event hub.
func (a *App) Hub() *hub.Hub { return a.hub }

// Lifetime is cancelled by Close.
func (a *App) Lifetime() context.Context { return a.lifetime }

func logCommands(id string, next commands.HandlerFunc) commands.HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		start := time.Now()
		res, err := next(ctx, params)
		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("command", id).Dur("duration", time.Since(start)).Msg("command handled")
		return res, err
	}
}
