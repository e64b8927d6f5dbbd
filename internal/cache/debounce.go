package cache

import (
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/sync"
)

// changeKind is what happened to a watched file.
type changeKind int

const (
	changeWritten changeKind = iota
	changeDeleted
)

func (k changeKind) String() string {
	if k == changeDeleted {
		return "deleted"
	}
	return "written"
}

type pendingChange struct {
	kind  changeKind
	timer *time.Timer
}

// debouncer coalesces bursts of file events per name.
type debouncer struct {
	window   time.Duration
	callback func(name string, kind changeKind)

	mu      sync.Mutex
	pending map[string]*pendingChange
	stopped bool
}

func newDebouncer(window time.Duration, callback func(name string, kind changeKind)) *debouncer {
	return &debouncer{
		window:   window,
		callback: callback,
		pending:  make(map[string]*pendingChange),
	}
}

// add queues a change; the window restarts on every event for the same name.
func (d *debouncer) add(name string, kind changeKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if existing, ok := d.pending[name]; ok {
		existing.timer.Stop()
		existing.kind = mergeChanges(existing.kind, kind)
		existing.timer = time.AfterFunc(d.window, func() { d.fire(name) })
		return
	}

	d.pending[name] = &pendingChange{
		kind:  kind,
		timer: time.AfterFunc(d.window, func() { d.fire(name) }),
	}
}

func (d *debouncer) fire(name string) {
	d.mu.Lock()
	change, ok := d.pending[name]
	if !ok || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, name)
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(name, change.kind)
	}
}

// stop cancels every pending callback. Later adds are dropped.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, change := range d.pending {
		change.timer.Stop()
	}
	d.pending = make(map[string]*pendingChange)
}

// mergeChanges keeps the latest kind: a delete followed by a recreate is a
// write, a write followed by a delete is a delete.
func mergeChanges(_, latest changeKind) changeKind {
	return latest
}
