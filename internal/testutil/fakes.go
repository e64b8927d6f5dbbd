package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
)

// FakeExpander returns canned paths per pattern and counts calls.
type FakeExpander struct {
	mu      sync.Mutex
	paths   map[string][]string
	calls   map[string]int
	panics  map[string]bool
	release chan struct{}
	entered chan string
}

// NewFakeExpander creates an expander that answers from paths.
func NewFakeExpander(paths map[string][]string) *FakeExpander {
	return &FakeExpander{
		paths:  paths,
		calls:  make(map[string]int),
		panics: make(map[string]bool),
	}
}

// PanicOn makes Expand panic for pattern.
func (f *FakeExpander) PanicOn(pattern string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics[pattern] = true
}

// Block makes every Expand wait until Release is called. Each blocked call
// reports its pattern on the returned channel first.
func (f *FakeExpander) Block() <-chan string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.release = make(chan struct{})
	f.entered = make(chan string, 64)
	return f.entered
}

// Release unblocks all pending and future Expand calls.
func (f *FakeExpander) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.release != nil {
		close(f.release)
		f.release = nil
	}
}

// SetPaths replaces the canned result for pattern.
func (f *FakeExpander) SetPaths(pattern string, paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[pattern] = paths
}

// Expand implements ports.Expander.
func (f *FakeExpander) Expand(ctx context.Context, pattern string) []string {
	f.mu.Lock()
	f.calls[pattern]++
	release, entered := f.release, f.entered
	shouldPanic := f.panics[pattern]
	paths := append([]string(nil), f.paths[pattern]...)
	f.mu.Unlock()

	if release != nil {
		entered <- pattern
		select {
		case <-release:
		case <-ctx.Done():
			return []string{}
		}
	}
	if shouldPanic {
		panic("expansion failed: " + pattern)
	}
	return paths
}

// Calls returns the total number of Expand calls.
func (f *FakeExpander) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

var _ ports.Expander = (*FakeExpander)(nil)

// StaticSettings is a mutable in-memory ports.Settings.
type StaticSettings struct {
	mu       sync.Mutex
	ignored  []string
	patterns []string
}

// NewStaticSettings creates settings with the given lists.
func NewStaticSettings(ignored, patterns []string) *StaticSettings {
	return &StaticSettings{ignored: ignored, patterns: patterns}
}

// IgnoredNames implements ports.Settings.
func (s *StaticSettings) IgnoredNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ignored...)
}

// Patterns implements ports.Settings.
func (s *StaticSettings) Patterns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.patterns...)
}

// SetPatterns replaces the pattern list.
func (s *StaticSettings) SetPatterns(patterns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = patterns
}

var _ ports.Settings = (*StaticSettings)(nil)

// FakePresenter reports a settable visibility.
type FakePresenter struct {
	mu      sync.Mutex
	visible bool
}

// Visible implements ports.Presenter.
func (p *FakePresenter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// SetVisible changes the reported visibility.
func (p *FakePresenter) SetVisible(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = v
}

var _ ports.Presenter = (*FakePresenter)(nil)

// MemoryRecorder keeps build records in memory.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []ports.BuildRecord
}

// Record implements ports.BuildRecorder.
func (r *MemoryRecorder) Record(_ context.Context, rec ports.BuildRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Records returns a copy of the stored records.
func (r *MemoryRecorder) Records() []ports.BuildRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.BuildRecord(nil), r.records...)
}

var _ ports.BuildRecorder = (*MemoryRecorder)(nil)

// WriteTree creates files (and their parent directories) under root.
// Names ending in "/" create empty directories.
func WriteTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", p, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}
