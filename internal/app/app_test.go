package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/config"
	"github.com/brianly1003/fuzzy-explorer/internal/history"
	"github.com/brianly1003/fuzzy-explorer/internal/testutil"
)

type nopOpener struct{}

func (nopOpener) OpenExternal(string) error { return nil }
func (nopOpener) ShowInFolder(string) error { return nil }

type memClipboard struct{ text string }

func (c *memClipboard) WriteText(text string) error { c.text = text; return nil }

func newTestApp(t *testing.T, patterns ...string) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	root := t.TempDir()
	testutil.WriteTree(t, root, "a.md", "node_modules/", "node_modules/x.md", "sub/", "sub/b.md", "sub/c.txt")

	writeFile(t, filepath.Join(dir, config.ConfigFileName), "explorer:\n  ignored_names: [node_modules]\n")
	content := ""
	for _, p := range patterns {
		content += "- \"" + filepath.ToSlash(filepath.Join(root, p)) + "\"\n"
	}
	writeFile(t, filepath.Join(dir, config.PatternFileName), content)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	a, err := New(cfg, Options{Version: "test", Opener: nopOpener{}, Clipboard: &memClipboard{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestApp_RebuildEndToEnd(t *testing.T) {
	a, root := newTestApp(t, "**/*.md")
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := a.Index().Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	want := []string{filepath.Join(root, "a.md"), filepath.Join(root, "sub", "b.md")}
	if got := a.Index().Items(); !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}
	if _, err := os.Stat(a.Config().CacheFile()); err != nil {
		t.Errorf("cache file not written: %v", err)
	}

	entries, err := a.History().Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Status != history.StatusSucceeded || entries[0].Items != 2 {
		t.Errorf("history = %+v", entries)
	}
}

func TestApp_StartLoadsPreviousCache(t *testing.T) {
	a, _ := newTestApp(t, "**/*.md")
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Index().Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	_ = a.Close()

	b, err := New(a.Config(), Options{Opener: nopOpener{}, Clipboard: &memClipboard{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if b.Index().Len() != 2 || !b.Index().Pending() {
		t.Errorf("reloaded index: len %d pending %v", b.Index().Len(), b.Index().Pending())
	}
}

func TestApp_StartTwice(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err == nil {
		t.Error("second Start() error = nil, want error")
	}
}

func TestApp_CommandsWired(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	res, err := a.Commands().Dispatch(context.Background(), commands.Status, nil)
	if err != nil {
		t.Fatalf("Dispatch(status) error = %v", err)
	}
	if st := res.(commands.StatusResult); st.Building || st.Items != 0 {
		t.Errorf("status = %+v", st)
	}

	res, err = a.Commands().Dispatch(context.Background(), commands.Edit, nil)
	if err != nil {
		t.Fatalf("Dispatch(edit) error = %v", err)
	}
	if res.(commands.EditResult).Path != a.Config().PatternFile() {
		t.Errorf("edit = %+v", res)
	}
}

func TestApp_HistoryDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ConfigFileName), "history:\n  enabled: false\n")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	a, err := New(cfg, Options{Opener: nopOpener{}, Clipboard: &memClipboard{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()
	if a.History() != nil {
		t.Error("History() != nil with history disabled")
	}
}
