package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "compile-cache", "explorer.json"), 20*time.Millisecond)
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	items := []string{"/r/a.md", "/r/sub/c <&>.md", "/r/ü.txt"}

	if err := s.Save(items); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok := s.Load()
	if !ok {
		t.Fatal("Load() ok = false, want true")
	}
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("Load() = %v, want %v", got, items)
	}
}

func TestStore_SaveEmptyList(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("cache = %q, want []", data)
	}
	got, ok := s.Load()
	if !ok || len(got) != 0 {
		t.Fatalf("Load() = %v, %v; want empty, true", got, ok)
	}
}

func TestStore_SaveCreatesDirectoryAndLeavesNoTemp(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save([]string{"/a"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save([]string{"/b"}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "explorer.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("cache dir = %v, want [explorer.json]", names)
	}
}

func TestStore_SaveFailsWhenDirIsAFile(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "compile-cache")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(filepath.Join(blocker, "explorer.json"), 0)

	if err := s.Save([]string{"/a"}); err == nil {
		t.Fatal("Save() error = nil, want error")
	}
}

func TestStore_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{oops"},
		{"object", `{"a": 1}`},
		{"null", "null"},
		{"numbers", "[1, 2]"},
		{"mixed", `["/a", 3]`},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(s.Path(), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if items, ok := s.Load(); ok {
				t.Fatalf("Load() = %v, true; want false", items)
			}
		})
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	s := newTestStore(t)
	if items, ok := s.Load(); ok || items != nil {
		t.Fatalf("Load() = %v, %v; want nil, false", items, ok)
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	s := New("/tmp/x.json", 0)
	if s.debounce != DefaultDebounce {
		t.Fatalf("debounce = %v, want %v", s.debounce, DefaultDebounce)
	}
}
