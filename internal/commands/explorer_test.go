package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianly1003/fuzzy-explorer/internal/actions"
	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/testutil"
)

type fakeIndex struct {
	building bool
	pending  bool
	items    []string
	rebuilds int
}

func (f *fakeIndex) RebuildAsync(context.Context) bool {
	if f.building {
		return false
	}
	f.rebuilds++
	return true
}

func (f *fakeIndex) GetItems(force bool) ([]string, bool) {
	if !f.pending {
		return nil, false
	}
	f.pending = false
	return f.items, true
}

func (f *fakeIndex) IsBuilding() bool     { return f.building }
func (f *fakeIndex) Pending() bool        { return f.pending }
func (f *fakeIndex) Len() int             { return len(f.items) }
func (f *fakeIndex) HelpMarkdown() string { return "help" }

type fakeSettings struct{ style int }

func (s *fakeSettings) Separator() int { return s.style }
func (s *fakeSettings) SetSeparator(style int) error {
	s.style = style
	return nil
}

type fakeIcons struct{}

func (fakeIcons) IconClassForPath(string) []string { return []string{"icon-file-text"} }

type nopOpener struct{}

func (nopOpener) OpenExternal(string) error { return nil }
func (nopOpener) ShowInFolder(string) error { return nil }

type nopWorkspace struct{ opened []string }

func (w *nopWorkspace) Open(p, _ string) error { w.opened = append(w.opened, p); return nil }

type memClipboard struct{ text string }

func (c *memClipboard) WriteText(text string) error { c.text = text; return nil }

type fixture struct {
	reg       *Registry
	index     *fakeIndex
	settings  *fakeSettings
	hub       *testutil.MockEventHub
	workspace *nopWorkspace
	clipboard *memClipboard
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reg:       NewRegistry(),
		index:     &fakeIndex{},
		settings:  &fakeSettings{},
		hub:       testutil.NewMockEventHub(),
		workspace: &nopWorkspace{},
		clipboard: &memClipboard{},
		dir:       t.TempDir(),
	}
	runner := actions.NewRunner(actions.Options{
		Opener:    nopOpener{},
		Workspace: f.workspace,
		Clipboard: f.clipboard,
		Separator: f.settings,
		Hub:       f.hub,
	})
	Register(f.reg, Deps{
		Index:       f.index,
		Actions:     runner,
		Settings:    f.settings,
		Icons:       fakeIcons{},
		Hub:         f.hub,
		PatternFile: filepath.Join(f.dir, "explorer.yaml"),
	})
	return f
}

func (f *fixture) dispatch(t *testing.T, id string, params interface{}) (interface{}, error) {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = data
	}
	return f.reg.Dispatch(context.Background(), id, raw)
}

func TestRegister_AllCommandIDs(t *testing.T) {
	f := newFixture(t)
	ids := []string{
		Update, Items, Status, Edit, Open, OpenExternally, ShowInFolder, QueryItem, QuerySelection, ClaudeChat,
		"select-list:split-left", "select-list:split-right", "select-list:split-up", "select-list:split-down",
		"select-list:copy-a", "select-list:copy-r", "select-list:copy-n",
		"select-list:insert-a", "select-list:insert-r", "select-list:insert-n",
		DefaultSlash, ForwardSlash, Backslash,
	}
	for _, id := range ids {
		if !f.reg.Has(id) {
			t.Errorf("command %s not registered", id)
		}
	}
	if len(f.reg.IDs()) != len(ids) {
		t.Errorf("registered %d commands, want %d", len(f.reg.IDs()), len(ids))
	}
}

func TestUpdate_WhileBuildingIsNoop(t *testing.T) {
	f := newFixture(t)

	got, err := f.dispatch(t, Update, nil)
	if err != nil || got != (UpdateResult{Started: true}) {
		t.Fatalf("update = %v, %v", got, err)
	}

	f.index.building = true
	got, err = f.dispatch(t, Update, nil)
	if err != nil {
		t.Fatalf("update while building error = %v", err)
	}
	if got != (UpdateResult{Started: false}) || f.index.rebuilds != 1 {
		t.Errorf("update while building = %v, rebuilds %d", got, f.index.rebuilds)
	}
}

func TestItems(t *testing.T) {
	f := newFixture(t)
	f.index.items = []string{"/r/a.md"}
	f.index.pending = true

	got, err := f.dispatch(t, Items, Params{Icons: true})
	if err != nil {
		t.Fatalf("items error = %v", err)
	}
	res := got.(ItemsResult)
	if !res.Changed || len(res.Items) != 1 || res.Items[0].Path != "/r/a.md" || len(res.Items[0].Icons) != 1 {
		t.Errorf("items = %+v", res)
	}

	got, _ = f.dispatch(t, Items, nil)
	if res := got.(ItemsResult); res.Changed || len(res.Items) != 0 {
		t.Errorf("second items = %+v, want unchanged", res)
	}
}

func TestItems_InvalidPayload(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.Dispatch(context.Background(), Items, json.RawMessage(`{"force":"yes"}`))
	if !errors.Is(err, domain.ErrInvalidPayload) {
		t.Errorf("items error = %v, want ErrInvalidPayload", err)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.index.items = []string{"a", "b"}
	f.index.building = true

	got, err := f.dispatch(t, Status, nil)
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	want := StatusResult{Building: true, Items: 2, Help: "help"}
	if got != want {
		t.Errorf("status = %+v, want %+v", got, want)
	}
}

func TestEdit_CreatesPatternFileOnce(t *testing.T) {
	f := newFixture(t)

	got, err := f.dispatch(t, Edit, nil)
	if err != nil {
		t.Fatalf("edit error = %v", err)
	}
	res := got.(EditResult)
	if !res.Created {
		t.Error("edit did not create the pattern file")
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("pattern file missing: %v", err)
	}

	got, _ = f.dispatch(t, Edit, nil)
	if got.(EditResult).Created {
		t.Error("second edit recreated the pattern file")
	}
}

func TestOpenAndQueryItem(t *testing.T) {
	f := newFixture(t)
	testutil.WriteTree(t, f.dir, "a.txt", "sub/")

	got, err := f.dispatch(t, Open, Params{Item: filepath.Join(f.dir, "sub")})
	if err != nil {
		t.Fatalf("open error = %v", err)
	}
	want := filepath.Join(f.dir, "sub") + string(os.PathSeparator)
	if got.(actions.OpenResult).Query != want {
		t.Errorf("open dir = %+v, want query %q", got, want)
	}

	got, err = f.dispatch(t, QueryItem, Params{Item: "/x"})
	if err != nil || got.(QueryResult).Query != "/x"+string(os.PathSeparator) {
		t.Errorf("query-item = %v, %v", got, err)
	}

	if _, err := f.dispatch(t, QueryItem, nil); !errors.Is(err, domain.ErrNoItem) {
		t.Errorf("query-item without item error = %v, want ErrNoItem", err)
	}
}

func TestQuerySelection(t *testing.T) {
	f := newFixture(t)

	got, err := f.dispatch(t, QuerySelection, Params{
		Editor: &EditorParams{Path: "/proj/a.go", Selection: "lib/scan\nrest"},
	})
	if err != nil || got.(QueryResult).Query != "lib/scan" {
		t.Errorf("query-selection = %v, %v; want lib/scan", got, err)
	}

	if _, err := f.dispatch(t, QuerySelection, nil); !errors.Is(err, domain.ErrNoActiveEditor) {
		t.Errorf("query-selection without editor error = %v, want ErrNoActiveEditor", err)
	}
}

func TestPathCommands(t *testing.T) {
	f := newFixture(t)
	f.settings.style = 1
	item := filepath.FromSlash("/proj/src/a.go")

	got, err := f.dispatch(t, "select-list:copy-n", Params{Item: item})
	if err != nil {
		t.Fatalf("copy-n error = %v", err)
	}
	if got != (PathResult{Text: "a.go"}) || f.clipboard.text != "a.go" {
		t.Errorf("copy-n = %v, clipboard %q", got, f.clipboard.text)
	}

	if _, err := f.dispatch(t, "select-list:insert-r", Params{Item: item}); !errors.Is(err, domain.ErrNoActiveEditor) {
		t.Errorf("insert-r without editor error = %v, want ErrNoActiveEditor", err)
	}

	got, err = f.dispatch(t, "select-list:insert-r", Params{
		Item:   item,
		Editor: &EditorParams{Path: filepath.FromSlash("/proj/README.md")},
	})
	if err != nil {
		t.Fatalf("insert-r error = %v", err)
	}
	if got != (PathResult{Text: "src/a.go", Inserted: true}) {
		t.Errorf("insert-r = %v", got)
	}
}

func TestSplit_RejectsDirectory(t *testing.T) {
	f := newFixture(t)
	testutil.WriteTree(t, f.dir, "sub/")

	_, err := f.dispatch(t, "select-list:split-up", Params{Item: filepath.Join(f.dir, "sub")})
	if !errors.Is(err, domain.ErrIsDirectory) {
		t.Errorf("split-up error = %v, want ErrIsDirectory", err)
	}
	if len(f.workspace.opened) != 0 {
		t.Errorf("opened = %v", f.workspace.opened)
	}
}

func TestSeparatorCommands(t *testing.T) {
	tests := []struct {
		id    string
		style int
		msg   string
	}{
		{ForwardSlash, 1, "Separator has been changed to forward slash"},
		{Backslash, 2, "Separator has been changed to backslash"},
		{DefaultSlash, 0, "Separator has been changed to default"},
	}
	f := newFixture(t)
	for i, tt := range tests {
		got, err := f.dispatch(t, tt.id, nil)
		if err != nil {
			t.Fatalf("%s error = %v", tt.id, err)
		}
		if got != (SeparatorResult{Separator: tt.style}) || f.settings.style != tt.style {
			t.Errorf("%s = %v, style %d", tt.id, got, f.settings.style)
		}

		notes := f.hub.EventsOfType(events.EventTypeNotification)
		if len(notes) != i+1 {
			t.Fatalf("%d notifications, want %d", len(notes), i+1)
		}
		p := notes[i].(*events.BaseEvent).Payload.(events.NotificationPayload)
		if p.Level != events.NotificationSuccess || p.Message != tt.msg {
			t.Errorf("%s notification = %+v", tt.id, p)
		}
	}
}

func TestClaudeChat_Unavailable(t *testing.T) {
	f := newFixture(t)
	if _, err := f.dispatch(t, ClaudeChat, Params{Item: "/a"}); !errors.Is(err, domain.ErrChatUnavailable) {
		t.Errorf("claude-chat error = %v, want ErrChatUnavailable", err)
	}
}
