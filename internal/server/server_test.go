package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/actions"
	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/server/websocket"
	"github.com/brianly1003/fuzzy-explorer/internal/testutil"
	gws "github.com/gorilla/websocket"
)

type fakeIndex struct {
	items    []string
	pending  bool
	building bool
}

func (f *fakeIndex) RebuildAsync(context.Context) bool { return !f.building }
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
func (f *fakeIndex) Items() []string      { return f.items }

type nopSettings struct{}

func (nopSettings) Separator() int        { return 0 }
func (nopSettings) SetSeparator(int) error { return nil }

type memClipboard struct{ text string }

func (c *memClipboard) WriteText(text string) error { c.text = text; return nil }

type fixture struct {
	server    *Server
	http      *httptest.Server
	index     *fakeIndex
	events    *websocket.Handler
	clipboard *memClipboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		index:     &fakeIndex{items: []string{"/r/readme.md", "/r/src/main.go", "/r/src/util.go"}},
		clipboard: &memClipboard{},
	}
	f.events = websocket.NewHandler(testutil.NewMockEventHub(), f.index, logger)

	reg := commands.NewRegistry()
	commands.Register(reg, commands.Deps{
		Index:       f.index,
		Actions:     actions.NewRunner(actions.Options{Clipboard: f.clipboard}),
		Settings:    nopSettings{},
		PatternFile: filepath.Join(t.TempDir(), "explorer.yaml"),
	})

	f.server = New(Options{
		Index:    f.index,
		Commands: reg,
		Events:   f.events,
		Version:  "test",
		Logger:   logger,
	})
	f.http = httptest.NewServer(f.server.Handler())
	t.Cleanup(func() {
		f.events.Stop()
		f.http.Close()
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("GET /health = %d %s", resp.StatusCode, body)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.index.building = true

	resp, body := f.do(t, http.MethodGet, "/api/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/status = %d %s", resp.StatusCode, body)
	}
	var got StatusResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Building || got.Items != 3 || got.Help != "help" || got.Version != "test" {
		t.Errorf("status = %+v", got)
	}
}

func TestItems_PendingThenUnchanged(t *testing.T) {
	f := newFixture(t)
	f.index.pending = true

	_, body := f.do(t, http.MethodGet, "/api/items?force=1", "")
	var first commands.ItemsResult
	_ = json.Unmarshal(body, &first)
	if !first.Changed || len(first.Items) != 3 {
		t.Errorf("first items = %+v", first)
	}

	_, body = f.do(t, http.MethodGet, "/api/items?force=1", "")
	var second commands.ItemsResult
	_ = json.Unmarshal(body, &second)
	if second.Changed {
		t.Errorf("second items = %+v, want unchanged", second)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/search?q=util&limit=5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/search = %d %s", resp.StatusCode, body)
	}
	var got SearchResponse
	_ = json.Unmarshal(body, &got)
	if len(got.Matches) == 0 || got.Matches[0].Path != "/r/src/util.go" {
		t.Errorf("matches = %+v", got.Matches)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/search?q=x&limit=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestRebuild(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodPost, "/api/rebuild", "")
	if resp.StatusCode != http.StatusAccepted || !strings.Contains(string(body), `"started":true`) {
		t.Errorf("POST /api/rebuild = %d %s", resp.StatusCode, body)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/rebuild", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/rebuild = %d, want 405", resp.StatusCode)
	}
}

func TestCommand(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
		code   string
	}{
		{"copy name", "select-list:copy-n", `{"item":"/r/src/main.go"}`, http.StatusOK, ""},
		{"unknown", "select-list:nope", `{}`, http.StatusNotFound, "UNKNOWN_COMMAND"},
		{"bad json", "select-list:copy-n", `{`, http.StatusBadRequest, "INVALID_PAYLOAD"},
		{"no item", "select-list:copy-n", ``, http.StatusBadRequest, "INVALID_PAYLOAD"},
		{"no editor", "select-list:insert-a", `{"item":"/r/a"}`, http.StatusUnprocessableEntity, "ACTION_FAILED"},
		{"chat unavailable", "select-list:claude-chat", `{"item":"/r/a"}`, http.StatusUnprocessableEntity, "ACTION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, "/api/commands/"+tt.id, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if tt.code != "" && !strings.Contains(string(body), `"code":"`+tt.code+`"`) {
				t.Errorf("body = %s, want code %s", body, tt.code)
			}
		})
	}
	if f.clipboard.text != "main.go" {
		t.Errorf("clipboard = %q, want main.go", f.clipboard.text)
	}
}

func TestListCommands(t *testing.T) {
	f := newFixture(t)
	_, body := f.do(t, http.MethodGet, "/api/commands", "")
	if !strings.Contains(string(body), `"id":"fuzzy-explorer:update"`) {
		t.Errorf("GET /api/commands = %s", body)
	}
}

func TestStreamCommand(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	msg := `{"request_id":"r7","command":"select-list:query-item","params":{"item":"/r/src"}}`
	if err := conn.WriteMessage(gws.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var e struct {
		Event     events.EventType `json:"event"`
		RequestID string           `json:"request_id"`
		Payload   struct {
			Command string            `json:"command"`
			Result  map[string]string `json:"result"`
			Error   string            `json:"error"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if e.Event != events.EventTypeCommandResult || e.RequestID != "r7" || e.Payload.Error != "" {
		t.Errorf("reply = %s", data)
	}
	if !strings.HasPrefix(e.Payload.Result["query"], "/r/src") {
		t.Errorf("query = %q", e.Payload.Result["query"])
	}
}

func TestStartStop(t *testing.T) {
	s := New(Options{
		Host:     "127.0.0.1",
		Port:     0,
		Index:    &fakeIndex{},
		Commands: commands.NewRegistry(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if strings.HasSuffix(s.Addr(), ":0") {
		t.Errorf("Addr() = %s, want bound port", s.Addr())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
