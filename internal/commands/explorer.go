package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brianly1003/fuzzy-explorer/internal/actions"
	"github.com/brianly1003/fuzzy-explorer/internal/config"
	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/explorer"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
)

// Command ids.
const (
	Update         = "fuzzy-explorer:update"
	Items          = "fuzzy-explorer:items"
	Status         = "fuzzy-explorer:status"
	Edit           = "fuzzy-explorer:edit"
	Open           = "select-list:open"
	OpenExternally = "select-list:open-externally"
	ShowInFolder   = "select-list:show-in-folder"
	QueryItem      = "select-list:query-item"
	QuerySelection = "select-list:query-selection"
	ClaudeChat     = "select-list:claude-chat"
	DefaultSlash   = "select-list:default-slash"
	ForwardSlash   = "select-list:forward-slash"
	Backslash      = "select-list:backslash"
	splitPrefix    = "select-list:split-"
	copyPrefix     = "select-list:copy-"
	insertPrefix   = "select-list:insert-"
)

// Index is the part of the explorer index the commands drive.
type Index interface {
	RebuildAsync(ctx context.Context) bool
	GetItems(force bool) ([]string, bool)
	IsBuilding() bool
	Pending() bool
	Len() int
	HelpMarkdown() string
}

// SeparatorSettings reads and persists the separator style.
type SeparatorSettings interface {
	Separator() int
	SetSeparator(style int) error
}

// Deps are the collaborators of the explorer commands. Icons and Hub may be
// nil. Lifetime bounds background rebuilds and defaults to Background.
type Deps struct {
	Index       Index
	Actions     *actions.Runner
	Settings    SeparatorSettings
	Icons       ports.IconProvider
	Hub         ports.EventHub
	PatternFile string
	Lifetime    context.Context
}

// Params is the JSON payload accepted by every command. Fields a command
// does not use are ignored.
type Params struct {
	Item   string        `json:"item,omitempty"`
	Force  bool          `json:"force,omitempty"`
	Icons  bool          `json:"icons,omitempty"`
	Editor *EditorParams `json:"editor,omitempty"`
}

// EditorParams describes the caller's active editor.
type EditorParams struct {
	Path      string `json:"path"`
	Selection string `json:"selection,omitempty"`
}

// Item is a list entry, optionally with icon classes.
type Item struct {
	Path  string   `json:"path"`
	Icons []string `json:"icons,omitempty"`
}

// ItemsResult is returned by fuzzy-explorer:items. Changed is false when the
// list has not changed since the last hand-out.
type ItemsResult struct {
	Changed bool   `json:"changed"`
	Items   []Item `json:"items"`
}

// StatusResult is returned by fuzzy-explorer:status.
type StatusResult struct {
	Building bool   `json:"building"`
	Pending  bool   `json:"pending"`
	Items    int    `json:"items"`
	Help     string `json:"help"`
}

// UpdateResult is returned by fuzzy-explorer:update.
type UpdateResult struct {
	Started bool `json:"started"`
}

// EditResult is returned by fuzzy-explorer:edit.
type EditResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

// PathResult is returned by the copy and insert commands.
type PathResult struct {
	Text     string `json:"text"`
	Inserted bool   `json:"inserted"`
}

// QueryResult is returned by select-list:query-item.
type QueryResult struct {
	Query string `json:"query"`
}

// SeparatorResult is returned by the separator commands.
type SeparatorResult struct {
	Separator int `json:"separator"`
}

// Register registers every explorer command on r.
func Register(r *Registry, d Deps) {
	if d.Lifetime == nil {
		d.Lifetime = context.Background()
	}
	c := &explorerCommands{deps: d}

	r.Register(Update, "Rebuild the index in the background", c.update)
	r.Register(Items, "Get the item list if it changed", c.items)
	r.Register(Status, "Get the index status and help text", c.status)
	r.Register(Edit, "Create the pattern file if missing and return its path", c.edit)

	r.Register(Open, "Open a file, or query a directory's contents", c.open)
	r.Register(OpenExternally, "Open with the default application", c.withItem(d.Actions.OpenExternally))
	r.Register(ShowInFolder, "Reveal in the file manager", c.withItem(d.Actions.ShowInFolder))
	r.Register(QueryItem, "Turn the item into a query", c.queryItem)
	r.Register(QuerySelection, "Use the editor selection as the query", c.querySelection)
	r.Register(ClaudeChat, "Send the item to the chat panel", c.withItem(d.Actions.SendToChat))

	for _, side := range actions.SplitSides {
		r.Register(splitPrefix+side, "Open in a split pane to the "+side, c.split(side))
	}

	rels := []struct {
		rel  actions.PathRel
		desc string
	}{
		{actions.RelAbsolute, "absolute path"},
		{actions.RelEditor, "path relative to the active editor"},
		{actions.RelName, "file name"},
	}
	for _, rel := range rels {
		r.Register(copyPrefix+string(rel.rel), "Copy the "+rel.desc, c.path(actions.OpCopy, rel.rel))
		r.Register(insertPrefix+string(rel.rel), "Insert the "+rel.desc, c.path(actions.OpInsert, rel.rel))
	}

	r.Register(DefaultSlash, "Use the platform path separator", c.separator(config.SeparatorDefault, "default"))
	r.Register(ForwardSlash, "Use forward slashes in paths", c.separator(config.SeparatorForward, "forward slash"))
	r.Register(Backslash, "Use backslashes in paths", c.separator(config.SeparatorBack, "backslash"))
}

type explorerCommands struct {
	deps Deps
}

func decode(params json.RawMessage) (Params, error) {
	var p Params
	if len(params) == 0 || string(params) == "null" {
		return p, nil
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return p, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return p, nil
}

// A rebuild request while building is a no-op, not an error.
func (c *explorerCommands) update(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return UpdateResult{Started: c.deps.Index.RebuildAsync(c.deps.Lifetime)}, nil
}

func (c *explorerCommands) items(_ context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decode(params)
	if err != nil {
		return nil, err
	}

	paths, changed := c.deps.Index.GetItems(p.Force)
	result := ItemsResult{Changed: changed, Items: make([]Item, len(paths))}
	for i, path := range paths {
		result.Items[i].Path = path
		if p.Icons && c.deps.Icons != nil {
			result.Items[i].Icons = c.deps.Icons.IconClassForPath(path)
		}
	}
	return result, nil
}

func (c *explorerCommands) status(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return StatusResult{
		Building: c.deps.Index.IsBuilding(),
		Pending:  c.deps.Index.Pending(),
		Items:    c.deps.Index.Len(),
		Help:     c.deps.Index.HelpMarkdown(),
	}, nil
}

func (c *explorerCommands) edit(_ context.Context, _ json.RawMessage) (interface{}, error) {
	created, err := config.EnsurePatternFile(c.deps.PatternFile)
	if err != nil {
		return nil, err
	}
	return EditResult{Path: c.deps.PatternFile, Created: created}, nil
}

func (c *explorerCommands) open(_ context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decode(params)
	if err != nil {
		return nil, err
	}
	return c.deps.Actions.Open(p.Item)
}

func (c *explorerCommands) queryItem(_ context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decode(params)
	if err != nil {
		return nil, err
	}
	if p.Item == "" {
		return nil, domain.ErrNoItem
	}
	return QueryResult{Query: actions.QueryItem(p.Item)}, nil
}

func (c *explorerCommands) querySelection(_ context.Context, params json.RawMessage) (interface{}, error) {
	p, err := decode(params)
	if err != nil {
		return nil, err
	}
	query, err := c.runner(p).QuerySelection()
	if err != nil {
		return nil, err
	}
	return QueryResult{Query: query}, nil
}

// runner returns the action runner bound to the caller's editor, if given.
func (c *explorerCommands) runner(p Params) *actions.Runner {
	if p.Editor == nil {
		return c.deps.Actions
	}
	return c.deps.Actions.WithEditor(&BufferEditor{path: p.Editor.Path, selection: p.Editor.Selection})
}

func (c *explorerCommands) withItem(fn func(item string) error) HandlerFunc {
	return func(_ context.Context, params json.RawMessage) (interface{}, error) {
		p, err := decode(params)
		if err != nil {
			return nil, err
		}
		return nil, fn(p.Item)
	}
}

func (c *explorerCommands) split(side string) HandlerFunc {
	return func(_ context.Context, params json.RawMessage) (interface{}, error) {
		p, err := decode(params)
		if err != nil {
			return nil, err
		}
		return nil, c.deps.Actions.Split(p.Item, side)
	}
}

func (c *explorerCommands) path(op actions.PathOp, rel actions.PathRel) HandlerFunc {
	return func(_ context.Context, params json.RawMessage) (interface{}, error) {
		p, err := decode(params)
		if err != nil {
			return nil, err
		}

		text, err := c.runner(p).Path(p.Item, op, rel)
		if err != nil {
			return nil, err
		}
		return PathResult{Text: text, Inserted: op == actions.OpInsert}, nil
	}
}

func (c *explorerCommands) separator(style int, name string) HandlerFunc {
	return func(_ context.Context, _ json.RawMessage) (interface{}, error) {
		if err := c.deps.Settings.SetSeparator(style); err != nil {
			return nil, err
		}
		if c.deps.Hub != nil {
			c.deps.Hub.Publish(events.NewNotificationEvent(events.NotificationSuccess,
				"Separator has been changed to "+name, ""))
		}
		return SeparatorResult{Separator: style}, nil
	}
}

// BufferEditor stands in for a remote caller's editor. Inserted text is
// kept so it can be returned to the caller.
type BufferEditor struct {
	mu        sync.Mutex
	path      string
	selection string
	text      []string
}

// NewBufferEditor creates an editor backed by path.
func NewBufferEditor(path string) *BufferEditor {
	return &BufferEditor{path: path}
}

// Path returns the editor's file.
func (e *BufferEditor) Path() string { return e.path }

// InsertText records text.
func (e *BufferEditor) InsertText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = append(e.text, text)
	return nil
}

// SelectedText returns the selection sent by the caller.
func (e *BufferEditor) SelectedText() string { return e.selection }

// Inserted returns the recorded insertions.
func (e *BufferEditor) Inserted() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.text...)
}

var (
	_ Index        = (*explorer.Index)(nil)
	_ ports.Editor = (*BufferEditor)(nil)
)
