package ports

import "time"

// BuildRecord summarizes one rebuild.
type BuildRecord struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Patterns  int
	Items     int
	Err       error
}

// IconProvider maps a path to presentation icon classes.
type IconProvider interface {
	IconClassForPath(path string) []string
}

// Opener opens paths outside the host.
type Opener interface {
	// OpenExternal opens the path with the system default application.
	OpenExternal(path string) error

	// ShowInFolder reveals the path in the system file manager.
	ShowInFolder(path string) error
}

// Workspace opens files inside the host.
type Workspace interface {
	// Open opens a file. split is "", "left", "right", "up" or "down".
	Open(path string, split string) error
}

// Editor is the active text editor of the host.
type Editor interface {
	// Path returns the file backing the editor, or "" for an unsaved buffer.
	Path() string

	// InsertText inserts text at the cursor and selects it.
	InsertText(text string) error

	// SelectedText returns the current selection, or "".
	SelectedText() string
}

// EditorProvider returns the active editor, or nil if there is none.
type EditorProvider interface {
	ActiveEditor() Editor
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// FocusContext is handed to a chat panel.
type FocusContext struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
}

// ChatSink receives focus contexts. SetFocusContext reports false when no
// chat panel is active.
type ChatSink interface {
	SetFocusContext(ctx FocusContext) bool
}
