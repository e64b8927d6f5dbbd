// Package actions implements the per-item operations of the explorer list:
// opening, revealing, path transforms and chat focus.
package actions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/pathutil"
	"github.com/rs/zerolog/log"
)

// Action names used in errors and logs.
const (
	ActionOpen           = "open"
	ActionOpenExternally = "open-externally"
	ActionShowInFolder   = "show-in-folder"
	ActionSplit          = "split"
	ActionPath           = "path"
	ActionChat           = "claude-chat"
	ActionQuerySelection = "query-selection"
)

// PathOp selects what happens to a transformed path.
type PathOp string

const (
	OpCopy   PathOp = "copy"
	OpInsert PathOp = "insert"
)

// PathRel selects how a path is transformed.
type PathRel string

const (
	RelAbsolute PathRel = "a"
	RelEditor   PathRel = "r"
	RelName     PathRel = "n"
)

// Split directions accepted by Split.
var SplitSides = []string{"left", "right", "up", "down"}

// SeparatorSource returns the current separator style.
type SeparatorSource interface {
	Separator() int
}

// Options configures a Runner. Chat, Editors and Hub may be nil.
type Options struct {
	Opener    ports.Opener
	Workspace ports.Workspace
	Editors   ports.EditorProvider
	Clipboard ports.Clipboard
	Chat      ports.ChatSink
	Separator SeparatorSource
	Hub       ports.EventHub
}

// Runner executes item actions. Failures are returned and published as
// notification events.
type Runner struct {
	opts Options
	lstat func(string) (os.FileInfo, error)
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts, lstat: os.Lstat}
}

// OpenResult is the outcome of Open. Query is set instead of opening when
// the item is not a regular file.
type OpenResult struct {
	Opened bool   `json:"opened"`
	Query  string `json:"query,omitempty"`
}

// Open opens a regular file in the workspace. Anything else (directories,
// symlinks) turns into a query that lists the item's contents.
func (r *Runner) Open(item string) (OpenResult, error) {
	if item == "" {
		return OpenResult{}, domain.ErrNoItem
	}

	info, err := r.lstat(item)
	if err != nil {
		return OpenResult{}, r.fail(ActionOpen, item, err)
	}
	if !info.Mode().IsRegular() {
		return OpenResult{Query: QueryItem(item)}, nil
	}

	if err := r.opts.Workspace.Open(item, ""); err != nil {
		return OpenResult{}, r.fail(ActionOpen, item, err)
	}
	return OpenResult{Opened: true}, nil
}

// OpenExternally opens item with the system default application.
func (r *Runner) OpenExternally(item string) error {
	if item == "" {
		return domain.ErrNoItem
	}
	if err := r.opts.Opener.OpenExternal(item); err != nil {
		return r.fail(ActionOpenExternally, item, err)
	}
	return nil
}

// ShowInFolder reveals item in the system file manager.
func (r *Runner) ShowInFolder(item string) error {
	if item == "" {
		return domain.ErrNoItem
	}
	if err := r.opts.Opener.ShowInFolder(item); err != nil {
		return r.fail(ActionShowInFolder, item, err)
	}
	return nil
}

// Split opens a regular file in a split pane on the given side.
func (r *Runner) Split(item, side string) error {
	if item == "" {
		return domain.ErrNoItem
	}

	info, err := r.lstat(item)
	if err != nil {
		return r.fail(ActionSplit, item, err)
	}
	if !info.Mode().IsRegular() {
		return r.fail(ActionSplit, item, domain.ErrIsDirectory)
	}
	if err := r.opts.Workspace.Open(item, side); err != nil {
		return r.fail(ActionSplit, item, err)
	}
	return nil
}

// Path transforms item according to rel and the separator setting, then
// copies it or inserts it into the active editor. It returns the text.
func (r *Runner) Path(item string, op PathOp, rel PathRel) (string, error) {
	if item == "" {
		return "", domain.ErrNoItem
	}

	editor := r.activeEditor()

	var text string
	switch rel {
	case RelAbsolute:
		text = item
	case RelEditor:
		if editor == nil {
			return "", r.fail(ActionPath, "", domain.ErrNoActiveEditor)
		}
		text = pathutil.RelativeTo(editor.Path(), item)
	case RelName:
		text = filepath.Base(item)
	default:
		return "", domain.ErrInvalidPayload
	}

	style := 0
	if r.opts.Separator != nil {
		style = r.opts.Separator.Separator()
	}
	text = pathutil.ApplySeparator(text, style)

	switch op {
	case OpInsert:
		if editor == nil {
			return "", r.fail(ActionPath, "", domain.ErrNoActiveEditor)
		}
		if err := editor.InsertText(text); err != nil {
			return "", r.fail(ActionPath, item, err)
		}
	case OpCopy:
		if err := r.opts.Clipboard.WriteText(text); err != nil {
			return "", r.fail(ActionPath, item, err)
		}
	default:
		return "", domain.ErrInvalidPayload
	}
	return text, nil
}

// SendToChat hands item to the active chat panel. A missing chat service or
// panel is reported as a warning.
func (r *Runner) SendToChat(item string) error {
	if item == "" {
		return domain.ErrNoItem
	}
	if r.opts.Chat == nil {
		return r.warn(ActionChat, item, domain.ErrChatUnavailable)
	}

	ok := r.opts.Chat.SetFocusContext(ports.FocusContext{
		Type:  "paths",
		Paths: []string{item},
		Label: item,
		Icon:  "file",
	})
	if !ok {
		return r.warn(ActionChat, item, domain.ErrNoChatPanel)
	}
	return nil
}

// QuerySelection returns the first line of the active editor's selection,
// for use as the list query.
func (r *Runner) QuerySelection() (string, error) {
	editor := r.activeEditor()
	if editor == nil {
		return "", r.fail(ActionQuerySelection, "", domain.ErrNoActiveEditor)
	}
	text := editor.SelectedText()
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text), nil
}

// QueryItem returns the list query that narrows the list to item's contents.
func QueryItem(item string) string {
	return item + string(os.PathSeparator)
}

func (r *Runner) activeEditor() ports.Editor {
	if r.opts.Editors == nil {
		return nil
	}
	return r.opts.Editors.ActiveEditor()
}

func (r *Runner) fail(action, path string, err error) error {
	return r.report(events.NotificationError, action, path, err)
}

func (r *Runner) warn(action, path string, err error) error {
	return r.report(events.NotificationWarning, action, path, err)
}

func (r *Runner) report(level events.NotificationLevel, action, path string, err error) error {
	actionErr := domain.NewActionError(action, path, err)
	log.Warn().Err(err).Str("action", action).Str("path", path).Msg("action failed")

	if r.opts.Hub != nil {
		// Notifications carry the bare cause; the path goes in the detail.
		msg := err.Error()
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			msg = pathErr.Err.Error()
		}
		r.opts.Hub.Publish(events.NewNotificationEvent(level, capitalize(msg), path))
	}
	return actionErr
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

type staticEditors struct{ editor ports.Editor }

func (s staticEditors) ActiveEditor() ports.Editor { return s.editor }

// WithEditor returns a copy of r whose active editor is ed. A nil ed means
// no editor is active.
func (r *Runner) WithEditor(ed ports.Editor) *Runner {
	opts := r.opts
	opts.Editors = staticEditors{editor: ed}
	return &Runner{opts: opts, lstat: r.lstat}
}
