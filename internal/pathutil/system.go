package pathutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/rs/zerolog/log"
)

// ErrNoClipboard is returned when no clipboard tool is installed.
var ErrNoClipboard = errors.New("no clipboard command found (tried pbcopy, clip, wl-copy, xclip, xsel)")

// runner starts an external command. Tests replace it.
type runner func(name string, args []string, stdin string) error

func startDetached(name string, args []string, _ string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func runWithInput(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SystemOpener opens paths with the desktop's default handlers.
type SystemOpener struct {
	goos string
	run  runner
}

// NewSystemOpener creates an opener for the running OS.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{goos: runtime.GOOS, run: startDetached}
}

// OpenExternal opens path with its default application.
func (o *SystemOpener) OpenExternal(path string) error {
	switch o.goos {
	case "darwin":
		return o.run("open", []string{path}, "")
	case "windows":
		return o.run("cmd.exe", []string{"/C", "start", "", path}, "")
	default:
		return o.run("xdg-open", []string{path}, "")
	}
}

// ShowInFolder reveals path in the file manager. Where the file manager
// cannot select a file, the containing folder is opened instead.
func (o *SystemOpener) ShowInFolder(path string) error {
	switch o.goos {
	case "darwin":
		return o.run("open", []string{"-R", path}, "")
	case "windows":
		return o.run("explorer.exe", []string{"/select," + path}, "")
	default:
		return o.run("xdg-open", []string{filepath.Dir(path)}, "")
	}
}

// SystemClipboard writes to the OS clipboard through the first available
// clipboard command.
type SystemClipboard struct {
	goos     string
	run      runner
	lookPath func(string) (string, error)
}

// NewSystemClipboard creates a clipboard for the running OS.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{goos: runtime.GOOS, run: runWithInput, lookPath: exec.LookPath}
}

// WriteText replaces the clipboard contents.
func (c *SystemClipboard) WriteText(text string) error {
	var candidates [][]string
	switch c.goos {
	case "darwin":
		candidates = [][]string{{"pbcopy"}}
	case "windows":
		candidates = [][]string{{"clip"}}
	default:
		candidates = [][]string{
			{"wl-copy"},
			{"xclip", "-selection", "clipboard"},
			{"xsel", "--clipboard", "--input"},
		}
	}

	for _, cand := range candidates {
		if _, err := c.lookPath(cand[0]); err != nil {
			continue
		}
		log.Debug().Str("command", cand[0]).Int("bytes", len(text)).Msg("writing clipboard")
		return c.run(cand[0], cand[1:], text)
	}
	return ErrNoClipboard
}

// EditorWorkspace opens files in $VISUAL or $EDITOR, falling back to the
// opener when neither is set. Split directions are ignored.
type EditorWorkspace struct {
	opener ports.Opener
	getenv func(string) string
	run    func(command string) error
}

// NewEditorWorkspace creates a workspace that falls back to opener.
func NewEditorWorkspace(opener ports.Opener) *EditorWorkspace {
	return &EditorWorkspace{
		opener: opener,
		getenv: os.Getenv,
		run: func(command string) error {
			cmd := ShellCommand(command)
			cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
			return cmd.Run()
		},
	}
}

// Open opens path for editing.
func (w *EditorWorkspace) Open(path, split string) error {
	editor := w.getenv("VISUAL")
	if editor == "" {
		editor = w.getenv("EDITOR")
	}
	if editor == "" {
		return w.opener.OpenExternal(path)
	}
	if split != "" {
		log.Debug().Str("split", split).Msg("editor workspace ignores split direction")
	}
	return w.run(editor + " " + ShellQuote(path))
}

var (
	_ ports.Opener    = (*SystemOpener)(nil)
	_ ports.Clipboard = (*SystemClipboard)(nil)
	_ ports.Workspace = (*EditorWorkspace)(nil)
)
