// Package pathutil provides path transforms and the OS integrations used by
// explorer actions.
package pathutil

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Separator styles, matching the explorer.separator setting.
const (
	SeparatorDefault = 0
	SeparatorForward = 1
	SeparatorBack    = 2
)

// ApplySeparator rewrites the separators in p. The default style leaves p
// untouched.
func ApplySeparator(p string, style int) string {
	switch style {
	case SeparatorForward:
		return strings.ReplaceAll(p, `\`, "/")
	case SeparatorBack:
		return strings.ReplaceAll(p, "/", `\`)
	default:
		return p
	}
}

// RelativeTo returns item relative to the directory holding file. An empty
// file, or a path on another volume, yields item unchanged.
func RelativeTo(file, item string) string {
	if file == "" {
		return item
	}
	rel, err := filepath.Rel(filepath.Dir(file), item)
	if err != nil {
		return item
	}
	return rel
}

// ShellCommand returns an *exec.Cmd that runs the given command string
// through the platform's default shell.
//
//	Unix/macOS: sh -c "<command>"
//	Windows:    cmd.exe /C "<command>"
func ShellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd.exe", "/C", command)
	}
	return exec.Command("sh", "-c", command)
}

// ShellQuote quotes s as a single shell word for ShellCommand.
func ShellQuote(s string) string {
	if runtime.GOOS == "windows" {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
