package explorer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

var helpCommands = []struct{ command, action string }{
	{"select-list:open", "Open file"},
	{"select-list:open-externally", "Open externally"},
	{"select-list:show-in-folder", "Show in folder"},
	{"select-list:split-left|right|up|down", "Split pane"},
	{"select-list:copy-a|r|n", "Copy path"},
	{"select-list:insert-a|r|n", "Insert path"},
	{"select-list:query-item", "Query from item"},
	{"select-list:query-selection", "Query from selection"},
	{"select-list:default-slash|forward-slash|backslash", "Set separator"},
	{"select-list:claude-chat", "Attach to claude-chat"},
}

// HelpMarkdown describes the available commands followed by the item count.
func (x *Index) HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for i, c := range helpCommands {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- **%s**: %s", c.command, c.action)
	}
	fmt.Fprintf(&b, "\n\n**%s** files indexed", humanize.Comma(int64(x.Len())))
	return b.String()
}
