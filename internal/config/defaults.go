package config

// File names inside the config directory.
const (
	ConfigFileName  = "config.yaml"
	PatternFileName = "explorer.yaml"
	CacheDirName    = "compile-cache"
	CacheFileName   = "explorer.json"
	HistoryFileName = "history.db"
)

// Path separator styles applied to copied and inserted paths.
const (
	SeparatorDefault = 0 // native separator
	SeparatorForward = 1
	SeparatorBack    = 2
)

// DefaultIgnoredNames is the global ignore list applied when ignored_names
// is not configured.
var DefaultIgnoredNames = []string{
	".git",
	".hg",
	".svn",
	".DS_Store",
	"Thumbs.db",
}
