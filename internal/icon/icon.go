// Package icon maps index items to presentation icon classes.
package icon

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/brianly1003/fuzzy-explorer/internal/sync"
	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize bounds the number of remembered paths.
const DefaultCacheSize = 10000

// Icon classes.
const (
	ClassDirectory        = "icon-file-directory"
	ClassSymlinkDirectory = "icon-file-symlink-directory"
	ClassSymlinkFile      = "icon-file-symlink-file"
	ClassBook             = "icon-book"
	ClassZip              = "icon-file-zip"
	ClassMedia            = "icon-file-media"
	ClassPDF              = "icon-file-pdf"
	ClassBinary           = "icon-file-binary"
	ClassText             = "icon-file-text"
)

var (
	markdownExtensions = set(".markdown", ".md", ".mdown", ".mkd", ".mkdown", ".rmd", ".ron")

	compressedExtensions = set(".bz2", ".egg", ".epub", ".gem", ".gz", ".jar", ".lz", ".lzma",
		".lzo", ".rar", ".tar", ".tgz", ".war", ".whl", ".xpi", ".xz", ".z", ".zip")

	imageExtensions = set(".gif", ".ico", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp")

	binaryExtensions = set(".ds_store", ".a", ".exe", ".o", ".pyc", ".pyo", ".so", ".woff")
)

func set(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Provider classifies paths by file type and remembers the answer.
// Entries are never invalidated; a path that changes type keeps its first
// class until it is evicted.
type Provider struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewProvider creates a provider caching up to size paths. A size of zero or
// less uses DefaultCacheSize.
func NewProvider(size int) *Provider {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Provider{cache: lru.New(size)}
}

// IconClassForPath returns the icon classes for path.
func (p *Provider) IconClassForPath(path string) []string {
	p.mu.Lock()
	if v, ok := p.cache.Get(path); ok {
		p.mu.Unlock()
		return []string{v.(string)}
	}
	p.mu.Unlock()

	class := Classify(path)

	p.mu.Lock()
	p.cache.Add(path, class)
	p.mu.Unlock()
	return []string{class}
}

// Len returns the number of cached paths.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Len()
}

// Classify returns the icon class for path without caching. Paths that
// cannot be inspected are treated as text files.
func Classify(path string) string {
	info, err := os.Lstat(path)
	if err != nil {
		return ClassText
	}

	if info.IsDir() {
		return ClassDirectory
	}
	if info.Mode()&os.ModeSymlink != 0 {
		if target, err := os.Stat(path); err == nil && target.IsDir() {
			return ClassSymlinkDirectory
		}
		return ClassSymlinkFile
	}

	ext := strings.ToLower(filepath.Ext(path))
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	switch {
	case stem == "readme" && (ext == "" || markdownExtensions[ext]):
		return ClassBook
	case compressedExtensions[ext]:
		return ClassZip
	case imageExtensions[ext]:
		return ClassMedia
	case ext == ".pdf":
		return ClassPDF
	case binaryExtensions[ext]:
		return ClassBinary
	default:
		return ClassText
	}
}

var _ ports.IconProvider = (*Provider)(nil)
