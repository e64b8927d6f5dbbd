// Package indexer builds the explorer index from glob patterns.
package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/ports"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// expansion is what a worker hands back to the accumulating goroutine.
type expansion struct {
	pattern string
	paths   []string
}

// Builder expands all patterns concurrently and merges the results into one
// deduplicated, ignore-filtered, normalized and sorted path list.
//
// A Builder holds no per-build state; callers serialize builds themselves.
type Builder struct {
	expander    ports.Expander
	concurrency int
}

// NewBuilder creates a builder. A concurrency of zero or less means GOMAXPROCS.
func NewBuilder(expander ports.Expander, concurrency int) *Builder {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		expander:    expander,
		concurrency: concurrency,
	}
}

// Build runs one expansion per pattern and returns once every expansion has
// completed. Workers only deliver results; the accumulator is owned by the
// calling goroutine. An empty pattern list returns immediately without
// starting any worker.
func (b *Builder) Build(ctx context.Context, patterns []string, matcher ports.PathMatcher) ([]string, error) {
	if len(patterns) == 0 {
		return []string{}, nil
	}

	results := make(chan expansion, len(patterns))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	// SetLimit makes g.Go block, so tasks are submitted off the accumulating goroutine.
	go func() {
		for _, pattern := range patterns {
			g.Go(func() error {
				results <- expansion{pattern: pattern, paths: b.expand(ctx, pattern)}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	set := make(map[string]struct{})
	ignored := 0
	for res := range results {
		for _, p := range res.paths {
			normalized := filepath.Clean(p)
			if matcher != nil && matcher.IsIgnored(normalized) {
				ignored++
				continue
			}
			set[normalized] = struct{}{}
		}
	}

	// A cancelled context leaves expansions truncated; never hand those out.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build interrupted: %w", err)
	}

	items := make([]string, 0, len(set))
	for p := range set {
		items = append(items, p)
	}
	sort.Strings(items)

	log.Debug().
		Int("patterns", len(patterns)).
		Int("items", len(items)).
		Int("ignored", ignored).
		Msg("index built")

	return items, nil
}

// expand runs a single expansion, turning a panic into an empty result so one
// bad pattern cannot abort the build.
func (b *Builder) expand(ctx context.Context, pattern string) (paths []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("pattern", pattern).
				Str("panic", fmt.Sprint(r)).
				Msg("glob expansion panicked")
			paths = nil
		}
	}()
	return b.expander.Expand(ctx, pattern)
}
