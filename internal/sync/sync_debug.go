//go:build deadlock

// Package sync aliases the lock types used by the index and its collaborators.
// Building with -tags deadlock swaps the mutexes for go-deadlock ones.
package sync

import (
	"os"
	"sync"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex reports lock waits longer than the deadlock timeout.
type Mutex = deadlock.Mutex

// RWMutex reports lock waits longer than the deadlock timeout.
type RWMutex = deadlock.RWMutex

// Once is the standard sync.Once.
type Once = sync.Once

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// Enabled reports whether deadlock detection was compiled in.
const Enabled = true

func init() {
	// Index locks are never held across a glob walk.
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
	if v := os.Getenv("FZX_DEADLOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			deadlock.Opts.DeadlockTimeout = d
		}
	}

	if os.Getenv("FZX_NO_DEADLOCK_DETECT") != "" {
		deadlock.Opts.Disable = true
		return
	}

	deadlock.Opts.PrintAllCurrentGoroutines = true
	println("[DEADLOCK DETECTION ENABLED] index locks use go-deadlock")
}
