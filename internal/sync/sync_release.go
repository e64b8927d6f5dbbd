//go:build !deadlock

// Package sync aliases the lock types used by the index and its collaborators.
// Building with -tags deadlock swaps the mutexes for go-deadlock ones.
package sync

import "sync"

// Mutex is the standard sync.Mutex.
type Mutex = sync.Mutex

// RWMutex is the standard sync.RWMutex.
type RWMutex = sync.RWMutex

// Once is the standard sync.Once.
type Once = sync.Once

// WaitGroup is the standard sync.WaitGroup.
type WaitGroup = sync.WaitGroup

// Enabled reports whether deadlock detection was compiled in.
const Enabled = false
