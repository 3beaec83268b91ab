// Jackdaw JackTrip Hub
// Copyright (c) 2026 The Jackdaw Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/applebiter/jackdaw

// Package portalloc hands out UDP ports for transport processes from a
// fixed, bounded range.
package portalloc

import (
	"errors"
	"sync"

	"github.com/applebiter/jackdaw/internal/metrics"
)

// ErrExhausted is returned by Acquire when every port in the configured
// range is currently held.
var ErrExhausted = errors.New("portalloc: no ports available in range")

// Allocator hands out ports from [base, base+count) on an ascending scan.
type Allocator struct {
	mu     sync.Mutex
	base   int
	count  int
	taken  map[int]struct{}
	cursor int
}

// New creates an Allocator over the port range [base, base+count).
func New(base, count int) *Allocator {
	return &Allocator{
		base:  base,
		count: count,
		taken: make(map[int]struct{}, count),
	}
}

// Acquire returns the lowest free port in the range. Scanning is O(range)
// and always starts from base, so freed ports are reused before the range
// is extended - the range is small and bounded, not a scale concern.
func (a *Allocator) Acquire() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < a.count; i++ {
		port := a.base + i
		if _, held := a.taken[port]; !held {
			a.taken[port] = struct{}{}
			metrics.PortsAllocated.Set(float64(len(a.taken)))
			return port, nil
		}
	}
	metrics.PortAllocationFailures.Inc()
	return 0, ErrExhausted
}

// Release returns a port to the pool. Releasing a port that is not held
// is a no-op.
func (a *Allocator) Release(port int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.taken, port)
	metrics.PortsAllocated.Set(float64(len(a.taken)))
}

// InUse reports how many ports are currently allocated.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.taken)
}

// Capacity reports the total size of the configured range.
func (a *Allocator) Capacity() int {
	return a.count
}
