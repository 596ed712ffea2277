// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"fmt"
	"iter"
	"math"
	"sync"
	"sync/atomic"
)

// Pool is an append-only arena of resources keyed by descriptor.
//
// A Pool memoizes resource creation: the first GetOrCreate for a descriptor
// runs the create function and stores the result, later calls with an equal
// descriptor return the same Handle without creating anything. Entries are
// never removed; a Pool lives as long as the registry that owns it.
//
// Thread Safety:
// Pool is safe for concurrent use. Lookups take a read lock; creation holds
// the write lock for the whole create call, so creations in one pool are
// serialized. The create function must not call back into the same pool.
//
// Usage:
//
//	pool := cache.New[ShaderDesc, *Shader]("shaders")
//	h, err := pool.GetOrCreate(desc, compile)
//	if err != nil {
//	    // handle error
//	}
//	shader := pool.Get(h)
type Pool[D comparable, R any] struct {
	name string
	id   uint32

	// mu protects resources and lookup.
	mu sync.RWMutex

	// resources is the arena, indexed by Handle.index.
	resources []R

	// lookup maps every descriptor to its arena slot. It has exactly one
	// entry per element of resources.
	lookup map[D]Handle[R]

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
}

// Stats is a snapshot of pool counters.
type Stats struct {
	// Entries is the number of resources in the pool.
	Entries int

	// Hits counts GetOrCreate calls answered from the pool.
	Hits uint64

	// Misses counts successful creations.
	Misses uint64

	// Failures counts create calls that returned an error.
	Failures uint64
}

// New creates an empty pool. The name appears in logs and errors.
func New[D comparable, R any](name string) *Pool[D, R] {
	return &Pool[D, R]{
		name:   name,
		id:     nextPoolID(),
		lookup: make(map[D]Handle[R]),
	}
}

// Name returns the pool name.
func (p *Pool[D, R]) Name() string {
	return p.name
}

// GetOrCreate returns the handle for desc, creating the resource on a miss.
//
// On a hit create is not called. On a miss create is called exactly once;
// if it fails nothing is recorded, so a later call with the same descriptor
// tries again from scratch. The error is returned wrapped with the pool
// name and keeps its chain for errors.Is and errors.As.
func (p *Pool[D, R]) GetOrCreate(desc D, create func(D) (R, error)) (Handle[R], error) {
	// Fast path: read lock
	p.mu.RLock()
	if h, ok := p.lookup[desc]; ok {
		p.mu.RUnlock()
		p.hits.Add(1)
		return h, nil
	}
	p.mu.RUnlock()

	// Slow path: write lock with double-check
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.lookup[desc]; ok {
		p.hits.Add(1)
		return h, nil
	}

	if uint64(len(p.resources)) >= math.MaxUint32 {
		return Handle[R]{}, fmt.Errorf("%s: pool is full", p.name)
	}

	res, err := create(desc)
	if err != nil {
		p.failures.Add(1)
		slogger().Warn("cache: create failed", "pool", p.name, "err", err)
		return Handle[R]{}, fmt.Errorf("%s: %w", p.name, err)
	}

	h := Handle[R]{pool: p.id, index: uint32(len(p.resources))} //nolint:gosec // bounded above
	p.resources = append(p.resources, res)
	p.lookup[desc] = h
	p.misses.Add(1)

	slogger().Debug("cache: created", "pool", p.name, "handle", h.String(), "entries", len(p.resources))
	return h, nil
}

// Lookup returns the handle for desc if the resource already exists.
// It never creates anything and does not touch the hit counter.
func (p *Pool[D, R]) Lookup(desc D) (Handle[R], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h, ok := p.lookup[desc]
	return h, ok
}

// Get returns the resource for a handle issued by this pool.
//
// Get panics with *InvalidHandleError if h is the zero handle, was issued by
// a different pool, or does not refer to a populated slot.
func (p *Pool[D, R]) Get(h Handle[R]) R {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case h.IsZero():
		panic(p.invalid(h, "zero handle"))
	case h.pool != p.id:
		panic(p.invalid(h, "issued by another pool"))
	case int(h.index) >= len(p.resources):
		panic(p.invalid(h, "slot not populated"))
	}
	return p.resources[h.index]
}

func (p *Pool[D, R]) invalid(h Handle[R], reason string) *InvalidHandleError {
	return &InvalidHandleError{Pool: p.name, Handle: h.String(), Reason: reason}
}

// Owns reports whether h was issued by this pool.
func (p *Pool[D, R]) Owns(h Handle[R]) bool {
	if h.IsZero() || h.pool != p.id {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int(h.index) < len(p.resources)
}

// Len returns the number of resources in the pool.
func (p *Pool[D, R]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.resources)
}

// Stats returns a snapshot of the pool counters.
// Counters are read atomically and may not be perfectly synchronized.
func (p *Pool[D, R]) Stats() Stats {
	return Stats{
		Entries:  p.Len(),
		Hits:     p.hits.Load(),
		Misses:   p.misses.Load(),
		Failures: p.failures.Load(),
	}
}

// All iterates over the pool in creation order. The iteration works on a
// snapshot taken when it starts, so the body may call GetOrCreate.
func (p *Pool[D, R]) All() iter.Seq2[Handle[R], R] {
	return func(yield func(Handle[R], R) bool) {
		p.mu.RLock()
		snapshot := make([]R, len(p.resources))
		copy(snapshot, p.resources)
		p.mu.RUnlock()

		for i, res := range snapshot {
			if !yield(Handle[R]{pool: p.id, index: uint32(i)}, res) { //nolint:gosec // arena length fits uint32
				return
			}
		}
	}
}
