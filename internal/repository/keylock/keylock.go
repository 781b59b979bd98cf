// Package keylock provides an in-process lock keyed by string.
package keylock

import (
	"context"
	"sort"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Locker hands out one exclusive slot per key. Idle keys are dropped.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New constructs an empty Locker.
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock blocks until every key is free or ctx is done. Keys are taken in sorted
// order, so callers locking overlapping sets cannot deadlock.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = SortedKeys(keys)
	held := make([]func(), 0, len(keys))
	unlockAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, key := range keys {
		unlock, err := l.lockOne(ctx, key)
		if err != nil {
			unlockAll()
			return nil, err
		}
		held = append(held, unlock)
	}

	var once sync.Once
	return func() { once.Do(unlockAll) }, nil
}

func (l *Locker) lockOne(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	return func() {
		<-e.ch
		l.release(key, e)
	}, nil
}

func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// SortedKeys returns keys deduplicated in ascending order. Empty keys are dropped.
func SortedKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
