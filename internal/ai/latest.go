package ai

import (
	"context"
	"sync"
)

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// LatestWins runs at most one in-flight task per key. Starting a newer task
// for the same key cancels the stale one, so a suggestion derived from old
// input is dropped instead of being applied late.
type LatestWins struct {
	mu      sync.Mutex
	gen     uint64
	current map[string]inflight
}

// NewLatestWins creates an empty runner.
func NewLatestWins() *LatestWins {
	return &LatestWins{current: make(map[string]inflight)}
}

// Do runs fn with a context that is cancelled when a newer call arrives for
// the same key. fn must honor its context. Do blocks until fn returns.
func (l *LatestWins) Do(ctx context.Context, key string, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if prev, ok := l.current[key]; ok {
		prev.cancel()
	}
	l.current[key] = inflight{gen: gen, cancel: cancel}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if entry, ok := l.current[key]; ok && entry.gen == gen {
			delete(l.current, key)
		}
		l.mu.Unlock()
		cancel()
	}()

	fn(ctx)
}
