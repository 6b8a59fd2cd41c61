// Package dedupe guards against resolving the same author/title pair twice
// at once. Two concurrent requests for the same book would otherwise both
// pass the "does it exist" checks and create duplicate records in the
// acquisition backend.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/foliolabs/folio/internal/domain/text"
)

// Guard tracks resolution keys that are currently in flight.
type Guard interface {
	// Acquire atomically records key as in flight. Returns false if the
	// key is already held by another request.
	Acquire(ctx context.Context, key string) bool

	// Release removes key, allowing the pair to be requested again.
	// Callers must release on every terminal path.
	Release(ctx context.Context, key string)

	Size() int64
}

// Key builds the canonical in-flight key for a request. Case, periods and
// whitespace noise collapse so "Dune / Frank Herbert" and "DUNE / frank
// herbert" contend for the same slot.
func Key(author, title string) string {
	return text.Normalize(author) + "|" + text.Normalize(title)
}

// inMemoryGuard implements Guard with a bounded map. Insertion order is
// kept so that, if a caller leaks keys past the bound, the oldest entry is
// dropped rather than blocking new requests forever.
type inMemoryGuard struct {
	mu      sync.Mutex
	held    map[string]struct{}
	order   []string
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates an in-flight guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.held = make(map[string]struct{})
	return g
}

func (g *inMemoryGuard) Acquire(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || key == "|" {
		return true // nothing meaningful to guard
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.held[key]; exists {
		return false
	}

	if g.maxSize > 0 && len(g.held) >= g.maxSize {
		g.evictOldest()
	}

	g.held[key] = struct{}{}
	g.order = append(g.order, key)
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(ctx context.Context, key string) {
	key = strings.TrimSpace(key)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.held[key]; !exists {
		return
	}
	delete(g.held, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.size.Add(-1)
}

func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}

// evictOldest drops the longest-held key. Must be called with g.mu held.
func (g *inMemoryGuard) evictOldest() {
	if len(g.order) == 0 {
		return
	}
	oldest := g.order[0]
	g.order = g.order[1:]
	delete(g.held, oldest)
	g.size.Add(-1)
}
