// Package fetch guards screen-focus refetches against stale responses: a
// fetch that resolves after a newer one was issued for the same view must be
// discarded, never applied over fresher state.
package fetch

import "sync"

// Gate issues monotonically increasing generation tokens, one per fetch.
// Only the newest generation may commit its result.
type Gate struct {
	mu     sync.Mutex
	issued uint64
}

// Begin marks the start of a new fetch and returns its generation token.
// Issuing a new generation implicitly invalidates all earlier ones.
func (g *Gate) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Latest reports whether gen is still the newest issued generation.
func (g *Gate) Latest(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gen == g.issued
}

// Commit runs apply only if gen is still the newest generation, and reports
// whether it ran. apply executes under the gate's lock and must not call
// back into the gate.
func (g *Gate) Commit(gen uint64, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.issued {
		return false
	}
	apply()
	return true
}

// Invalidate discards all outstanding generations without starting a new
// fetch, for a view losing focus or unmounting with a request in flight.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
}
