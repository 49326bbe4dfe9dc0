package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable identifiers: prefix-1, prefix-2, ...
//
// It satisfies engine.IDGenerator and can be passed to
// store.WithIDGenerator through its Generate method value, which keeps
// record ids stable across runs for golden comparisons.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next identifier.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
