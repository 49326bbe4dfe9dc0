package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs_Sequence(t *testing.T) {
	gen := NewSequenceIDs("job")

	assert.Equal(t, "job-1", gen.Generate())
	assert.Equal(t, "job-2", gen.Generate())
	assert.Equal(t, "job-3", gen.Generate())
}

func TestSequenceIDs_EmptyPrefixDefault(t *testing.T) {
	gen := NewSequenceIDs("")
	assert.Equal(t, "id-1", gen.Generate())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDs("t")

	done := make(chan []string)
	for i := 0; i < 10; i++ {
		go func() {
			ids := make([]string, 0, 100)
			for j := 0; j < 100; j++ {
				ids = append(ids, gen.Generate())
			}
			done <- ids
		}()
	}

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		for _, id := range <-done {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 1000)
}
