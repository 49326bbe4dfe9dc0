package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clockStart = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func TestDeterministicClock_StartsAtStart(t *testing.T) {
	clock := NewDeterministicClock(clockStart, time.Second)
	assert.Equal(t, clockStart, clock.Now())
	assert.Equal(t, int64(1), clock.Calls())
}

func TestDeterministicClock_Steps(t *testing.T) {
	clock := NewDeterministicClock(clockStart, time.Minute)

	assert.Equal(t, clockStart, clock.Now())
	assert.Equal(t, clockStart.Add(time.Minute), clock.Now())
	assert.Equal(t, clockStart.Add(2*time.Minute), clock.Now())
}

func TestDeterministicClock_ZeroStepFreezes(t *testing.T) {
	clock := NewDeterministicClock(clockStart, 0)
	for i := 0; i < 5; i++ {
		assert.Equal(t, clockStart, clock.Now())
	}
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(clockStart, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, clockStart, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(clockStart, time.Second)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				ts := clock.Now()
				mu.Lock()
				seen[ts] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, numGoroutines*callsPerGoroutine, "every call returns a distinct instant")
	last := clockStart.Add(time.Duration(numGoroutines*callsPerGoroutine-1) * time.Second)
	assert.True(t, seen[last])
}
