package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceAllocator_CountsPerKind(t *testing.T) {
	a := NewSequenceAllocator()

	assert.Equal(t, "stage-1", a.Next(KindStage))
	assert.Equal(t, "stage-2", a.Next(KindStage))
	assert.Equal(t, "rider-1", a.Next(KindRider))
	assert.Equal(t, "stage-3", a.Next(KindStage))
}

func TestSequenceAllocator_ConcurrentUse(t *testing.T) {
	a := NewSequenceAllocator()
	const n = 100

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := a.Next(KindSegment)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "every identifier is distinct")
}

func TestUUIDAllocator(t *testing.T) {
	var a UUIDAllocator

	first := a.Next(KindTeam)
	second := a.Next(KindTeam)

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
