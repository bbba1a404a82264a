package allocator

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestLocked_Concurrent(t *testing.T) {
	l := NewLocked(New(Config{Heap: NewRegion(1 << 24)}))

	const workers = 8
	const rounds = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				size := uint32(1 + (w*rounds+i)%200)
				p := l.Allocate(size)
				if p == Null {
					t.Errorf("allocate %d failed", size)
					return
				}
				b := l.Bytes(p)
				for j := range b {
					b[j] = byte(w)
				}
				for j := range b {
					if b[j] != byte(w) {
						t.Errorf("payload of worker %d overwritten", w)
						return
					}
				}
				if i%2 == 0 {
					l.Release(p)
				} else if err := l.CheckedRelease(p); err != nil {
					t.Errorf("release: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	c := l.Counters()
	assert.Equal(t, workers*rounds, c.AllocCalls)
	assert.Equal(t, workers*rounds, c.ReleaseCalls)
	assert.Equal(t, c.Grown+c.Reused, c.AllocCalls)
	assert.Equal(t, uint64(l.HeapSize()), c.GrowBytes)

	s := l.Audit(nil)
	require.Equal(t, c.Grown, s.FreeBlocks)
	assert.Equal(t, 0, s.UsedBlocks)
	assert.Equal(t, uint64(l.HeapSize())-uint64(c.Grown)*HeaderSize, s.FreeMemory)
}
