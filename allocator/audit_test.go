package allocator

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestAudit_Empty(t *testing.T) {
	a, _ := newTestAllocator(1 << 12)

	s := a.Audit(nil)
	assert.Equal(t, Stats{Underutilization: NewRational(0, 0)}, s)
	assert.Equal(t, 0.0, s.UnderutilizationRatio())
}

func TestAudit_FreeAndUsed(t *testing.T) {
	a, _ := newTestAllocator(1 << 12)

	p1 := a.Allocate(100)
	p2 := a.Allocate(50)
	a.Release(p1)

	s := a.Audit([]Pointer{Null, p2, Null})
	assert.Equal(t, 1, s.FreeBlocks)
	assert.Equal(t, uint64(100), s.FreeMemory)
	assert.Equal(t, 1, s.UsedBlocks)
	assert.Equal(t, uint64(50), s.UsedMemory)
	assert.Equal(t, uint64(150), s.TotalMemory)
	assert.Equal(t, 2, s.TotalBlocks)
	assert.Equal(t, uint64(0), s.WastedMemory)
	assert.Equal(t, 0.0, s.UnderutilizationRatio())
}

func TestAudit_Fragmentation(t *testing.T) {
	a, _ := newTestAllocator(1 << 12)

	p := a.Allocate(100)
	a.Release(p)
	p = a.Allocate(10)

	s := a.Audit([]Pointer{p})
	assert.Equal(t, Stats{
		TotalBlocks:      1,
		FreeBlocks:       0,
		UsedBlocks:       1,
		TotalMemory:      100,
		FreeMemory:       0,
		UsedMemory:       100,
		WastedMemory:     90,
		Underutilization: NewRational(90, 100),
	}, s)
	assert.InDelta(t, 0.9, s.UnderutilizationRatio(), 1e-9)
}

func TestAudit_OnlyFree(t *testing.T) {
	a, _ := newTestAllocator(1 << 12)

	p1 := a.Allocate(30)
	p2 := a.Allocate(70)
	a.Release(p2)
	a.Release(p1)

	s := a.Audit([]Pointer{Null, Null})
	assert.Equal(t, 2, s.FreeBlocks)
	assert.Equal(t, uint64(100), s.FreeMemory)
	assert.Equal(t, 0, s.UsedBlocks)
	assert.Equal(t, 0.0, s.UnderutilizationRatio())
}

func TestAudit_ReadOnly(t *testing.T) {
	a, heap := newTestAllocator(1 << 12)

	p1 := a.Allocate(100)
	p2 := a.Allocate(20)
	a.Release(p1)
	p3 := a.Allocate(40)

	before := append([]byte(nil), a.heap.Bytes()...)
	head := a.freeList.head
	counters := a.Counters()

	s1 := a.Audit([]Pointer{p2, p3})
	s2 := a.Audit([]Pointer{p2, p3})
	assert.Equal(t, s1, s2)
	assert.Equal(t, uint64(60), s1.WastedMemory)
	assert.Equal(t, uint64(120), s1.UsedMemory)

	assert.Equal(t, before, a.heap.Bytes())
	assert.Equal(t, head, a.freeList.head)
	assert.Equal(t, counters, a.Counters())
	assert.Equal(t, 2, len(heap.extendCalls))
}

func TestStats_WriteJSON(t *testing.T) {
	s := Stats{
		TotalBlocks:      2,
		FreeBlocks:       1,
		UsedBlocks:       1,
		TotalMemory:      150,
		FreeMemory:       100,
		UsedMemory:       50,
		WastedMemory:     25,
		Underutilization: NewRational(25, 50),
	}

	w := jwriter.NewWriter()
	s.WriteJSON(&w)
	assert.NoError(t, w.Error())
	assert.JSONEq(t, `{
		"total_blocks": 2,
		"free_blocks": 1,
		"used_blocks": 1,
		"total_memory": 150,
		"free_memory": 100,
		"used_memory": 50,
		"wasted_memory": 25,
		"underutilization_ratio": 0.5
	}`, string(w.Bytes()))
}

func TestStats_String(t *testing.T) {
	s := Stats{
		TotalBlocks:      1,
		UsedBlocks:       1,
		TotalMemory:      100,
		UsedMemory:       100,
		WastedMemory:     90,
		Underutilization: NewRational(90, 100),
	}
	assert.Equal(t,
		"blocks 1 (free 0, used 1), memory 100 (free 0, used 100, wasted 90), underutilization 0.90",
		s.String(),
	)
}
