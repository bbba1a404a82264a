package allocator

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Stats is a point-in-time report of heap usage.
//
// UsedMemory counts the full capacity of every live chunk, not the size its
// occupant asked for, so it reflects what the heap has committed. The part of
// that capacity nobody asked for is WastedMemory.
type Stats struct {
	TotalBlocks int
	FreeBlocks  int
	UsedBlocks  int

	TotalMemory  uint64
	FreeMemory   uint64
	UsedMemory   uint64
	WastedMemory uint64

	// Underutilization is WastedMemory / UsedMemory.
	Underutilization Rational
}

// UnderutilizationRatio returns WastedMemory / UsedMemory, or 0 when nothing is in use.
func (s Stats) UnderutilizationRatio() float64 {
	return s.Underutilization.Float64()
}

// Audit computes Stats from the free list and the live pointers in handles.
// Null entries in handles are skipped. The allocator is not modified.
func (a *Allocator) Audit(handles []Pointer) Stats {
	return audit(a.heap.Bytes(), a.freeList.head, handles)
}

func audit(data []byte, head uint32, handles []Pointer) Stats {
	var s Stats

	for n := head; n != nullPtr; n = chunkNext(data, n) {
		s.FreeBlocks++
		s.FreeMemory += uint64(chunkCapacity(data, n))
	}

	for _, p := range handles {
		if p == Null {
			continue
		}
		h := loadHeader(data, chunkOf(p))
		s.UsedBlocks++
		s.UsedMemory += uint64(h.capacity)
		if h.capacity > h.used {
			s.WastedMemory += uint64(h.capacity - h.used)
		}
	}

	s.TotalMemory = s.UsedMemory + s.FreeMemory
	s.TotalBlocks = s.FreeBlocks + s.UsedBlocks
	s.Underutilization = NewRational(s.WastedMemory, s.UsedMemory)
	return s
}

// WriteJSON writes s as a single JSON object.
func (s Stats) WriteJSON(w *jwriter.Writer) {
	obj := w.Object()
	obj.Name("total_blocks").Int(s.TotalBlocks)
	obj.Name("free_blocks").Int(s.FreeBlocks)
	obj.Name("used_blocks").Int(s.UsedBlocks)
	obj.Name("total_memory").Int(int(s.TotalMemory))
	obj.Name("free_memory").Int(int(s.FreeMemory))
	obj.Name("used_memory").Int(int(s.UsedMemory))
	obj.Name("wasted_memory").Int(int(s.WastedMemory))
	obj.Name("underutilization_ratio").Float64(s.UnderutilizationRatio())
	obj.End()
}

// String ...
func (s Stats) String() string {
	return fmt.Sprintf("blocks %d (free %d, used %d), memory %d (free %d, used %d, wasted %d), underutilization %.2f",
		s.TotalBlocks, s.FreeBlocks, s.UsedBlocks,
		s.TotalMemory, s.FreeMemory, s.UsedMemory, s.WastedMemory,
		s.UnderutilizationRatio(),
	)
}
