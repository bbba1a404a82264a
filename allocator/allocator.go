package allocator

import (
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// Config ...
type Config struct {
	// Heap supplies fresh chunks when the free list has none large enough.
	// The allocator must be its only user.
	Heap Heap

	// Logger receives growth and exhaustion events. Nil discards them.
	Logger *slog.Logger
}

// Counters holds operation counters for instrumentation.
type Counters struct {
	AllocCalls    int    // Allocate calls, including zero-size ones
	ZeroSizeCalls int    // Allocate(0) calls
	Reused        int    // allocations served from the free list
	Grown         int    // allocations that extended the heap
	GrowBytes     uint64 // bytes requested from the heap, headers included
	Exhausted     int    // allocations that failed because the heap could not grow
	ReleaseCalls  int    // Release and CheckedRelease calls, including Null
	NullReleases  int    // releases of Null
}

// Allocator is a first-fit allocator over a single free list.
// It is not safe for concurrent use, see Locked.
type Allocator struct {
	heap     Heap
	freeList freeList
	index    *chunkIndex
	logger   *slog.Logger
	counters Counters
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allocatorValidateConfig(conf Config) {
	if conf.Heap == nil {
		panic("Heap must not be nil")
	}
}

// New ...
func New(conf Config) *Allocator {
	allocatorValidateConfig(conf)

	logger := conf.Logger
	if logger == nil {
		logger = discardLogger()
	}

	return &Allocator{
		heap:     conf.Heap,
		freeList: newFreeList(),
		index:    newChunkIndex(),
		logger:   logger,
	}
}

// Allocate returns a payload of at least size bytes, or Null when size is 0
// or the heap cannot grow. The free list is searched first fit from its head;
// a reused chunk keeps its whole capacity.
func (a *Allocator) Allocate(size uint32) Pointer {
	a.counters.AllocCalls++
	if size == 0 {
		a.counters.ZeroSizeCalls++
		return Null
	}

	data := a.heap.Bytes()
	prev, addr, ok := a.freeList.firstFit(data, size)
	if ok {
		a.freeList.unlink(data, prev, addr)
		h := loadHeader(data, addr)
		h.used = size
		h.next = nullPtr
		h.state = stateInUse
		storeHeader(data, addr, h)

		a.counters.Reused++
		a.logger.Debug("chunk reused",
			slog.Any("addr", addr),
			slog.Any("size", size),
			slog.Any("capacity", h.capacity),
		)
		return payloadOf(addr)
	}

	return a.grow(size)
}

func (a *Allocator) grow(size uint32) Pointer {
	if size > math.MaxUint32-HeaderSize {
		a.counters.Exhausted++
		a.logger.Warn("allocation too large", slog.Any("size", size))
		return Null
	}

	need := size + HeaderSize
	addr, err := a.heap.Extend(need)
	if err != nil {
		a.counters.Exhausted++
		a.logger.Warn("heap exhausted",
			slog.Any("size", size),
			slog.Any("break", a.heap.Break()),
			slog.String("err", err.Error()),
		)
		return Null
	}

	storeHeader(a.heap.Bytes(), addr, chunkHeader{
		capacity: size,
		used:     size,
		next:     nullPtr,
		state:    stateInUse,
	})
	a.index.add(addr)

	a.counters.Grown++
	a.counters.GrowBytes += uint64(need)
	a.logger.Debug("heap grown",
		slog.Any("addr", addr),
		slog.Any("size", size),
		slog.Any("break", a.heap.Break()),
	)
	return payloadOf(addr)
}

// Release pushes the chunk of p onto the head of the free list. Releasing
// Null is a no-op. p must come from Allocate and must not be released twice;
// use CheckedRelease when that cannot be guaranteed.
func (a *Allocator) Release(p Pointer) {
	a.counters.ReleaseCalls++
	if p == Null {
		a.counters.NullReleases++
		return
	}
	a.release(chunkOf(p))
}

func (a *Allocator) release(addr uint32) {
	data := a.heap.Bytes()
	h := loadHeader(data, addr)
	h.used = 0
	h.state = stateFree
	storeHeader(data, addr, h)
	a.freeList.push(data, addr)
}

// CheckedRelease is Release with validation: it rejects pointers that do not
// start a chunk and chunks that are already free, leaving the free list untouched.
func (a *Allocator) CheckedRelease(p Pointer) error {
	a.counters.ReleaseCalls++
	if p == Null {
		a.counters.NullReleases++
		return nil
	}

	if uint32(p) < HeaderSize || uint32(p) >= a.heap.Break() {
		return errors.Wrapf(ErrInvalidRelease, "pointer %d outside heap [%d, %d)", p, HeaderSize, a.heap.Break())
	}
	addr := chunkOf(p)
	if !a.index.has(addr) {
		return errors.Wrapf(ErrInvalidRelease, "pointer %d", p)
	}
	if chunkState(a.heap.Bytes(), addr) == stateFree {
		return errors.Wrapf(ErrDoubleRelease, "pointer %d", p)
	}

	a.release(addr)
	return nil
}

// Bytes returns the payload of p, with length equal to the requested size
// and capacity equal to the chunk capacity.
func (a *Allocator) Bytes(p Pointer) []byte {
	if p == Null {
		return nil
	}
	data := a.heap.Bytes()
	addr := chunkOf(p)
	h := loadHeader(data, addr)
	start := uint32(p)
	return data[start : start+h.used : start+h.capacity]
}

// Capacity ...
func (a *Allocator) Capacity(p Pointer) uint32 {
	return chunkCapacity(a.heap.Bytes(), chunkOf(p))
}

// LiveSize ...
func (a *Allocator) LiveSize(p Pointer) uint32 {
	return chunkUsed(a.heap.Bytes(), chunkOf(p))
}

// HeapSize returns the heap break, the total of every chunk created so far
// including headers. It never decreases.
func (a *Allocator) HeapSize() uint32 {
	return a.heap.Break()
}

// NumChunks ...
func (a *Allocator) NumChunks() int {
	return a.index.len()
}

// Counters ...
func (a *Allocator) Counters() Counters {
	return a.counters
}

// Walk visits every chunk in address order until fn returns false.
func (a *Allocator) Walk(fn func(info ChunkInfo) bool) {
	data := a.heap.Bytes()
	a.index.ascend(func(addr uint32) bool {
		h := loadHeader(data, addr)
		return fn(ChunkInfo{
			Addr:     addr,
			Payload:  payloadOf(addr),
			Capacity: h.capacity,
			LiveSize: h.used,
			Free:     h.state == stateFree,
		})
	})
}

// DebugLogChunks writes every chunk to logger at debug level.
func (a *Allocator) DebugLogChunks(logger *slog.Logger) {
	a.Walk(func(info ChunkInfo) bool {
		logger.Debug("chunk",
			slog.Any("addr", info.Addr),
			slog.Any("capacity", info.Capacity),
			slog.Any("live", info.LiveSize),
			slog.Bool("free", info.Free),
		)
		return true
	})
}
