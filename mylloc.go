// Package mylloc exposes a process-wide allocator with a malloc/free style API.
//
// Init must be called once before use and Teardown releases the heap region.
// Until Init succeeds Malloc returns Null and Free does nothing. All functions
// are safe for concurrent use, including Teardown against running calls.
package mylloc

import (
	"sync"

	"github.com/QuangTung97/mylloc/allocator"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// ErrAlreadyInitialized is returned by Init when a default allocator already exists.
var ErrAlreadyInitialized = errors.New("mylloc: already initialized")

// Null ...
const Null = allocator.Null

// Pointer ...
type Pointer = allocator.Pointer

// Stats ...
type Stats = allocator.Stats

type options struct {
	logger *slog.Logger
	goHeap bool
}

// Option configures Init.
type Option func(o *options)

// WithLogger ...
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithGoHeap backs the allocator with Go-managed memory instead of an anonymous mapping.
func WithGoHeap() Option {
	return func(o *options) {
		o.goHeap = true
	}
}

type instance struct {
	region *allocator.Region
	alloc  *allocator.Locked
}

var (
	mu      sync.RWMutex
	current *instance
)

// Init creates the default allocator over a heap of at most limit bytes.
func Init(limit uint32, opts ...Option) error {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}

	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return ErrAlreadyInitialized
	}

	region, err := newRegion(limit, o)
	if err != nil {
		return err
	}

	current = &instance{
		region: region,
		alloc: allocator.NewLocked(allocator.New(allocator.Config{
			Heap:   region,
			Logger: o.logger,
		})),
	}
	return nil
}

func newRegion(limit uint32, o options) (*allocator.Region, error) {
	if o.goHeap {
		return allocator.NewRegion(limit), nil
	}
	region, err := allocator.MapRegion(limit)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("mapping heap failed, using Go memory", slog.String("err", err.Error()))
		}
		return allocator.NewRegion(limit), nil
	}
	return region, nil
}

// Teardown drops the default allocator. It waits for calls already in progress.
// Every pointer it returned becomes invalid.
func Teardown() error {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return nil
	}
	err := current.region.Close()
	current = nil
	return errors.Wrap(err, "mylloc: teardown")
}

// Malloc ...
func Malloc(size uint32) Pointer {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return Null
	}
	return current.alloc.Allocate(size)
}

// Free ...
func Free(p Pointer) {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return
	}
	current.alloc.Release(p)
}

// Bytes returns the payload of p. The slice is valid until Teardown.
func Bytes(p Pointer) []byte {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return nil
	}
	return current.alloc.Bytes(p)
}

// MemStats audits the default allocator given the pointers the caller still holds.
func MemStats(handles []Pointer) Stats {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return Stats{}
	}
	return current.alloc.Audit(handles)
}

// HeapSize ...
func HeapSize() uint32 {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return 0
	}
	return current.alloc.HeapSize()
}

// HeapLimit returns the size the heap can grow to, or 0 before Init.
func HeapLimit() uint32 {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return 0
	}
	return current.region.Limit()
}
