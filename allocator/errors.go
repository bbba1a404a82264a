package allocator

import "github.com/cockroachdb/errors"

var (
	// ErrHeapExhausted is returned by a Heap that cannot grow any further.
	ErrHeapExhausted = errors.New("allocator: heap exhausted")

	// ErrInvalidRelease indicates a pointer that was never returned by Allocate.
	ErrInvalidRelease = errors.New("allocator: pointer not allocated by this allocator")

	// ErrDoubleRelease indicates a pointer whose chunk is already in the free list.
	ErrDoubleRelease = errors.New("allocator: chunk already released")
)
