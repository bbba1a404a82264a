// Package allocator implements a first-fit free-list allocator on top of a
// heap that only grows.
//
// # Layout
//
// Every chunk is a 16-byte header followed by its payload. Addresses are
// uint32 offsets into the heap region and a payload Pointer is always the
// chunk address plus HeaderSize, so the header of any live pointer is found by
// stepping back HeaderSize bytes:
//
//	+----------+--------+--------+--------+-----------------+
//	| capacity |  used  |  next  | state  | payload ...     |
//	+----------+--------+--------+--------+-----------------+
//	^ chunk address                       ^ Pointer
//
// # Placement
//
// Allocate scans the free list from its head and takes the first chunk whose
// capacity is large enough. The chunk is never split: an Allocate(10) served
// by a 100-byte chunk keeps all 100 bytes until it is released, and the other
// 90 show up as WastedMemory in Audit. When nothing fits, the heap is extended
// by exactly size+HeaderSize bytes.
//
// Release pushes the chunk onto the head of the free list. Neighbouring free
// chunks are never merged and the heap never shrinks.
//
// # Misuse
//
// Release trusts its caller. Releasing a pointer twice links the chunk into the
// free list twice and corrupts it. CheckedRelease detects both foreign and
// double releases and reports ErrInvalidRelease or ErrDoubleRelease instead.
//
// # Thread Safety
//
// Allocator is not safe for concurrent use. Wrap it in Locked to share it
// between goroutines.
package allocator
