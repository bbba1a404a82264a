package allocator

import (
	"sync"
)

// Locked serializes every operation of an Allocator behind one mutex.
type Locked struct {
	mu sync.Mutex
	a  *Allocator
}

// NewLocked ...
func NewLocked(a *Allocator) *Locked {
	return &Locked{a: a}
}

// Allocate ...
func (l *Locked) Allocate(size uint32) Pointer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Allocate(size)
}

// Release ...
func (l *Locked) Release(p Pointer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Release(p)
}

// CheckedRelease ...
func (l *Locked) CheckedRelease(p Pointer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.CheckedRelease(p)
}

// Bytes ...
func (l *Locked) Bytes(p Pointer) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Bytes(p)
}

// Audit ...
func (l *Locked) Audit(handles []Pointer) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Audit(handles)
}

// HeapSize ...
func (l *Locked) HeapSize() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.HeapSize()
}

// Counters ...
func (l *Locked) Counters() Counters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Counters()
}
