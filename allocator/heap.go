package allocator

import (
	"github.com/cockroachdb/errors"
)

// Heap is a contiguous byte region that only grows.
//
// Extend moves the break forward by n bytes and returns the previous break,
// like sbrk(2). Bytes returns the region up to the current break; the returned
// slice must stay valid across later calls to Extend.
type Heap interface {
	Extend(n uint32) (uint32, error)
	Break() uint32
	Bytes() []byte
}

// Region is a Heap backed by a fixed reservation of limit bytes.
type Region struct {
	data   []byte
	brk    uint32
	limit  uint32
	unmap  func([]byte) error
	closed bool
}

// NewRegion reserves limit bytes of Go-managed memory.
func NewRegion(limit uint32) *Region {
	return &Region{
		data:  make([]byte, limit),
		brk:   0,
		limit: limit,
	}
}

// MapRegion reserves limit bytes with an anonymous private mapping. Pages are
// only committed by the OS once they are touched.
func MapRegion(limit uint32) (*Region, error) {
	if limit == 0 {
		return NewRegion(0), nil
	}
	data, err := mapAnonymous(int(limit))
	if err != nil {
		return nil, errors.Wrapf(err, "allocator: map %d bytes", limit)
	}
	return &Region{
		data:  data,
		brk:   0,
		limit: limit,
		unmap: unmapAnonymous,
	}, nil
}

// Extend ...
func (r *Region) Extend(n uint32) (uint32, error) {
	if r.closed {
		return 0, errors.Wrap(ErrHeapExhausted, "region closed")
	}
	if n > r.limit-r.brk {
		return 0, errors.Wrapf(ErrHeapExhausted, "extend by %d bytes: break %d, limit %d", n, r.brk, r.limit)
	}
	prev := r.brk
	r.brk += n
	return prev, nil
}

// Break ...
func (r *Region) Break() uint32 {
	return r.brk
}

// Limit ...
func (r *Region) Limit() uint32 {
	return r.limit
}

// Bytes ...
func (r *Region) Bytes() []byte {
	return r.data[:r.brk:r.brk]
}

// Close releases a mapped region. Every payload slice obtained from it becomes invalid.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	data := r.data
	r.data = nil
	r.brk = 0
	r.limit = 0
	if r.unmap == nil {
		return nil
	}
	return r.unmap(data)
}
