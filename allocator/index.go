package allocator

import (
	"github.com/google/btree"
)

const chunkIndexDegree = 32

// chunkIndex keeps every chunk address ever created, in address order.
type chunkIndex struct {
	tree *btree.BTreeG[uint32]
}

func newChunkIndex() *chunkIndex {
	return &chunkIndex{
		tree: btree.NewOrderedG[uint32](chunkIndexDegree),
	}
}

func (x *chunkIndex) add(addr uint32) {
	x.tree.ReplaceOrInsert(addr)
}

func (x *chunkIndex) has(addr uint32) bool {
	return x.tree.Has(addr)
}

func (x *chunkIndex) len() int {
	return x.tree.Len()
}

func (x *chunkIndex) ascend(fn func(addr uint32) bool) {
	x.tree.Ascend(fn)
}

// ChunkInfo describes one chunk as seen by Walk.
type ChunkInfo struct {
	Addr     uint32
	Payload  Pointer
	Capacity uint32
	LiveSize uint32
	Free     bool
}
