package allocator

// freeList is the LIFO list of unused chunks, linked through their headers.
type freeList struct {
	head uint32
}

func newFreeList() freeList {
	return freeList{head: nullPtr}
}

func (l *freeList) empty() bool {
	return l.head == nullPtr
}

func (l *freeList) push(data []byte, addr uint32) {
	setChunkNext(data, addr, l.head)
	l.head = addr
}

// unlink removes addr, whose predecessor in the list is prev (nullPtr for the head).
func (l *freeList) unlink(data []byte, prev uint32, addr uint32) {
	next := chunkNext(data, addr)
	if prev == nullPtr {
		l.head = next
	} else {
		setChunkNext(data, prev, next)
	}
	setChunkNext(data, addr, nullPtr)
}

// firstFit returns the first chunk able to hold size bytes and its predecessor.
func (l *freeList) firstFit(data []byte, size uint32) (prev uint32, addr uint32, ok bool) {
	prev = nullPtr
	for n := l.head; n != nullPtr; n = chunkNext(data, n) {
		if chunkCapacity(data, n) >= size {
			return prev, n, true
		}
		prev = n
	}
	return nullPtr, nullPtr, false
}

func (l *freeList) contentOfList(data []byte) []uint32 {
	var result []uint32
	n := l.head
	for n != nullPtr {
		result = append(result, n)
		n = chunkNext(data, n)
	}
	return result
}
