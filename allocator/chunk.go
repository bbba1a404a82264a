package allocator

import (
	"encoding/binary"
	"math"
)

// Pointer is the address of a payload inside the heap region.
type Pointer uint32

// Null is never a valid payload address because a header always precedes it.
const Null Pointer = 0

const (
	nullPtr uint32 = math.MaxUint32

	// HeaderSize is the number of bytes reserved in front of every payload.
	HeaderSize = 16

	headerCapacityOffset = 0
	headerUsedOffset     = 4
	headerNextOffset     = 8
	headerStateOffset    = 12

	stateInUse uint32 = 0xa110ca7e
	stateFree  uint32 = 0xf4eef4ee
)

// chunkHeader is the decoded form of the header stored in front of a payload.
type chunkHeader struct {
	capacity uint32
	used     uint32
	next     uint32
	state    uint32
}

func getU32(data []byte, off uint32) uint32 {
	return binary.LittleEndian.Uint32(data[off : off+4])
}

func putU32(data []byte, off uint32, v uint32) {
	binary.LittleEndian.PutUint32(data[off:off+4], v)
}

func loadHeader(data []byte, addr uint32) chunkHeader {
	return chunkHeader{
		capacity: getU32(data, addr+headerCapacityOffset),
		used:     getU32(data, addr+headerUsedOffset),
		next:     getU32(data, addr+headerNextOffset),
		state:    getU32(data, addr+headerStateOffset),
	}
}

func storeHeader(data []byte, addr uint32, h chunkHeader) {
	putU32(data, addr+headerCapacityOffset, h.capacity)
	putU32(data, addr+headerUsedOffset, h.used)
	putU32(data, addr+headerNextOffset, h.next)
	putU32(data, addr+headerStateOffset, h.state)
}

func chunkNext(data []byte, addr uint32) uint32 {
	return getU32(data, addr+headerNextOffset)
}

func setChunkNext(data []byte, addr uint32, next uint32) {
	putU32(data, addr+headerNextOffset, next)
}

func chunkCapacity(data []byte, addr uint32) uint32 {
	return getU32(data, addr+headerCapacityOffset)
}

func chunkUsed(data []byte, addr uint32) uint32 {
	return getU32(data, addr+headerUsedOffset)
}

func chunkState(data []byte, addr uint32) uint32 {
	return getU32(data, addr+headerStateOffset)
}

func payloadOf(addr uint32) Pointer {
	return Pointer(addr + HeaderSize)
}

func chunkOf(p Pointer) uint32 {
	return uint32(p) - HeaderSize
}
