package malloc

import "encoding/binary"

// Block header layout, encoded little-endian at the block's offset:
//
//   0..8   usable size of the payload that follows the header
//   8..16  offset of the next free block, 0 when none, meaningful
//          only while the block is linked into a free list
//
// The payload begins at block+Headersize and runs for exactly the
// usable size. A block's end, block+Headersize+size, either equals
// the heap break, or the offset of the physically next block.

func (heap *Heap) blocksize(block int64) int64 {
	return int64(binary.LittleEndian.Uint64(heap.buf[block : block+8]))
}

func (heap *Heap) setblocksize(block, size int64) {
	binary.LittleEndian.PutUint64(heap.buf[block:block+8], uint64(size))
}

func (heap *Heap) blocklink(block int64) int64 {
	return int64(binary.LittleEndian.Uint64(heap.buf[block+8 : block+16]))
}

func (heap *Heap) setblocklink(block, link int64) {
	binary.LittleEndian.PutUint64(heap.buf[block+8:block+16], uint64(link))
}

// blockend offset one past the block's payload, used for the
// physical adjacency check while coalescing.
func (heap *Heap) blockend(block int64) int64 {
	return block + Headersize + heap.blocksize(block)
}

// initblock write a fresh header for a block carved out of newly
// reserved heap space.
func (heap *Heap) initblock(block, size int64) {
	heap.setblocksize(block, size)
	heap.setblocklink(block, 0)
	paintblock(heap.buf[block+Headersize : block+Headersize+size])
}
