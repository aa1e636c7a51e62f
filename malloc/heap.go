package malloc

import "sync"
import "sync/atomic"

import s "github.com/bnclabs/gosettings"
import "github.com/dustin/go-humanize"

import "github.com/bnclabs/tsmalloc/api"

// Heap is a single growable arena of memory backing one or more
// allocators. Memory is reserved from the arena by advancing the
// heap break, the break never retreats and reserved regions are
// never returned to the OS until the heap is Released.
type Heap struct {
	// 64-bit aligned, atomic access.
	brk int64 // heap break, offset one past the last reserved byte

	mu  sync.Mutex // serializes sbrk, the heap break is process wide
	buf []byte     // backing store, fixed at capacity length

	// configuration
	capacity  int64
	logprefix string
}

// NewHeap create a new heap arena. Zero or negative capacity picks
// the "capacity" setting. The backing store is reserved virtually
// upfront so that chunk offsets stay valid across growth.
func NewHeap(capacity int64, setts s.Settings) *Heap {
	if capacity <= 0 {
		capacity = setts.Int64("capacity")
	}
	if capacity > Maxheapsize {
		panicerr("heap capacity %v exceeds %v", capacity, Maxheapsize)
	} else if capacity < 2*Headersize {
		panicerr("heap capacity %v too small", capacity)
	}
	heap := &Heap{
		// offset 0 is reserved padding, so that the zero Pointer
		// always reads as null.
		brk:       Headersize,
		buf:       make([]byte, capacity),
		capacity:  capacity,
		logprefix: "[heap]",
	}
	infof("%v new heap arena with capacity %v\n",
		heap.logprefix, humanize.Bytes(uint64(capacity)))
	return heap
}

// Sbrk reserve n fresh bytes from the arena and return the offset of
// the reserved region, false when the break would exceed capacity.
// Growth is serialized by the heap's growth mutex, this is the only
// critical section shared by every allocator variant.
func (heap *Heap) Sbrk(n int64) (int64, bool) {
	heap.mu.Lock()
	off, ok := heap.sbrk(n)
	heap.mu.Unlock()
	return off, ok
}

// Break return the current heap break.
func (heap *Heap) Break() int64 {
	return atomic.LoadInt64(&heap.brk)
}

// Capacity return the break limit for this arena.
func (heap *Heap) Capacity() int64 {
	return heap.capacity
}

// Chunklen return the usable length of the live chunk at ptr.
func (heap *Heap) Chunklen(ptr api.Pointer) int64 {
	return heap.blocksize(heap.blockof(ptr))
}

// Bytes return the payload of the live chunk at ptr. The slice
// aliases heap memory and is valid until the chunk is freed.
func (heap *Heap) Bytes(ptr api.Pointer) []byte {
	block := heap.blockof(ptr)
	off, size := int64(ptr), heap.blocksize(block)
	return heap.buf[off : off+size : off+size]
}

// Release the heap arena. Subsequent operations on the heap or on
// any allocator over it will panic.
func (heap *Heap) Release() {
	heap.mu.Lock()
	heap.buf = nil
	atomic.StoreInt64(&heap.brk, 0)
	heap.mu.Unlock()
	infof("%v released\n", heap.logprefix)
}

//---- local functions

// not safe for concurrent invocation, callers must serialize via
// the growth mutex.
func (heap *Heap) sbrk(n int64) (int64, bool) {
	if heap.buf == nil {
		panicerr("%v released", heap.logprefix)
	} else if n <= 0 {
		panicerr("%v sbrk size %v", heap.logprefix, n)
	}
	// brk never exceeds capacity, so the subtraction cannot wrap
	// even when n is huge.
	brk := atomic.LoadInt64(&heap.brk)
	if n > heap.capacity-brk {
		return 0, false
	}
	atomic.StoreInt64(&heap.brk, brk+n)
	debugf("%v sbrk %v, break %v -> %v\n", heap.logprefix, n, brk, brk+n)
	return brk, true
}

// blockof validate ptr and return the offset of its block header.
// Catches pointers outside the reserved heap, anything subtler is
// the caller's lookout.
func (heap *Heap) blockof(ptr api.Pointer) int64 {
	off := int64(ptr)
	if off < 2*Headersize || off > atomic.LoadInt64(&heap.brk) {
		panicerr("%v foreign pointer %v", heap.logprefix, off)
	}
	return off - Headersize
}
