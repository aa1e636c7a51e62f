package malloc

import "unsafe"

import "github.com/bnclabs/tsmalloc/api"

// NolockAlloc is the thread-local allocator variant. Each thread of
// execution constructs its own instance over a shared heap; the
// instance's free list is touched only by its owner, so list
// operations take no lock at all. The single shared critical
// section is the heap growth step, serialized inside Heap.Sbrk.
//
// A chunk allocated by one instance may be freed through another,
// the chunk then re-enters the freeing instance's list.
type NolockAlloc struct {
	// 64-bit aligned stats
	mallocated int64 // payload bytes this instance allocated minus freed

	heap *Heap
	fl   freelist
}

// NewNolockAlloc create a thread-local allocator over heap. The
// returned instance must be used by a single goroutine, construct
// one per goroutine.
func NewNolockAlloc(heap *Heap) *NolockAlloc {
	ma := &NolockAlloc{heap: heap, fl: freelist{heap: heap}}
	debugf("%v new nolock allocator\n", heap.logprefix)
	return ma
}

// Alloc implement api.Mallocer{} interface.
func (ma *NolockAlloc) Alloc(n int64) api.Pointer {
	// requests beyond capacity can never be served, reject before
	// Headersize+n can wrap around.
	if n <= 0 || n > ma.heap.capacity {
		return api.Null
	}
	if block, ok := ma.fl.search(n); ok {
		ma.mallocated += ma.heap.blocksize(block)
		return api.Pointer(block + Headersize)
	}
	block, ok := ma.heap.Sbrk(Headersize + n)
	if !ok {
		return api.Null
	}
	ma.heap.initblock(block, n)
	ma.mallocated += n
	return api.Pointer(block + Headersize)
}

// Free implement api.Mallocer{} interface.
func (ma *NolockAlloc) Free(ptr api.Pointer) {
	if ptr == api.Null {
		return
	}
	block := ma.heap.blockof(ptr)
	ma.mallocated -= ma.heap.blocksize(block)
	ma.fl.insert(block)
}

// Info implement api.Mallocer{} interface. Accounts only this
// instance's free list, the heap break is shared. alloc is this
// instance's allocated-minus-freed bytes and goes negative for an
// instance that frees more chunks than it allocated, capacity
// migrates in through cross-instance frees.
func (ma *NolockAlloc) Info() (capacity, heap, alloc, overhead int64) {
	capacity, heap = ma.heap.capacity, ma.heap.Break()
	alloc = ma.mallocated
	overhead = int64(unsafe.Sizeof(*ma))
	for curr := ma.fl.head; curr != 0; curr = ma.heap.blocklink(curr) {
		overhead += Headersize
	}
	return
}

// Utilization implement api.Mallocer{} interface. Reports zero for
// an instance whose accounting went negative on cross-instance
// frees, see Info.
func (ma *NolockAlloc) Utilization() float64 {
	if brk := ma.heap.Break() - Headersize; brk > 0 && ma.mallocated > 0 {
		return float64(ma.mallocated) / float64(brk)
	}
	return 0
}

// Release implement api.Mallocer{} interface. Releases the
// underlying heap arena shared by every instance.
func (ma *NolockAlloc) Release() {
	ma.fl.head, ma.mallocated = 0, 0
	ma.heap.Release()
}

// Freeblocks return (offset, size) of every free block in this
// instance's list, in list order.
func (ma *NolockAlloc) Freeblocks() (offs, sizes []int64) {
	return ma.fl.blocks()
}
