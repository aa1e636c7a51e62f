package malloc

import "sync"
import "unsafe"

import "github.com/bnclabs/tsmalloc/api"

// LockAlloc is the locking allocator variant. One free list is
// shared by all threads of execution and a single mutex covers both
// the list operations and, on a miss, the heap growth step, so
// every Alloc and Free across threads is totally ordered.
type LockAlloc struct {
	// 64-bit aligned stats
	mallocated int64 // payload bytes currently live

	mu   sync.Mutex
	heap *Heap
	fl   freelist
}

// NewLockAlloc create a locking allocator over heap. Safe for
// concurrent use from any number of goroutines.
func NewLockAlloc(heap *Heap) *LockAlloc {
	ma := &LockAlloc{heap: heap, fl: freelist{heap: heap}}
	infof("%v new lock allocator\n", heap.logprefix)
	return ma
}

// Alloc implement api.Mallocer{} interface.
func (ma *LockAlloc) Alloc(n int64) api.Pointer {
	// requests beyond capacity can never be served, reject before
	// Headersize+n can wrap around.
	if n <= 0 || n > ma.heap.capacity {
		return api.Null
	}
	ma.mu.Lock()
	if block, ok := ma.fl.search(n); ok {
		ma.mallocated += ma.heap.blocksize(block)
		ma.mu.Unlock()
		return api.Pointer(block + Headersize)
	}
	block, ok := ma.heap.Sbrk(Headersize + n)
	if !ok {
		ma.mu.Unlock()
		return api.Null
	}
	ma.heap.initblock(block, n)
	ma.mallocated += n
	ma.mu.Unlock()
	return api.Pointer(block + Headersize)
}

// Free implement api.Mallocer{} interface.
func (ma *LockAlloc) Free(ptr api.Pointer) {
	if ptr == api.Null {
		return
	}
	block := ma.heap.blockof(ptr)
	ma.mu.Lock()
	ma.mallocated -= ma.heap.blocksize(block)
	ma.fl.insert(block)
	ma.mu.Unlock()
}

// Info implement api.Mallocer{} interface.
func (ma *LockAlloc) Info() (capacity, heap, alloc, overhead int64) {
	ma.mu.Lock()
	capacity, heap = ma.heap.capacity, ma.heap.Break()
	alloc = ma.mallocated
	// headers for live and free blocks, plus self.
	overhead = heap - Headersize - alloc - ma.fl.freebytes()
	overhead += int64(unsafe.Sizeof(*ma))
	ma.mu.Unlock()
	return
}

// Utilization implement api.Mallocer{} interface.
func (ma *LockAlloc) Utilization() float64 {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if brk := ma.heap.Break() - Headersize; brk > 0 {
		return float64(ma.mallocated) / float64(brk)
	}
	return 0
}

// Release implement api.Mallocer{} interface. Releases the
// underlying heap arena.
func (ma *LockAlloc) Release() {
	ma.mu.Lock()
	ma.fl.head, ma.mallocated = 0, 0
	ma.mu.Unlock()
	ma.heap.Release()
}

// Freeblocks return (offset, size) of every free block in list
// order, for statistics and invariant checks.
func (ma *LockAlloc) Freeblocks() (offs, sizes []int64) {
	ma.mu.Lock()
	offs, sizes = ma.fl.blocks()
	ma.mu.Unlock()
	return
}
