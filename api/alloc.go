// Package api define interfaces and scalar types to access tsmalloc
// data-structures.
package api

// Pointer reference an allocated chunk within a heap arena, as byte
// offset to the chunk's payload. Chunk metadata lives immediately
// before the payload, hence a valid Pointer is never zero.
type Pointer int64

// Null pointer, returned by Alloc for zero sized or unsatisfiable
// requests and ignored by Free.
const Null Pointer = 0

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Alloc allocate a chunk of exactly `n` bytes. Returns Null
	// when n <= 0 or when the heap cannot grow any further.
	Alloc(n int64) Pointer

	// Free chunk back to the allocator. Null is a no-op. The pointer
	// must have been obtained from a prior Alloc on the same heap
	// and not already freed, else behaviour is undefined.
	Free(ptr Pointer)

	// Info of memory accounting for this allocator.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization ratio between allocated memory and heap memory
	// obtained from OS.
	Utilization() float64

	// Freeblocks return (offset, size) of free chunks in address
	// order, for statistics and invariant checks.
	Freeblocks() (offs, sizes []int64)

	// Release the heap arena and all its resources.
	Release()
}
