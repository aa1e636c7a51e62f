// Package malloc supplies thread safe dynamic memory management
// over a single heap arena, with a limited scope:
//
//  * Heap memory is obtained from OS as one growable arena and is
//    never given back until the heap is Released.
//  * Free memory is tracked in an address ordered free list, served
//    best-fit, split on oversized hits and coalesced with physical
//    neighbours on free.
//  * Chunks are sized exactly as requested, there is no rounding to
//    size classes.
//  * Chunks are referenced by their byte offset into the arena,
//    api.Pointer, never by raw pointers.
//
// Two allocator variants are supplied over the same free list
// algorithm. LockAlloc guards one shared free list with a single
// mutex, covering both the list operations and heap growth.
// NolockAlloc gives each thread of execution its own free list, so
// list operations need no lock at all; only the heap growth step,
// which advances a process wide resource, is serialized through the
// heap's growth mutex.
//
// A chunk allocated through one NolockAlloc instance and freed
// through another re-enters the freeing instance's list. Capacity
// migrates between per-thread pools on cross-thread frees, it is
// not returned to a global pool.
//
// Freeing a pointer that was not obtained from a prior Alloc on the
// same heap, or freeing it twice, is a caller bug. Where cheaply
// detectable it panics, otherwise behaviour is undefined.
package malloc
