// Package tsmalloc implements thread safe dynamic memory allocation
// over a single growable heap arena, along with necessary tools and
// libraries.
//
// api:
//
// Interface specification and scalar types to access tsmalloc
// allocators.
//
// malloc:
//
// Best-fit, address-ordered free-list allocation with boundary
// coalescing, in two thread safe variants. One variant guards a
// single shared free list with a mutex, the other gives every
// thread of execution its own free list and serializes only the
// heap growth step.
package tsmalloc
