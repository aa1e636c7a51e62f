// Free list operations are not thread safe, callers own the
// synchronization.

package malloc

// freelist is a singly linked list of free blocks threaded through
// their headers, kept sorted by block offset. No two blocks in the
// list are ever physically adjacent, insert coalesces such pairs on
// the spot.
type freelist struct {
	heap *Heap
	head int64 // offset of the first free block, 0 when empty
}

// insert a freed block at its sorted position and coalesce with the
// physical neighbours. The successor is merged before the
// predecessor, so that the predecessor merge sees the grown size.
func (fl *freelist) insert(block int64) {
	heap := fl.heap

	var prev int64
	curr := fl.head
	for curr != 0 && curr < block {
		prev, curr = curr, heap.blocklink(curr)
	}

	heap.setblocklink(block, curr)
	if prev != 0 {
		heap.setblocklink(prev, block)
	} else {
		fl.head = block
	}

	if curr != 0 && heap.blockend(block) == curr {
		heap.setblocksize(block, heap.blocksize(block)+Headersize+heap.blocksize(curr))
		heap.setblocklink(block, heap.blocklink(curr))
	}
	if prev != 0 && heap.blockend(prev) == block {
		heap.setblocksize(prev, heap.blocksize(prev)+Headersize+heap.blocksize(block))
		heap.setblocklink(prev, heap.blocklink(block))
	}
}

// search the list for the best fitting block of at least n usable
// bytes, unlink and return it. The scan keeps the first smallest
// qualifier and stops early on a perfect fit. An oversized hit is
// split when the remainder can hold a header plus at least one
// payload byte, and the remainder re-enters the list.
func (fl *freelist) search(n int64) (int64, bool) {
	heap := fl.heap

	var prev, best, bestprev int64
	curr := fl.head
	for curr != 0 {
		if size := heap.blocksize(curr); size >= n {
			if best == 0 || size < heap.blocksize(best) {
				best, bestprev = curr, prev
			}
			if heap.blocksize(best) == n { // perfect fit
				break
			}
		}
		prev, curr = curr, heap.blocklink(curr)
	}
	if best == 0 {
		return 0, false
	}

	if bestprev != 0 {
		heap.setblocklink(bestprev, heap.blocklink(best))
	} else {
		fl.head = heap.blocklink(best)
	}
	heap.setblocklink(best, 0)

	if size := heap.blocksize(best); size >= n+Headersize+1 {
		remainder := best + Headersize + n
		heap.setblocksize(remainder, size-n-Headersize)
		heap.setblocklink(remainder, 0)
		heap.setblocksize(best, n)
		fl.insert(remainder)
	}
	return best, true
}

// blocks return the list's (offset, size) pairs in list order, for
// accounting and invariant checks.
func (fl *freelist) blocks() (offs, sizes []int64) {
	for curr := fl.head; curr != 0; curr = fl.heap.blocklink(curr) {
		offs = append(offs, curr)
		sizes = append(sizes, fl.heap.blocksize(curr))
	}
	return offs, sizes
}

// freebytes total payload bytes held by the list.
func (fl *freelist) freebytes() int64 {
	total := int64(0)
	for curr := fl.head; curr != 0; curr = fl.heap.blocklink(curr) {
		total += fl.heap.blocksize(curr)
	}
	return total
}
