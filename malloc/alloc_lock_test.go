package malloc

import "fmt"
import "math"
import "testing"

import s "github.com/bnclabs/gosettings"

import "github.com/bnclabs/tsmalloc/api"

var _ = fmt.Sprintf("dummy")

func TestLockAllocZero(t *testing.T) {
	heap := NewHeap(4096, Defaultsettings())
	ma := NewLockAlloc(heap)

	brk := heap.Break()
	if ptr := ma.Alloc(0); ptr != api.Null {
		t.Errorf("expected null, got %v", ptr)
	}
	if ptr := ma.Alloc(-10); ptr != api.Null {
		t.Errorf("expected null, got %v", ptr)
	}
	if x := heap.Break(); x != brk {
		t.Errorf("expected break %v, got %v", brk, x)
	}
	if offs, _ := ma.Freeblocks(); len(offs) != 0 {
		t.Errorf("expected empty free list, got %v blocks", len(offs))
	}
}

func TestLockAllocRoundtrip(t *testing.T) {
	heap := NewHeap(1024*1024, Defaultsettings())
	ma := NewLockAlloc(heap)

	ptrs := make([]api.Pointer, 0, 100)
	for i := 0; i < 100; i++ {
		n := int64(i + 1)
		ptr := ma.Alloc(n)
		if ptr == api.Null {
			t.Fatalf("unexpected allocation failure at %v", i)
		}
		block := heap.Bytes(ptr)
		if int64(len(block)) < n {
			t.Fatalf("expected at least %v bytes, got %v", n, len(block))
		}
		for j := range block {
			block[j] = byte(i)
		}
		ptrs = append(ptrs, ptr)
	}
	// writes through one chunk never bleed into another.
	for i, ptr := range ptrs {
		for _, c := range heap.Bytes(ptr) {
			if c != byte(i) {
				t.Fatalf("chunk %v corrupted, got %v", i, c)
			}
		}
	}
	for _, ptr := range ptrs {
		ma.Free(ptr)
	}
	if alloc := ma.mallocated; alloc != 0 {
		t.Errorf("expected 0 allocated, got %v", alloc)
	}
}

func TestLockAllocReuse(t *testing.T) {
	heap := NewHeap(4096, Defaultsettings())
	ma := NewLockAlloc(heap)

	ptr := ma.Alloc(64)
	ma.Free(ptr)
	// perfect fit from the free list, the heap does not grow.
	brk := heap.Break()
	if x := ma.Alloc(64); x != ptr {
		t.Errorf("expected %v, got %v", ptr, x)
	}
	if x := heap.Break(); x != brk {
		t.Errorf("expected break %v, got %v", brk, x)
	}
}

func TestLockAllocExhausted(t *testing.T) {
	heap := NewHeap(1024, Defaultsettings())
	ma := NewLockAlloc(heap)

	if ptr := ma.Alloc(2048); ptr != api.Null {
		t.Errorf("expected null, got %v", ptr)
	}
	// sizes near MaxInt64 must yield null, not wrap Headersize+n
	// or the break arithmetic.
	for _, n := range []int64{
		math.MaxInt64, math.MaxInt64 - 8, math.MaxInt64 - Headersize,
	} {
		if ptr := ma.Alloc(n); ptr != api.Null {
			t.Errorf("size %v: expected null, got %v", n, ptr)
		}
	}
	// failed growth leaves no partial state behind.
	if x := heap.Break(); x != Headersize {
		t.Errorf("expected break %v, got %v", Headersize, x)
	}
	if offs, _ := ma.Freeblocks(); len(offs) != 0 {
		t.Errorf("expected empty free list, got %v blocks", len(offs))
	}
	if ptr := ma.Alloc(256); ptr == api.Null {
		t.Errorf("unexpected allocation failure")
	}
}

func TestLockAllocFree(t *testing.T) {
	heap := NewHeap(4096, Defaultsettings())
	ma := NewLockAlloc(heap)

	ma.Free(api.Null) // no-op

	ptr := ma.Alloc(100)
	ma.Free(ptr)
	offs, sizes := ma.Freeblocks()
	if len(offs) != 1 {
		t.Fatalf("expected 1 block, got %v", len(offs))
	} else if sizes[0] != 100 {
		t.Errorf("expected size 100, got %v", sizes[0])
	}

	// freeing a pointer the heap never issued.
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		ma.Free(api.Pointer(heap.Capacity() * 2))
	}()
}

func TestLockAllocInfo(t *testing.T) {
	heap := NewHeap(1024*1024, Defaultsettings())
	ma := NewLockAlloc(heap)

	capacity, brk, alloc, overhead := ma.Info()
	if capacity != 1024*1024 {
		t.Errorf("unexpected capacity %v", capacity)
	} else if brk != Headersize {
		t.Errorf("unexpected heap %v", brk)
	} else if alloc != 0 {
		t.Errorf("unexpected alloc %v", alloc)
	}

	ptr1 := ma.Alloc(100)
	ma.Alloc(200)
	_, brk, alloc, overhead = ma.Info()
	if ref := int64(100 + 200 + 2*Headersize + Headersize); brk != ref {
		t.Errorf("expected heap %v, got %v", ref, brk)
	} else if alloc != 300 {
		t.Errorf("expected alloc 300, got %v", alloc)
	}

	ma.Free(ptr1)
	_, _, alloc, overhead = ma.Info()
	if alloc != 200 {
		t.Errorf("expected alloc 200, got %v", alloc)
	} else if overhead <= 0 {
		t.Errorf("unexpected overhead %v", overhead)
	}

	if x := ma.Utilization(); x <= 0 || x >= 1 {
		t.Errorf("unexpected utilization %v", x)
	}
}

func TestNewAllocator(t *testing.T) {
	heap := NewHeap(4096, Defaultsettings())
	setts := Defaultsettings()
	if _, ok := New(heap, setts).(*LockAlloc); !ok {
		t.Errorf("expected *LockAlloc")
	}
	setts["allocator"] = "nolock"
	if _, ok := New(heap, setts).(*NolockAlloc); !ok {
		t.Errorf("expected *NolockAlloc")
	}
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		New(heap, s.Settings{"allocator": "buddy"})
	}()
}

func BenchmarkLockAlloc(b *testing.B) {
	heap := NewHeap(1024*1024*1024, Defaultsettings())
	ma := NewLockAlloc(heap)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ma.Alloc(96)
	}
}

func BenchmarkLockFree(b *testing.B) {
	heap := NewHeap(1024*1024*1024, Defaultsettings())
	ma := NewLockAlloc(heap)
	ptrs := make([]api.Pointer, 0, b.N)
	for i := 0; i < b.N; i++ {
		ptrs = append(ptrs, ma.Alloc(96))
	}
	b.ResetTimer()
	for _, ptr := range ptrs {
		ma.Free(ptr)
	}
}

func BenchmarkLockInfo(b *testing.B) {
	heap := NewHeap(1024*1024, Defaultsettings())
	ma := NewLockAlloc(heap)
	for i := 0; i < 1024; i++ {
		ma.Alloc(96)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ma.Info()
	}
}
