package main

import "flag"
import "fmt"
import "log"
import "math/rand"
import "runtime"
import "sync"
import "time"

import hm "github.com/dustin/go-humanize"

import "github.com/bnclabs/tsmalloc/api"
import "github.com/bnclabs/tsmalloc/malloc"

var stressopts struct {
	capacity  int64
	allocator string
	n         int
	par       int
	ncpu      int
	sizemax   int
	seed      int
}

func parseStressopts(args []string) {
	f := flag.NewFlagSet("stress", flag.ExitOnError)

	f.Int64Var(&stressopts.capacity, "capacity", 1024*1024*1024,
		"heap arena capacity in bytes")
	f.StringVar(&stressopts.allocator, "allocator", "lock",
		"allocator variant, lock or nolock")
	f.IntVar(&stressopts.n, "n", 1000000,
		"number of alloc/free cycles per goroutine")
	f.IntVar(&stressopts.par, "par", 8,
		"no. of concurrent goroutines")
	f.IntVar(&stressopts.ncpu, "ncpu", runtime.NumCPU(),
		"set number cores to use.")
	f.IntVar(&stressopts.sizemax, "sizemax", 512,
		"chunk sizes are picked from [1,sizemax]")
	f.IntVar(&stressopts.seed, "seed", time.Now().UTC().Second(),
		"random seed")
	f.Parse(args)

	fmt.Printf("seed: %v\n", stressopts.seed)
	setCPU(stressopts.ncpu)
}

func doStress(args []string) {
	parseStressopts(args)

	setts := malloc.Defaultsettings()
	setts["allocator"] = stressopts.allocator
	heap := malloc.NewHeap(stressopts.capacity, setts)

	var shared *malloc.LockAlloc
	switch stressopts.allocator {
	case "lock":
		shared = malloc.NewLockAlloc(heap)
	case "nolock":
	default:
		log.Fatalf("unknown allocator %q", stressopts.allocator)
	}

	var wg sync.WaitGroup
	now := time.Now()
	wg.Add(stressopts.par)
	for i := 0; i < stressopts.par; i++ {
		go func(id int) {
			defer wg.Done()
			var ma api.Mallocer
			if shared != nil {
				ma = shared
			} else {
				ma = malloc.NewNolockAlloc(heap)
			}
			stress(heap, ma, id)
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(now)

	total := int64(stressopts.par) * int64(stressopts.n)
	fmt.Printf("%v alloc/free cycles in %v, %v/second\n",
		total, elapsed, int64(float64(total)/elapsed.Seconds()))
	if shared != nil {
		printinfo(shared)
	}
	fmt.Printf("heap break: %v of %v\n",
		hm.Bytes(uint64(heap.Break())), hm.Bytes(uint64(heap.Capacity())))
}

// keep a bounded working set per goroutine, freeing a random member
// once full, verifying the fill pattern before every free.
func stress(heap *malloc.Heap, ma api.Mallocer, id int) {
	rnd := rand.New(rand.NewSource(int64(stressopts.seed) + int64(id)))
	live := make([]api.Pointer, 0, 128)
	for i := 0; i < stressopts.n; i++ {
		size := int64(rnd.Intn(stressopts.sizemax) + 1)
		ptr := ma.Alloc(size)
		if ptr == api.Null {
			log.Fatalf("allocation failure after %v cycles", i)
		}
		block := heap.Bytes(ptr)
		for j := range block {
			block[j] = byte(id)
		}
		live = append(live, ptr)
		if len(live) == cap(live) {
			k := rnd.Intn(len(live))
			for _, c := range heap.Bytes(live[k]) {
				if c != byte(id) {
					log.Fatalf("chunk corrupted, got %v want %v", c, id)
				}
			}
			ma.Free(live[k])
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}
	for _, ptr := range live {
		ma.Free(ptr)
	}
	validateblocks(ma.Freeblocks())
}

// free blocks must stay address sorted with no two physically
// adjacent.
func validateblocks(offs, sizes []int64) {
	for i := 1; i < len(offs); i++ {
		if offs[i-1] >= offs[i] {
			log.Fatalf("free list out of order: %v then %v", offs[i-1], offs[i])
		}
		if offs[i-1]+malloc.Headersize+sizes[i-1] == offs[i] {
			log.Fatalf("adjacent free blocks %v and %v", offs[i-1], offs[i])
		}
	}
}

func printinfo(ma api.Mallocer) {
	capacity, heap, alloc, overhead := ma.Info()
	fmt.Printf("capacity: %10v\n", hm.Bytes(uint64(capacity)))
	fmt.Printf("heap:     %10v\n", hm.Bytes(uint64(heap)))
	fmt.Printf("alloc:    %10v\n", hm.Bytes(uint64(alloc)))
	fmt.Printf("overhead: %10v\n", hm.Bytes(uint64(overhead)))
	fmt.Printf("utilization: %.2f%%\n", ma.Utilization()*100)
}
