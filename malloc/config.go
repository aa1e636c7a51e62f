package malloc

import s "github.com/bnclabs/gosettings"
import "github.com/cloudfoundry/gosigar"

// Headersize size of the metadata placed immediately before every
// chunk's payload, 8 byte usable-size followed by 8 byte link offset.
// The link offset is meaningful only while the chunk is free.
const Headersize = int64(16)

// Maxheapsize maximum size of a heap arena. Can be used as default
// capacity for NewHeap().
const Maxheapsize = int64(1024 * 1024 * 1024 * 1024) // 1TB

// Defaultsettings for heap arena and its allocators.
//
// "capacity" (int64, default: half of free system memory)
//		Maximum size, in bytes, the heap arena can grow to. Sbrk
//		fails once the heap break reaches capacity.
//
// "allocator" (string, default: "lock")
//		Allocator variant, can be "lock" or "nolock". A "nolock"
//		allocator instance must be confined to one goroutine.
func Defaultsettings() s.Settings {
	_, _, free := getsysmem()
	return s.Settings{
		"capacity":  int64(free / 2),
		"allocator": "lock",
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
