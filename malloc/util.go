package malloc

import "fmt"

import s "github.com/bnclabs/gosettings"

import "github.com/bnclabs/tsmalloc/api"

// New create an allocator over heap as per the "allocator" setting,
// "lock" for LockAlloc and "nolock" for NolockAlloc. A "nolock"
// instance must stay with the calling goroutine.
func New(heap *Heap, setts s.Settings) api.Mallocer {
	switch alg := setts.String("allocator"); alg {
	case "lock":
		return NewLockAlloc(heap)
	case "nolock":
		return NewNolockAlloc(heap)
	default:
		panicerr("unknown allocator %q", alg)
	}
	panic("unreachable code")
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
