//go:build !debug
// +build !debug

package malloc

// payload content after Alloc is undefined, reused chunks carry
// stale bytes.
func paintblock(payload []byte) {
}
