//go:build debug
// +build debug

package malloc

// paint freshly carved payloads so that reads of uninitialized
// memory stand out while debugging.
func paintblock(payload []byte) {
	for i := range payload {
		payload[i] = 0xff
	}
}
