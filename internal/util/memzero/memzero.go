// Package memzero wipes sensitive buffers.
package memzero

import "runtime"

// Zero overwrites b with zeros. Best-effort: b is kept live until after the
// loop so the write is not elided.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
