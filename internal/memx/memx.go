// Package memx exposes the four platform memory primitives the rest of the
// engine is built on: page size, a hinted executable reservation, an
// idempotent protection change to RWX, and release. Every OS backend
// implements the same four functions; callers never branch on GOOS
// themselves.
package memx

import "errors"

// ErrHintIgnored is not returned by any of ReserveCommitRX's backends — the
// near-allocator detects a mismatched hint by comparing the returned
// address, not by inspecting errors. It is kept here as a documented
// possibility for backends that can detect and report it directly.
var ErrHintIgnored = errors.New("memx: platform placed the reservation outside the requested address")

// Reservation describes one reserve_commit_rx result. Size is always
// rounded up to a whole number of pages by the backend.
type Reservation struct {
	Addr uintptr
	Size uintptr
}
