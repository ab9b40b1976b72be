//go:build (linux || darwin) && !cgo

package icache

import "errors"

// Without cgo there is no portable way to call __clear_cache or
// sys_icache_invalidate. This engine requires cache coherency for correct
// patching (spec.md §4.4), so building with CGO_ENABLED=0 on POSIX is a
// configuration this package refuses rather than silently risking stale
// prefetched instructions.
func flushRange(uintptr, uintptr) error {
	return errors.New("icache: instruction cache flush requires cgo on this platform")
}
