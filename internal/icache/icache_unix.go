//go:build (linux || darwin) && cgo

package icache

/*
#include <stdint.h>
#include <stddef.h>

#if defined(__APPLE__)
#include <libkern/OSCacheControl.h>
static void injectorpp_clear_cache(uintptr_t start, uintptr_t end) {
	sys_icache_invalidate((void *)start, (size_t)(end - start));
}
#else
static void injectorpp_clear_cache(uintptr_t start, uintptr_t end) {
	__builtin___clear_cache((char *)start, (char *)end);
}
#endif
*/
import "C"

// flushRange invalidates the instruction cache for [addr, addr+size) using
// the compiler builtin on Linux and the Darwin libkern call on macOS,
// following the same technique as the retrieved testaroli reference
// (override_arm64.go's flush_cache), generalized to both POSIX targets this
// engine supports.
func flushRange(addr uintptr, size uintptr) error {
	C.injectorpp_clear_cache(C.uintptr_t(addr), C.uintptr_t(addr+size))
	return nil
}
