// Package icache synchronizes the instruction cache and, on AArch64, the
// CPU pipeline after code has been written to memory that will be executed.
// spec.md §4.4: this must run after both installing a patch and restoring
// the original bytes, or another core may execute stale prefetched
// instructions.
package icache

// Flush invalidates the instruction cache for [addr, addr+size) and, on
// AArch64, additionally drains the data pipeline and refetches instructions
// on the current core (DSB SY; ISB). The two steps are always performed
// together from the patch lifecycle's point of view, so this single entry
// point sequences both rather than leaving call sites to remember the
// AArch64-only second step.
func Flush(addr uintptr, size uintptr) error {
	if size == 0 {
		return nil
	}
	if err := flushRange(addr, size); err != nil {
		return err
	}
	barrier()
	return nil
}
