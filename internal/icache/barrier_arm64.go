//go:build arm64

package icache

// barrier issues DSB SY; ISB (see barrier_arm64.s) to drain the data
// pipeline and force the current core to refetch instructions, per
// spec.md §4.4. No corpus example exposes this as a plain function call —
// it is one CPU instruction pair with no syscall equivalent — so it is
// hand-written Go assembly, the one assembly file in this module, matching original_source/common.rs's own
// `core::arch::asm!("dsb sy", "isb", ...)`.
func barrier()
