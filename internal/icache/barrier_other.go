//go:build !arm64

package icache

// barrier is a no-op on every architecture other than AArch64: spec.md §4.4
// only requires the DSB SY; ISB pipeline sync on AArch64, where prefetched
// instruction streams are not kept coherent with data writes automatically.
func barrier() {}
