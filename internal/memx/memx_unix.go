//go:build linux || darwin

package memx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageSize returns the OS page size.
func PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// ReserveCommitRX reserves and commits an anonymous, private mapping backed
// with read/write/execute protection, hinted at addr. Linux and Darwin both
// treat a non-zero mmap address argument as a hint (not MAP_FIXED): if the
// kernel cannot honor it, it silently picks a different address instead of
// failing, which is exactly the behavior the near-allocator's scan relies
// on. golang.org/x/sys/unix.Mmap does not expose the address parameter, so
// this calls the mmap(2) syscall directly the way the teacher's Windows
// backend calls VirtualAlloc directly through syscall.NewLazyDLL.
func ReserveCommitRX(hint uintptr, size uintptr) (uintptr, error) {
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		hint,
		size,
		uintptr(unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANON),
		^uintptr(0), // fd = -1
		0,
	)
	if errno != 0 {
		return 0, fmt.Errorf("mmap: %w", errno)
	}
	return ret, nil
}

// MakeRWX changes the protection of the page(s) covering [pageStart,
// pageStart+size) to read/write/execute. It is idempotent: calling it on an
// already-RWX page succeeds.
func MakeRWX(pageStart uintptr, size uintptr) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), size) //nolint:govet
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect: %w", err)
	}
	return nil
}

// Release unmaps a reservation previously returned by ReserveCommitRX.
func Release(addr uintptr, size uintptr) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size) //nolint:govet
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
