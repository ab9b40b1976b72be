//go:build !linux && !darwin && !windows && unix

package memx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// This file backs every other Unix golang.org/x/sys/unix supports
// (freebsd, openbsd, netbsd, solaris, ...). spec.md §4.2 only promises a
// branch-reach guarantee on x86_64/AArch64; everywhere else the OS chooses
// the address and the hint is advisory at best, so this intentionally
// reuses the exact same mmap-as-hint idiom as memx_unix.go.

func PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

func ReserveCommitRX(hint uintptr, size uintptr) (uintptr, error) {
	ret, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		hint,
		size,
		uintptr(unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANON),
		^uintptr(0),
		0,
	)
	if errno != 0 {
		return 0, fmt.Errorf("mmap: %w", errno)
	}
	return ret, nil
}

func MakeRWX(pageStart uintptr, size uintptr) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), size) //nolint:govet
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect: %w", err)
	}
	return nil
}

func Release(addr uintptr, size uintptr) error {
	region := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size) //nolint:govet
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
