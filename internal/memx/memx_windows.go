//go:build windows

package memx

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// PageSize returns the Windows system page size (SYSTEM_INFO.dwPageSize,
// via windows.Getpagesize which wraps GetSystemInfo).
func PageSize() uintptr {
	return uintptr(windows.Getpagesize())
}

// ReserveCommitRX reserves and commits memory in one VirtualAlloc call with
// PAGE_EXECUTE_READWRITE, hinted at addr. Like the POSIX backend, a
// non-matching hint is not an error: VirtualAlloc either honors the address
// or (when it cannot) returns memory elsewhere, which the near-allocator's
// caller detects by range-checking the result.
func ReserveCommitRX(hint uintptr, size uintptr) (uintptr, error) {
	addr, err := windows.VirtualAlloc(hint, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return 0, fmt.Errorf("VirtualAlloc: %w", err)
	}
	return addr, nil
}

// MakeRWX changes protection of the page(s) covering [pageStart,
// pageStart+size) to PAGE_EXECUTE_READWRITE. Idempotent.
func MakeRWX(pageStart uintptr, size uintptr) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(pageStart, size, windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect: %w", err)
	}
	return nil
}

// Release frees a reservation previously returned by ReserveCommitRX.
// VirtualFree with MEM_RELEASE requires size to be 0 and releases the whole
// allocation the base address belongs to.
func Release(addr uintptr, _ uintptr) error {
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("VirtualFree: %w", err)
	}
	return nil
}
