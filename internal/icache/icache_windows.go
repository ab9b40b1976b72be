//go:build windows

package icache

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// flushRange calls FlushInstructionCache over [addr, addr+size) against the
// current process, generalizing the teacher's raw
// kernel32.NewProc("FlushInstructionCache") call to golang.org/x/sys/windows.
func flushRange(addr uintptr, size uintptr) error {
	proc, err := windows.GetCurrentProcess()
	if err != nil {
		return fmt.Errorf("GetCurrentProcess: %w", err)
	}
	if err := windows.FlushInstructionCache(proc, addr, size); err != nil {
		return fmt.Errorf("FlushInstructionCache: %w", err)
	}
	return nil
}
