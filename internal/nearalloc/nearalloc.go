// Package nearalloc implements the near-address executable allocator:
// spec.md §4.2. Given a source code address and a required size, it returns
// an executable buffer within the ISA's short-branch reach of that address,
// scanning page by page upward from src-reach to src+reach.
package nearalloc

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/0xb-s/injectorpp/internal/memx"
)

// Allocation is spec.md's "trampoline allocation" triple: base address,
// size, and enough of a platform descriptor (just the size, here — release
// only needs addr+size on every backend this module supports) to release it
// exactly once.
type Allocation struct {
	Base uintptr
	Size uintptr
}

// Release frees the allocation. Safe to call at most once.
func (a *Allocation) Release() error {
	return memx.Release(a.Base, a.Size)
}

// BranchReach returns the ISA's short-branch displacement limit for arch
// (a GOARCH string). x86_64's JMP rel32 reaches ±2 GiB; AArch64's B imm26
// reaches ±128 MiB; every other architecture has no enforced limit and the
// OS is left to choose the address (spec.md §4.2).
func BranchReach(arch string) uint64 {
	switch arch {
	case "amd64":
		return 2 << 30
	case "arm64":
		return 128 << 20
	default:
		return math.MaxUint64
	}
}

var errExhausted = errors.New("nearalloc: exhausted address range without a usable allocation")

// Allocate returns executable memory within BranchReach(runtime.GOARCH) of
// src, sized to hold at least size bytes. Exhausting the range is returned
// as an error value and this package never panics; spec.md §7 makes
// "out-of-reach trampoline" fatal at the engine level, so the caller is the
// one that turns that error into a panic.
func Allocate(src uintptr, size uintptr) (*Allocation, error) {
	return allocate(src, size, runtime.GOARCH, memx.PageSize(), memx.ReserveCommitRX, memx.Release)
}

// reserveFunc and releaseFunc let tests drive the scan algorithm with a
// synthetic address space instead of real mmap/VirtualAlloc calls.
type reserveFunc func(hint, size uintptr) (uintptr, error)
type releaseFunc func(addr, size uintptr) error

// allocate is the reach-parameterized core, factored out so tests can drive
// it with a synthetic page size, arch, and allocator without touching real
// memory mappings.
func allocate(src uintptr, size uintptr, arch string, pageSize uintptr, reserve reserveFunc, release releaseFunc) (*Allocation, error) {
	reach := BranchReach(arch)

	if reach == math.MaxUint64 {
		// No branch-reach constraint: let the OS choose, no scan needed.
		base, err := reserve(0, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errExhausted, err)
		}
		return &Allocation{Base: base, Size: roundUp(size, pageSize)}, nil
	}

	var lo, hi uintptr
	if uint64(src) > reach {
		lo = src - uintptr(reach)
	} else {
		lo = 0
	}
	hi = src + uintptr(reach)

	for addr := lo; addr <= hi; addr += pageSize {
		base, err := reserve(addr, size)
		if err != nil {
			// Transient/refused hints are expected as the scan walks
			// through already-mapped regions; keep sweeping.
			if addr == hi {
				break
			}
			continue
		}

		if inRange(base, src, reach) {
			return &Allocation{Base: base, Size: roundUp(size, pageSize)}, nil
		}

		// The OS ignored the hint and handed back memory outside the
		// reach window: release it and keep scanning, per spec.md §4.2.
		_ = release(base, size)

		if addr == hi {
			break
		}
	}

	return nil, fmt.Errorf("%w: src=0x%x size=%d reach=%d", errExhausted, src, size, reach)
}

func inRange(base, src uintptr, reach uint64) bool {
	if reach == math.MaxUint64 {
		return true
	}
	var diff uint64
	if base >= src {
		diff = uint64(base - src)
	} else {
		diff = uint64(src - base)
	}
	return diff <= reach
}

func roundUp(size, pageSize uintptr) uintptr {
	if pageSize == 0 {
		return size
	}
	return (size + pageSize - 1) / pageSize * pageSize
}
