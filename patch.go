// Package injectorpp patches a live function's prologue at runtime so calls
// to it transfer to a trampoline instead, for use by native test doubles.
// spec.md §1: src is rewritten in place; a trampoline holds the target
// address or the constant boolean, built and placed by the near-allocator so
// the rewritten prologue can always reach it with a single short branch.
package injectorpp

import (
	"fmt"
	"unsafe"

	"github.com/0xb-s/injectorpp/internal/icache"
	"github.com/0xb-s/injectorpp/internal/memx"
	"github.com/0xb-s/injectorpp/internal/nearalloc"
	"github.com/0xb-s/injectorpp/internal/strategy"
)

// noCopy flags accidental by-value copies of Handle under `go vet
// -copylocks`. It has Lock/Unlock methods for that purpose only; nothing
// actually locks it. Grounded on the standard library's own sync.noCopy
// idiom (sync/cond.go).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// patchRecord is spec.md §3's "patch record": everything needed to restore a
// function to its pre-patch state.
type patchRecord struct {
	funcAddr      CodeAddr
	originalBytes []byte
	trampoline    *nearalloc.Allocation
}

// Handle owns one installed patch. It is returned by Replace/ReturnBool and
// must be released with Close exactly once; it must never be copied by
// value — hold *Handle, never Handle (spec.md §3).
type Handle struct {
	_ noCopy

	rec         patchRecord
	teardownErr error
}

// TeardownErr reports whether Close's OS-primitive calls failed. Close never
// panics, so a caller that cares about teardown failure checks this after
// calling it; spec.md §4.7 calls for teardown failures to be "logged and
// swallowed" and no logger exists in this module (SPEC_FULL.md §2.1), so
// this field is the retained record instead.
func (h *Handle) TeardownErr() error { return h.teardownErr }

// Replace installs a patch at src that transfers execution to tgt.
// Construction follows spec.md §4.7's seven steps in order. A zero src is
// returned as a *FatalError of KindMisuse; every failure after that check
// panics as *FatalError rather than returning, since spec.md §6 treats
// every construction failure as fatal.
func Replace(src, tgt CodeAddr) (*Handle, error) {
	return install(src, strategy.New().BuildReplaceTrampoline(tgt.Addr()))
}

// ReturnBool installs a patch at src that unconditionally returns v without
// executing any of the original function body.
func ReturnBool(src CodeAddr, v bool) (*Handle, error) {
	return install(src, strategy.New().BuildReturnBoolTrampoline(v))
}

// install runs the seven-step construction sequence spec.md §4.7 specifies
// for both Replace and ReturnBool, which differ only in the trampoline body.
func install(src CodeAddr, trampolineBody []byte) (h *Handle, err error) {
	if src.IsZero() {
		return nil, fatalf(KindMisuse, "install", errNilCodeAddr)
	}
	strat := strategy.New()

	// 1. Preflight the window.
	window, err := readWindow(src.Addr(), strat.PatchWindowSize())
	if err != nil {
		panicFatal(KindOSPrimitive, "install: read window", err)
	}
	verdict, err := strat.Preflight(window)
	if err != nil {
		panicFatal(KindMisuse, "install: preflight", err)
	}
	if !verdict.OK {
		panicFatal(KindUnsafeTarget, "install: preflight", fmt.Errorf("unsafe at offset %d: %s", verdict.Offset, verdict.Reason))
	}

	// 2. Snapshot original_bytes.
	originalBytes := append([]byte(nil), window...)

	// 3. Allocate the trampoline via the near-allocator.
	alloc, err := nearalloc.Allocate(src.Addr(), uintptr(len(trampolineBody)))
	if err != nil {
		panicFatal(KindOutOfReach, "install: allocate trampoline", err)
	}

	// 4. Emit trampoline instructions; i-cache flush over the range.
	if err := writeBytes(alloc.Base, trampolineBody); err != nil {
		_ = alloc.Release()
		panicFatal(KindOSPrimitive, "install: write trampoline", err)
	}
	if err := icache.Flush(alloc.Base, alloc.Size); err != nil {
		_ = alloc.Release()
		panicFatal(KindOSPrimitive, "install: flush trampoline", err)
	}

	// 5. Make the function's page writable+executable.
	pageStart, pageSize := pageRange(src.Addr(), len(window))
	if err := memx.MakeRWX(pageStart, pageSize); err != nil {
		_ = alloc.Release()
		panicFatal(KindOSPrimitive, "install: unprotect function page", err)
	}

	// 6. Write the prologue patch; i-cache flush over the patched range.
	patch, err := strat.BuildProloguePatch(src.Addr(), alloc.Base)
	if err != nil {
		_ = alloc.Release()
		panicFatal(KindBadBranchOffset, "install: build prologue patch", err)
	}
	if err := writeBytes(src.Addr(), patch); err != nil {
		_ = alloc.Release()
		panicFatal(KindOSPrimitive, "install: write prologue patch", err)
	}
	if err := icache.Flush(src.Addr(), uintptr(len(patch))); err != nil {
		_ = alloc.Release()
		panicFatal(KindOSPrimitive, "install: flush prologue patch", err)
	}

	// 7. Construct and return the handle, taking ownership.
	return &Handle{rec: patchRecord{
		funcAddr:      src,
		originalBytes: originalBytes,
		trampoline:    alloc,
	}}, nil
}

// Close restores the original prologue bytes and releases the trampoline.
// It never panics: platform-primitive failures during teardown are retained
// on the handle (TeardownErr) instead, per spec.md §4.7.
func (h *Handle) Close() error {
	rec := h.rec

	if err := writeBytes(rec.funcAddr.Addr(), rec.originalBytes); err != nil {
		h.teardownErr = err
	} else if err := icache.Flush(rec.funcAddr.Addr(), uintptr(len(rec.originalBytes))); err != nil {
		h.teardownErr = err
	}

	if rec.trampoline != nil {
		if err := rec.trampoline.Release(); err != nil && h.teardownErr == nil {
			h.teardownErr = err
		}
	}

	return h.teardownErr
}

func readWindow(addr uintptr, size int) ([]byte, error) {
	if size <= 0 {
		return nil, errMisuse("patch window size must be positive")
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return append([]byte(nil), src...), nil
}

func writeBytes(addr uintptr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data))
	copy(dst, data)
	return nil
}

// pageRange returns the page-aligned [pageStart, pageStart+pageSize) region
// covering [addr, addr+length) for the current platform's page size.
func pageRange(addr uintptr, length int) (uintptr, uintptr) {
	pageSize := memx.PageSize()
	pageStart := addr &^ (pageSize - 1)
	end := addr + uintptr(length)
	pageEnd := (end + pageSize - 1) &^ (pageSize - 1)
	return pageStart, pageEnd - pageStart
}

func errMisuse(msg string) error { return constError(msg) }
