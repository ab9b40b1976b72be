package injectorpp

import "fmt"

// Kind classifies why a patch operation failed fatally. It exists only so a
// caller that wants to branch on failure class can do so without parsing
// error strings; the core never recovers from any of these itself.
type Kind int

const (
	// KindUnsafeTarget means preflight refused the patch window: the
	// function is too short, or the window contains a terminator the
	// engine is not willing to overwrite.
	KindUnsafeTarget Kind = iota
	// KindOutOfReach means the near-allocator could not place executable
	// memory within branch range of the source function.
	KindOutOfReach
	// KindBadBranchOffset means the allocator returned in-range memory
	// but the computed branch immediate still overflowed its field. This
	// should never happen and indicates an allocator bug.
	KindBadBranchOffset
	// KindOSPrimitive means an OS-level primitive (mmap/mprotect,
	// VirtualAlloc/VirtualProtect, an i-cache flush) failed.
	KindOSPrimitive
	// KindMisuse means the caller passed something the engine cannot
	// accept: a nil code address, a patch size that is not a multiple of
	// 4 on AArch64, and the like.
	KindMisuse
)

func (k Kind) String() string {
	switch k {
	case KindUnsafeTarget:
		return "unsafe target"
	case KindOutOfReach:
		return "out of reach"
	case KindBadBranchOffset:
		return "bad branch offset"
	case KindOSPrimitive:
		return "os primitive failure"
	case KindMisuse:
		return "misuse"
	default:
		return "unknown"
	}
}

// FatalError is the error type every core failure surfaces as. Construction
// and installation failures are panicked as *FatalError (see spec.md §6:
// "all errors are fatal"), except a nil or zero code address, which
// NewCodeAddr and install return as an error; teardown failures are instead
// retained on the Handle for inspection, never panicked.
type FatalError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("injectorpp: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("injectorpp: %s: %s", e.Op, e.Kind)
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatalf(kind Kind, op string, err error) *FatalError {
	return &FatalError{Kind: kind, Op: op, Err: err}
}

// panicFatal is the single place that turns a failure into process-aborting
// behavior, matching the teacher's own panic(err) in unlockMemoryProtect and
// Hook.Close.
func panicFatal(kind Kind, op string, err error) {
	panic(fatalf(kind, op, err))
}
