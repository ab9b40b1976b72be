package injectorpp

import "unsafe"

// CodeAddr is an opaque, non-zero address of executable bytes. It carries no
// provenance beyond "something mapped this address executable" and is freely
// convertible to uintptr for range arithmetic, mirroring the Rust
// FuncPtrInternal(NonNull<()>) this engine's design is grounded on.
type CodeAddr struct {
	addr uintptr
}

// NewCodeAddr wraps a raw pointer to a function entry. It fails if p is nil;
// the caller is responsible for p actually pointing at executable code.
func NewCodeAddr(p unsafe.Pointer) (CodeAddr, error) {
	if p == nil {
		return CodeAddr{}, fatalf(KindMisuse, "NewCodeAddr", errNilCodeAddr)
	}
	return CodeAddr{addr: uintptr(p)}, nil
}

// addrOf is the internal constructor for a uintptr the caller has already
// validated as non-zero; it performs no check of its own.
func addrOf(a uintptr) CodeAddr { return CodeAddr{addr: a} }

// Addr returns the integer value of the address for range arithmetic.
func (c CodeAddr) Addr() uintptr { return c.addr }

// Pointer returns the address as an unsafe.Pointer.
func (c CodeAddr) Pointer() unsafe.Pointer { return unsafe.Pointer(c.addr) } //nolint:govet

func (c CodeAddr) IsZero() bool { return c.addr == 0 }

var errNilCodeAddr = constError("code address must not be nil")

// constError lets a package-level error value be a true constant.
type constError string

func (e constError) Error() string { return string(e) }
