//go:build arm64

package injectorpp

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/0xb-s/injectorpp/internal/memx"
)

func funcEntry(fn interface{}) unsafe.Pointer {
	return unsafe.Pointer(reflect.ValueOf(fn).Pointer())
}

func isEven(x int) bool { return x%2 == 0 }

// TestReturnBoolOverridesThenRestores is spec.md §8 scenario 2: force a
// boolean-returning function to a constant value, observe it, then restore.
func TestReturnBoolOverridesThenRestores(t *testing.T) {
	if isEven(3) {
		t.Fatal("sanity check failed: isEven(3) should be false")
	}

	src, err := NewCodeAddr(funcEntry(isEven))
	if err != nil {
		t.Fatalf("NewCodeAddr: %v", err)
	}

	h, err := ReturnBool(src, true)
	if err != nil {
		t.Fatalf("ReturnBool: %v", err)
	}

	if !isEven(3) {
		t.Fatal("isEven(3) after ReturnBool(true) should be true")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if isEven(3) {
		t.Fatal("isEven(3) after Close should be false again")
	}
}

// TestReturnBoolRefusesEmptyFunction is spec.md §8 scenario 5 on AArch64: a
// function that is nothing but RET X30, repeated, must be refused.
func TestReturnBoolRefusesEmptyFunction(t *testing.T) {
	size := uintptr(memx.PageSize())
	base, err := memx.ReserveCommitRX(0, size)
	if err != nil {
		t.Fatalf("ReserveCommitRX: %v", err)
	}
	defer memx.Release(base, size)

	buf := unsafe.Slice((*uint32)(unsafe.Pointer(base)), size/4)
	const retX30 = 0xD65F_03C0
	for i := range buf {
		buf[i] = retX30
	}

	src, err := NewCodeAddr(unsafe.Pointer(base))
	if err != nil {
		t.Fatalf("NewCodeAddr: %v", err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected ReturnBool to panic on an empty function")
		}
		fe, ok := r.(*FatalError)
		if !ok {
			t.Fatalf("expected a *FatalError panic, got %T: %v", r, r)
		}
		if fe.Kind != KindUnsafeTarget {
			t.Fatalf("expected KindUnsafeTarget, got %s", fe.Kind)
		}
	}()
	ReturnBool(src, false)
}
