package nearalloc

import (
	"errors"
	"math"
	"testing"
)

func TestBranchReach(t *testing.T) {
	cases := []struct {
		arch string
		want uint64
	}{
		{"amd64", 2 << 30},
		{"arm64", 128 << 20},
		{"riscv64", math.MaxUint64},
		{"wasm", math.MaxUint64},
	}
	for _, c := range cases {
		if got := BranchReach(c.arch); got != c.want {
			t.Errorf("BranchReach(%q) = %d, want %d", c.arch, got, c.want)
		}
	}
}

// fakeAddressSpace simulates an OS that already has some pages mapped and
// honors mmap hints everywhere else, so the scan's first-fit behavior can be
// exercised deterministically.
type fakeAddressSpace struct {
	taken map[uintptr]bool
	live  map[uintptr]uintptr
}

func (f *fakeAddressSpace) reserve(hint, size uintptr) (uintptr, error) {
	if f.taken[hint] {
		return 0, errors.New("address already mapped")
	}
	f.live[hint] = size
	return hint, nil
}

func (f *fakeAddressSpace) release(addr, _ uintptr) error {
	delete(f.live, addr)
	return nil
}

func TestAllocateFindsFirstFitWithinReach(t *testing.T) {
	const page = 0x1000
	const src = 0x10_0000_0000
	reach := BranchReach("arm64")
	lo := src - uintptr(reach)

	// Mark every page from lo up to (but not including) a chosen free slot
	// as already mapped, so the scan is forced to walk the full distance
	// before finding the one free page.
	free := lo + 17*page
	f := &fakeAddressSpace{taken: map[uintptr]bool{}, live: map[uintptr]uintptr{}}
	for addr := lo; addr < free; addr += page {
		f.taken[addr] = true
	}

	alloc, err := allocate(src, page, "arm64", page, f.reserve, f.release)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if alloc.Base != free {
		t.Fatalf("got base 0x%x, want first free page at 0x%x", alloc.Base, free)
	}
	if !inRange(alloc.Base, src, reach) {
		t.Fatalf("allocation 0x%x not within reach of src 0x%x", alloc.Base, src)
	}
}

func TestAllocateReleasesOutOfRangeHintMismatch(t *testing.T) {
	const page = 0x1000
	const src = 0x10_0000
	// reserve always hands back a fixed far-away address regardless of the
	// hint, simulating an OS that ignores the hint entirely.
	far := uintptr(0x7fff_0000_0000)
	released := false
	reserve := func(hint, size uintptr) (uintptr, error) { return far, nil }
	release := func(addr, size uintptr) error {
		if addr == far {
			released = true
		}
		return nil
	}

	_, err := allocate(src, page, "arm64", page*4, reserve, release)
	if err == nil {
		t.Fatal("expected exhaustion error when every hint is ignored")
	}
	if !released {
		t.Fatal("expected the out-of-range allocation to be released while scanning")
	}
}

func TestAllocateUnconstrainedArchSkipsScan(t *testing.T) {
	calls := 0
	reserve := func(hint, size uintptr) (uintptr, error) {
		calls++
		if hint != 0 {
			t.Fatalf("expected a zero hint for an unconstrained arch, got 0x%x", hint)
		}
		return 0xdead_beef, nil
	}
	release := func(uintptr, uintptr) error { return nil }

	alloc, err := allocate(0x1234, 0x1000, "riscv64", 0x1000, reserve, release)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one reservation call for an unconstrained arch, got %d", calls)
	}
	if alloc.Base != 0xdead_beef {
		t.Fatalf("got base 0x%x", alloc.Base)
	}
}
