// Package strategy builds the per-architecture patch strategies spec.md
// §4.5 describes: a trampoline that reaches an arbitrary 64-bit target from
// within branch range, and the prologue patch that jumps to it.
package strategy

import "github.com/0xb-s/injectorpp/internal/preflight"

// Strategy is the per-architecture patch strategy contract. Exactly one
// implementation is compiled in per GOARCH/GOOS combination via build tags;
// callers never branch on arch themselves.
type Strategy interface {
	// PatchWindowSize is the fixed number of bytes this strategy
	// overwrites at the function entry (5 on amd64, 12 on arm64).
	PatchWindowSize() int

	// TrampolineSize is the number of bytes BuildReplaceTrampoline needs.
	TrampolineSize() int

	// ReturnBoolTrampolineSize is the number of bytes
	// BuildReturnBoolTrampoline needs.
	ReturnBoolTrampolineSize() int

	// BuildReplaceTrampoline emits the trampoline body that transfers to
	// target, to be written at the trampoline allocation's base address.
	BuildReplaceTrampoline(target uintptr) []byte

	// BuildReturnBoolTrampoline emits the trampoline body that returns v
	// without executing any of the original function.
	BuildReturnBoolTrampoline(v bool) []byte

	// BuildProloguePatch emits the bytes to write over the first
	// PatchWindowSize() bytes of the function at srcAddr so that it
	// transfers control to trampolineAddr. It returns an error if the
	// distance cannot be encoded (spec.md §7 kind 3: out-of-range branch
	// offset), which should not occur given a correctly near-allocated
	// trampoline.
	BuildProloguePatch(srcAddr, trampolineAddr uintptr) ([]byte, error)

	// Preflight inspects the bytes currently at the function entry and
	// decides whether installing a patch there is safe.
	Preflight(window []byte) (preflight.Verdict, error)
}
