//go:build arm64

package strategy

import (
	"fmt"

	"github.com/0xb-s/injectorpp/internal/arm64enc"
	"github.com/0xb-s/injectorpp/internal/preflight"
)

const (
	arm64PatchWindow  = 12 // three 32-bit instructions, spec.md §4.5.2
	replaceJITSize    = 20 // 5 instructions: MOVZ + 3×MOVK + BR
	returnBoolJITSize = 8  // 2 instructions: MOVZ + RET
)

// arm64Common implements the parts of Strategy that are identical across
// Linux, Windows, and macOS AArch64: patch/trampoline sizes, trampoline
// contents, and preflight. Only the prologue-patch encoding differs by OS
// (spec.md §4.5.2), so each OS-specific type embeds this and supplies its
// own BuildProloguePatch.
type arm64Common struct{}

func (arm64Common) PatchWindowSize() int          { return arm64PatchWindow }
func (arm64Common) TrampolineSize() int           { return replaceJITSize }
func (arm64Common) ReturnBoolTrampolineSize() int { return returnBoolJITSize }

// BuildReplaceTrampoline emits the 20-byte "load X9 = target; BR X9"
// sequence spec.md §4.5.2 specifies.
func (arm64Common) BuildReplaceTrampoline(target uintptr) []byte {
	seq := arm64enc.LoadAbsolute64(uint64(target))
	buf := make([]byte, 0, replaceJITSize)
	for _, instr := range seq {
		buf = arm64enc.EmitLE32(buf, instr)
	}
	return buf
}

// BuildReturnBoolTrampoline emits the 8-byte "MOVZ W0, #v; RET X30"
// sequence spec.md §4.5.2 specifies.
func (arm64Common) BuildReturnBoolTrampoline(v bool) []byte {
	seq := arm64enc.ReturnBoolean(v)
	buf := make([]byte, 0, returnBoolJITSize)
	for _, instr := range seq {
		buf = arm64enc.EmitLE32(buf, instr)
	}
	return buf
}

// Preflight scans the 12-byte window as three instructions, tolerating a
// veneer B only at offset 0 (spec.md §4.6). This module applies it on every
// AArch64 target, not only Linux: spec.md §9 calls it "recommended on other
// AArch64 targets" and this implementation takes that recommendation.
func (arm64Common) Preflight(window []byte) (preflight.Verdict, error) {
	return preflight.CheckARM64(window)
}

// branchPatchWithNOPs fills the 12-byte window with one B imm26 (computed
// from srcAddr to trampolineAddr) followed by two NOPs — the Linux/Windows
// prologue shape (spec.md §4.5.2), and the shape the macOS strategy tries
// first, using it whenever B imm26 alone reaches the trampoline.
func branchPatchWithNOPs(srcAddr, trampolineAddr uintptr) ([]byte, bool) {
	offsetWords := (int64(trampolineAddr) - int64(srcAddr)) / 4
	instr, ok := arm64enc.B(offsetWords)
	if !ok {
		return nil, false
	}
	buf := make([]byte, 0, arm64PatchWindow)
	buf = arm64enc.EmitLE32(buf, instr)
	buf = arm64enc.EmitLE32(buf, arm64enc.NOP)
	buf = arm64enc.EmitLE32(buf, arm64enc.NOP)
	return buf, true
}

// errBranchOutOfReach reports a B imm26 encoding failure: this should not
// happen given a correctly near-allocated trampoline (spec.md §7 kind 3).
func errBranchOutOfReach(srcAddr, trampolineAddr uintptr) error {
	return fmt.Errorf("b imm26 cannot reach trampoline at %#x from %#x", trampolineAddr, srcAddr)
}
