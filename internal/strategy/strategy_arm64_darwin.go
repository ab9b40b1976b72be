//go:build arm64 && darwin

package strategy

import "github.com/0xb-s/injectorpp/internal/arm64enc"

// darwinARM64Strategy resolves spec.md §9's open question — "what long-jump
// instruction macOS AArch64 should use when B imm26 cannot reach" — the same
// way original_source/patch_arm64.rs resolves it: prefer the single B imm26
// when the trampoline is in range, and fall back to a three-instruction
// ADRP+ADD+BR sequence through the scratch register when it is not. Darwin
// is singled out for this because its W^X enforcement makes executable
// pages scarcer near a given text address, making the fallback path more
// likely to matter in practice than on Linux/Windows.
type darwinARM64Strategy struct{ arm64Common }

// New returns the patch strategy for this build's architecture.
func New() Strategy { return darwinARM64Strategy{} }

// BuildProloguePatch prefers "B trampolineAddr; NOP; NOP" and falls back to
// "ADRP X9, page(trampolineAddr); ADD X9, X9, #page-offset; BR X9" when the
// branch distance exceeds ±128 MiB. Both shapes fill the 12-byte window
// exactly, so no other bookkeeping differs between the two cases.
func (darwinARM64Strategy) BuildProloguePatch(srcAddr, trampolineAddr uintptr) ([]byte, error) {
	if buf, ok := branchPatchWithNOPs(srcAddr, trampolineAddr); ok {
		return buf, nil
	}

	const pageSize = 1 << 12
	srcPage := int64(srcAddr) / pageSize
	tgtPage := int64(trampolineAddr) / pageSize
	adrp, ok := arm64enc.ADRP(arm64enc.X9, tgtPage-srcPage)
	if !ok {
		return nil, errBranchOutOfReach(srcAddr, trampolineAddr)
	}
	pageOff := uint16(trampolineAddr % pageSize)
	add, ok := arm64enc.ADDImm12(arm64enc.X9, arm64enc.X9, pageOff)
	if !ok {
		return nil, errBranchOutOfReach(srcAddr, trampolineAddr)
	}

	buf := make([]byte, 0, arm64PatchWindow)
	buf = arm64enc.EmitLE32(buf, adrp)
	buf = arm64enc.EmitLE32(buf, add)
	buf = arm64enc.EmitLE32(buf, arm64enc.BR(arm64enc.X9))
	return buf, nil
}
