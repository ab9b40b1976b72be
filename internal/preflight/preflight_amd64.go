package preflight

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// AMD64PatchSize is the fixed x86_64 patch window: 5 bytes, the length of
// JMP rel32 (spec.md §4.5.1).
const AMD64PatchSize = 5

// CheckAMD64 validates that the AMD64PatchSize-byte window at the start of
// window does not split a branch/call/ret instruction. spec.md §9 flags
// x86_64 preflight as an open question — "the source performs preflight
// only on AArch64/Linux... it is plausibly also needed on x86_64" — this
// resolves it by reusing the teacher's own technique
// (Dk2014-hinako/hinako.go: disassemble with x86asm, walk instructions,
// reject any J*/CALL*/RET* found before the jump-patch boundary is
// covered), generalized from "find room for one more instruction" to
// "the fixed 5-byte window is safe to overwrite".
func CheckAMD64(window []byte) (Verdict, error) {
	offset := 0
	for offset < AMD64PatchSize {
		if offset >= len(window) {
			return Verdict{}, fmt.Errorf("preflight: window shorter than the %d-byte AMD64 patch size", AMD64PatchSize)
		}
		inst, err := x86asm.Decode(window[offset:], 64)
		if err != nil {
			return unsafeAt(offset, fmt.Sprintf("failed to disassemble instruction at offset %d: %v", offset, err)), nil
		}
		if isBranchLike(inst) {
			return unsafeAt(offset, fmt.Sprintf("found %s before the patch window boundary: function too short to safely patch", inst.Op)), nil
		}
		offset += inst.Len
	}
	return ok(), nil
}

// isBranchLike mirrors the teacher's isBranchInst: any jump, call, or
// return whose mnemonic falls inside the bytes this engine is about to
// overwrite would corrupt control flow if the patch only rewrites part of
// it.
func isBranchLike(inst x86asm.Inst) bool {
	s := inst.Op.String()
	return strings.HasPrefix(s, "J") || strings.HasPrefix(s, "CALL") || strings.HasPrefix(s, "RET")
}
