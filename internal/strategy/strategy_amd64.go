//go:build amd64

package strategy

import (
	"encoding/binary"
	"fmt"

	"github.com/0xb-s/injectorpp/internal/preflight"
)

// amd64Strategy implements spec.md §4.5.1: a 5-byte JMP rel32 prologue
// patch, and a trampoline reached by that same JMP rel32 (the near-
// allocator guarantees the trampoline is within ±2 GiB, so the prologue
// never needs more than one relative jump).
type amd64Strategy struct{}

// New returns the patch strategy for this build's architecture.
func New() Strategy { return amd64Strategy{} }

const (
	amd64PatchWindow = 5 // JMP rel32: E9 xx xx xx xx

	// replaceTrampolineSize: MOV R10, imm64 (10 bytes, REX.W B8+r) + JMP R10
	// (3 bytes, REX.B FF /4) = 13 bytes.
	replaceTrampolineSize = 13

	// returnBoolTrampolineSize: MOV EAX, imm32 (5 bytes) + RET (1 byte).
	returnBoolTrampolineSize = 6
)

func (amd64Strategy) PatchWindowSize() int         { return amd64PatchWindow }
func (amd64Strategy) TrampolineSize() int          { return replaceTrampolineSize }
func (amd64Strategy) ReturnBoolTrampolineSize() int { return returnBoolTrampolineSize }

// BuildReplaceTrampoline emits "MOVABS R10, target; JMP R10": since the
// allocator only guarantees the trampoline is within ±2 GiB of the source
// (not of target), the trampoline itself must reach an arbitrary 64-bit
// address via an absolute indirect jump, per spec.md §4.5.1.
func (amd64Strategy) BuildReplaceTrampoline(target uintptr) []byte {
	buf := make([]byte, 0, replaceTrampolineSize)
	// REX.W + B8+r (MOV r64, imm64) using R10 (REX.WB, reg field 010).
	buf = append(buf, 0x49, 0xBA)
	var imm [8]byte
	binary.LittleEndian.PutUint64(imm[:], uint64(target))
	buf = append(buf, imm[:]...)
	// REX.B + FF /4 (JMP r/m64) with ModRM 11 100 010 (JMP R10).
	buf = append(buf, 0x41, 0xFF, 0xE2)
	return buf
}

// BuildReturnBoolTrampoline emits "MOV EAX, imm32; RET": the engine assumes
// the platform ABI returns a boolean in the low bits of EAX, per spec.md
// §4.5.
func (amd64Strategy) BuildReturnBoolTrampoline(v bool) []byte {
	var imm uint32
	if v {
		imm = 1
	}
	buf := make([]byte, 0, returnBoolTrampolineSize)
	buf = append(buf, 0xB8) // MOV EAX, imm32
	var enc [4]byte
	binary.LittleEndian.PutUint32(enc[:], imm)
	buf = append(buf, enc[:]...)
	buf = append(buf, 0xC3) // RET
	return buf
}

// BuildProloguePatch emits "JMP rel32" to trampolineAddr. spec.md §4.5.1
// permits (but does not require) skipping the trampoline when target is
// itself within ±2 GiB of srcAddr; this engine always routes through the
// trampoline for uniformity, since the near-allocator already guarantees
// the reach invariant this needs.
func (amd64Strategy) BuildProloguePatch(srcAddr, trampolineAddr uintptr) ([]byte, error) {
	rel := int64(trampolineAddr) - (int64(srcAddr) + amd64PatchWindow)
	if rel < int64(-1<<31) || rel > int64(1<<31-1) {
		return nil, fmt.Errorf("jmp rel32 offset %d out of range", rel)
	}
	buf := make([]byte, amd64PatchWindow)
	buf[0] = 0xE9
	binary.LittleEndian.PutUint32(buf[1:], uint32(int32(rel)))
	return buf, nil
}

// Preflight validates the 5-byte window with the x86 disassembler
// technique, resolving spec.md §9's x86_64 preflight open question (see
// internal/preflight/preflight_amd64.go).
func (amd64Strategy) Preflight(window []byte) (preflight.Verdict, error) {
	return preflight.CheckAMD64(window)
}
