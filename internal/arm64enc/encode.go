// Package arm64enc provides bit-exact AArch64 instruction encoders and
// detectors for the instruction subset the patch strategies and preflight
// validator need: spec.md §4.3. All encoded instructions are 32-bit
// little-endian, grounded on original_source/patch_arm64.rs's
// emit_movz/emit_movk/emit_br/emit_ret_x30 bit-twiddling, expressed here as
// direct bitfield arithmetic instead of bit-array construction.
package arm64enc

// Reg is an AArch64 general-purpose register number, 0-31 (31 is SP/XZR
// depending on instruction context).
type Reg uint8

const (
	X9  Reg = 9  // IP-scratch register under the AAPCS64: no save/restore needed.
	X30 Reg = 30 // Link register, RET's default operand.
)

// MOVZ encodes "MOVZ Xd, #imm16, LSL #shift" (64-bit form, sf=1), shift in
// {0,16,32,48}.
func MOVZ(rd Reg, imm16 uint16, shift uint8) uint32 {
	return movWide(0b10, rd, imm16, shift)
}

// MOVK encodes "MOVK Xd, #imm16, LSL #shift" (64-bit form, sf=1).
func MOVK(rd Reg, imm16 uint16, shift uint8) uint32 {
	return movWide(0b11, rd, imm16, shift)
}

// movWide builds the shared MOVZ/MOVK encoding. opc is 0b10 for MOVZ, 0b11
// for MOVK; bits [31:23] = sf(1) opc(2) 100101, [22:21] = hw, [20:5] = imm16,
// [4:0] = Rd.
func movWide(opc uint32, rd Reg, imm16 uint16, shift uint8) uint32 {
	hw := uint32(shift/16) & 0b11
	const sf = uint32(1) << 31
	const fixed = 0b100101 << 23
	return sf | (opc << 29) | fixed | (hw << 21) | (uint32(imm16) << 5) | uint32(rd&0x1f)
}

// BR encodes "BR Xn": unconditional branch to a register.
func BR(rn Reg) uint32 {
	return 0xD61F_0000 | (uint32(rn&0x1f) << 5)
}

// RET encodes "RET Xn" (default X30 if rn is omitted by the caller via
// RETDefault).
func RET(rn Reg) uint32 {
	return 0xD65F_0000 | (uint32(rn&0x1f) << 5)
}

// RETDefault encodes "RET" with the implicit default operand X30.
func RETDefault() uint32 {
	return RET(X30)
}

// BImm26MinWords and BImm26MaxWords bound the signed word offset (offset/4)
// encodable in B's imm26 field: ±2^25 words, i.e. ±128 MiB.
const (
	BImm26MinWords = -(1 << 25)
	BImm26MaxWords = (1 << 25) - 1
)

// B encodes an unconditional "B" with a signed word offset (byte offset / 4
// from the instruction's own address, per the AArch64 PC-relative branch
// convention). It returns ok=false if offsetWords does not fit in 26 signed
// bits.
func B(offsetWords int64) (instr uint32, ok bool) {
	if offsetWords < BImm26MinWords || offsetWords > BImm26MaxWords {
		return 0, false
	}
	return 0x1400_0000 | (uint32(offsetWords) & 0x03FF_FFFF), true
}

// NOP encodes "NOP".
const NOP uint32 = 0xD503_201F

// LoadAbsolute64 emits the five-instruction sequence
// spec.md §4.5.2 requires to load a 64-bit absolute address into X9 and
// branch to it: MOVZ, three MOVKs at LSL 16/32/48, then BR X9.
func LoadAbsolute64(target uint64) [5]uint32 {
	return [5]uint32{
		MOVZ(X9, uint16(target), 0),
		MOVK(X9, uint16(target>>16), 16),
		MOVK(X9, uint16(target>>32), 32),
		MOVK(X9, uint16(target>>48), 48),
		BR(X9),
	}
}

// ReturnBoolean emits the two-instruction sequence spec.md §4.5.2 requires
// for replace_return_bool: MOVZ W0, #imm16 (low bit = the boolean), RET X30.
// The 32-bit (W0) form of MOVZ clears sf — see movWide32 below.
func ReturnBoolean(v bool) [2]uint32 {
	var imm16 uint16
	if v {
		imm16 = 1
	}
	return [2]uint32{movWide32(0b10, 0, imm16, 0), RETDefault()}
}

// movWide32 is movWide's 32-bit (sf=0) counterpart, used only for the W0
// result of replace_return_bool.
func movWide32(opc uint32, rd Reg, imm16 uint16, shift uint8) uint32 {
	hw := uint32(shift/16) & 0b11
	const fixed = 0b100101 << 23
	return (opc << 29) | fixed | (hw << 21) | (uint32(imm16) << 5) | uint32(rd&0x1f)
}

// ADRP encodes "ADRP Rd, #(pageOffset*4096)": pageOffset is the signed
// number of 4 KiB pages between the instruction's own page and the target
// page, per the AArch64 PC-relative page address convention. It returns
// ok=false if pageOffset does not fit the 21-bit signed immhi:immlo field
// (±4 GiB of pages either side).
func ADRP(rd Reg, pageOffset int64) (instr uint32, ok bool) {
	const minPages, maxPages = -(1 << 20), (1 << 20) - 1
	if pageOffset < minPages || pageOffset > maxPages {
		return 0, false
	}
	imm21 := uint32(pageOffset) & 0x1F_FFFF
	immlo := imm21 & 0b11
	immhi := imm21 >> 2
	const op = uint32(1) << 31 // ADRP, not ADR
	const fixed = 0b10000 << 24
	return op | (immlo << 29) | fixed | (immhi << 5) | uint32(rd&0x1f), true
}

// ADDImm12 encodes "ADD Xd, Xn, #imm12" (64-bit, unshifted immediate), used
// to add the intra-page byte offset ADRP's page address leaves out.
func ADDImm12(rd, rn Reg, imm12 uint16) (instr uint32, ok bool) {
	if imm12 >= 1<<12 {
		return 0, false
	}
	const sf = uint32(1) << 31
	const fixed = 0b10001 << 24
	return sf | fixed | (uint32(imm12) << 10) | (uint32(rn&0x1f) << 5) | uint32(rd&0x1f), true
}

// EncodeLE32 little-endian-encodes a 32-bit instruction word into 4 bytes.
func EncodeLE32(instr uint32) [4]byte {
	return [4]byte{
		byte(instr),
		byte(instr >> 8),
		byte(instr >> 16),
		byte(instr >> 24),
	}
}

// EmitLE32 appends the little-endian bytes of instr to buf.
func EmitLE32(buf []byte, instr uint32) []byte {
	enc := EncodeLE32(instr)
	return append(buf, enc[:]...)
}
