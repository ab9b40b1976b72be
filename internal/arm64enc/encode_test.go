package arm64enc

import "testing"

func TestRETDefaultIsDetectedAsRET(t *testing.T) {
	instr := RETDefault()
	if !IsRET(instr) {
		t.Fatalf("RETDefault() = 0x%08x, not detected as RET", instr)
	}
	if Classify(instr) != TerminatorRET {
		t.Fatalf("Classify(RETDefault()) = %v, want RET", Classify(instr))
	}
}

func TestRETKnownEncoding(t *testing.T) {
	// RET X30 is the canonical function-return encoding: 0xD65F03C0.
	if got := RET(X30); got != 0xD65F03C0 {
		t.Fatalf("RET(X30) = 0x%08x, want 0xD65F03C0", got)
	}
}

func TestBREncodingAndDetection(t *testing.T) {
	instr := BR(X9)
	// BR X9: 0xD61F0000 | (9 << 5) = 0xD61F0120.
	if instr != 0xD61F0120 {
		t.Fatalf("BR(X9) = 0x%08x, want 0xD61F0120", instr)
	}
	if !IsBR(instr) {
		t.Fatalf("BR(X9) not detected as BR")
	}
	if IsRET(instr) {
		t.Fatalf("BR(X9) misdetected as RET")
	}
}

func TestBRoundTripsWithinRange(t *testing.T) {
	instr, ok := B(100)
	if !ok {
		t.Fatal("B(100) should be encodable")
	}
	if !IsB(instr) {
		t.Fatalf("B(100) = 0x%08x, not detected as B", instr)
	}
	if IsRET(instr) || IsBR(instr) {
		t.Fatalf("B(100) misdetected as RET/BR")
	}
}

func TestBRejectsOutOfRangeOffsets(t *testing.T) {
	if _, ok := B(BImm26MaxWords + 1); ok {
		t.Fatal("expected B to reject an offset one word past the positive limit")
	}
	if _, ok := B(BImm26MinWords - 1); ok {
		t.Fatal("expected B to reject an offset one word past the negative limit")
	}
	if _, ok := B(BImm26MaxWords); !ok {
		t.Fatal("expected B to accept the maximum in-range offset")
	}
	if _, ok := B(BImm26MinWords); !ok {
		t.Fatal("expected B to accept the minimum in-range offset")
	}
}

func TestLoadAbsolute64RoundTrips(t *testing.T) {
	const target = uint64(0x1234_5678_9ABC_DEF0)
	seq := LoadAbsolute64(target)

	// Reconstruct the address from the MOVZ/MOVK immediates the way the
	// CPU would: each instruction's imm16 field lands in one 16-bit lane.
	var rebuilt uint64
	for i, instr := range seq[:4] {
		imm16 := (instr >> 5) & 0xFFFF
		shift := i * 16
		rebuilt |= uint64(imm16) << shift
	}
	if rebuilt != target {
		t.Fatalf("rebuilt address 0x%x, want 0x%x", rebuilt, target)
	}
	if !IsBR(seq[4]) {
		t.Fatalf("last instruction of LoadAbsolute64 is not BR: 0x%08x", seq[4])
	}
}

func TestReturnBooleanEncodesLowBit(t *testing.T) {
	for _, v := range []bool{true, false} {
		seq := ReturnBoolean(v)
		imm16 := (seq[0] >> 5) & 0xFFFF
		got := imm16&1 == 1
		if got != v {
			t.Fatalf("ReturnBoolean(%v): decoded low bit = %v", v, got)
		}
		if !IsRET(seq[1]) {
			t.Fatalf("ReturnBoolean(%v): second instruction is not RET: 0x%08x", v, seq[1])
		}
	}
}

func TestEncodeLE32RoundTripsWithDecodeLE32(t *testing.T) {
	instr := uint32(0xDEADBEEF)
	buf := EncodeLE32(instr)
	if got := DecodeLE32(buf[:]); got != instr {
		t.Fatalf("DecodeLE32(EncodeLE32(0x%08x)) = 0x%08x", instr, got)
	}
}

func TestClassifyNoneForOrdinaryInstruction(t *testing.T) {
	// ADD X0, X1, X2 (0x8B020020) is not a terminator.
	if Classify(0x8B020020) != TerminatorNone {
		t.Fatalf("ADD misclassified as %v", Classify(0x8B020020))
	}
}
