//go:build amd64

package strategy

import (
	"encoding/binary"
	"testing"
)

func TestAMD64BuildReplaceTrampolineEncodesTarget(t *testing.T) {
	s := New()
	target := uintptr(0x1122_3344_5566_7788)
	buf := s.BuildReplaceTrampoline(target)
	if len(buf) != s.TrampolineSize() {
		t.Fatalf("trampoline length = %d, want %d", len(buf), s.TrampolineSize())
	}
	if buf[0] != 0x49 || buf[1] != 0xBA {
		t.Fatalf("unexpected MOVABS prefix: % x", buf[:2])
	}
	got := binary.LittleEndian.Uint64(buf[2:10])
	if uintptr(got) != target {
		t.Fatalf("encoded target = %#x, want %#x", got, target)
	}
	if buf[10] != 0x41 || buf[11] != 0xFF || buf[12] != 0xE2 {
		t.Fatalf("unexpected JMP R10 suffix: % x", buf[10:])
	}
}

func TestAMD64BuildReturnBoolTrampolineEncodesValue(t *testing.T) {
	s := New()
	for _, v := range []bool{true, false} {
		buf := s.BuildReturnBoolTrampoline(v)
		if buf[0] != 0xB8 {
			t.Fatalf("expected MOV EAX prefix, got %#x", buf[0])
		}
		imm := binary.LittleEndian.Uint32(buf[1:5])
		want := uint32(0)
		if v {
			want = 1
		}
		if imm != want {
			t.Fatalf("BuildReturnBoolTrampoline(%v): imm = %d, want %d", v, imm, want)
		}
		if buf[5] != 0xC3 {
			t.Fatalf("expected trailing RET, got %#x", buf[5])
		}
	}
}

func TestAMD64BuildProloguePatchEncodesRelativeJump(t *testing.T) {
	s := New()
	src := uintptr(0x1000)
	trampoline := uintptr(0x2000)
	buf, err := s.BuildProloguePatch(src, trampoline)
	if err != nil {
		t.Fatalf("BuildProloguePatch: %v", err)
	}
	if buf[0] != 0xE9 {
		t.Fatalf("expected JMP rel32 opcode, got %#x", buf[0])
	}
	rel := int32(binary.LittleEndian.Uint32(buf[1:5]))
	want := int32(int64(trampoline) - int64(src+amd64PatchWindow))
	if rel != want {
		t.Fatalf("rel32 = %d, want %d", rel, want)
	}
}

func TestAMD64BuildProloguePatchRejectsOutOfRangeOffset(t *testing.T) {
	s := New()
	_, err := s.BuildProloguePatch(0, uintptr(1)<<33)
	if err == nil {
		t.Fatal("expected an error for an offset outside ±2 GiB")
	}
}
