// Package preflight implements spec.md §4.6: a pure inspection of the bytes
// a patch is about to overwrite, refusing installs that would corrupt
// program semantics.
package preflight

import (
	"fmt"

	"github.com/0xb-s/injectorpp/internal/arm64enc"
)

// Verdict is spec.md §3's "preflight verdict": either OK, or Unsafe with the
// offset and reason the window was refused.
type Verdict struct {
	OK     bool
	Offset int
	Reason string
}

func ok() Verdict { return Verdict{OK: true} }

func unsafeAt(offset int, reason string) Verdict {
	return Verdict{OK: false, Offset: offset, Reason: reason}
}

// CheckARM64 validates a 12-byte AArch64 prologue window as three 32-bit
// words (spec.md §4.5.2/§4.6): an unconditional B at index 0 is tolerated
// (a compiler-emitted veneer), but RET/BR/B anywhere else — or RET/BR at
// index 0 — refuses the patch. window's length must be a multiple of 4, per
// the AArch64 patch window contract; every whole word in it is checked, and
// the length is not otherwise restricted to 12 bytes.
func CheckARM64(window []byte) (Verdict, error) {
	if len(window)%4 != 0 {
		return Verdict{}, fmt.Errorf("preflight: AArch64 patch window length %d is not a multiple of 4", len(window))
	}

	for i := 0; i+4 <= len(window); i += 4 {
		instr := arm64enc.DecodeLE32(window[i:])
		term := arm64enc.Classify(instr)
		if term == arm64enc.TerminatorNone {
			continue
		}
		if term == arm64enc.TerminatorB && i == 0 {
			// A veneer/thunk at offset 0 is tolerated.
			continue
		}
		return unsafeAt(i, fmt.Sprintf("found %s at offset %d: function too short to safely patch", term, i)), nil
	}
	return ok(), nil
}
