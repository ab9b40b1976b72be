//go:build !amd64 && !arm64

package strategy

import (
	"fmt"

	"github.com/0xb-s/injectorpp/internal/preflight"
)

// genericStrategy backs architectures outside spec.md's two supported
// targets. Its allocation-sizing methods return sane placeholder values so
// callers that only probe sizes don't panic, but no method emits machine
// code: BuildReplaceTrampoline and BuildReturnBoolTrampoline panic, and
// BuildProloguePatch and Preflight return an "unsupported architecture"
// error. spec.md never defines an encoding for these, so pretending
// otherwise would silently corrupt memory instead of failing loudly.
type genericStrategy struct{}

// New returns the patch strategy for this build's architecture.
func New() Strategy { return genericStrategy{} }

func (genericStrategy) PatchWindowSize() int          { return 0 }
func (genericStrategy) TrampolineSize() int           { return 0 }
func (genericStrategy) ReturnBoolTrampolineSize() int { return 0 }

func (genericStrategy) BuildReplaceTrampoline(target uintptr) []byte {
	panic(unsupportedArch("BuildReplaceTrampoline"))
}

func (genericStrategy) BuildReturnBoolTrampoline(v bool) []byte {
	panic(unsupportedArch("BuildReturnBoolTrampoline"))
}

func (genericStrategy) BuildProloguePatch(srcAddr, trampolineAddr uintptr) ([]byte, error) {
	return nil, unsupportedArch("BuildProloguePatch")
}

func (genericStrategy) Preflight(window []byte) (preflight.Verdict, error) {
	return preflight.Verdict{}, unsupportedArch("Preflight")
}

func unsupportedArch(op string) error {
	return fmt.Errorf("strategy: %s: unsupported architecture", op)
}
