//go:build !linux && !darwin && !windows && !unix

package memx

import "errors"

// Platforms with no Unix-family and no Windows backend (js/wasm, plan9, ...)
// have no executable-memory primitive at all. spec.md treats this engine as
// scoped to x86_64/AArch64 on Linux/macOS/Windows; everything else is
// already "not expected to produce working trampolines" (§4.2), so this
// backend fails loudly rather than silently doing nothing.

var errUnsupportedPlatform = errors.New("memx: no executable-memory primitive on this platform")

func PageSize() uintptr { return 4096 }

func ReserveCommitRX(uintptr, uintptr) (uintptr, error) { return 0, errUnsupportedPlatform }

func MakeRWX(uintptr, uintptr) error { return errUnsupportedPlatform }

func Release(uintptr, uintptr) error { return errUnsupportedPlatform }
