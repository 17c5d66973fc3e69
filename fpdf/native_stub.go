//go:build !darwin && !linux && !freebsd

// Stub native binding for platforms purego cannot dlopen on.
// The pure-Go engine in softpdf remains available there.

package fpdf

import "fmt"

// LoadNative always fails on this platform.
func LoadNative(path string) (Engine, error) {
	return nil, fmt.Errorf("%w: native loading not supported on this platform", ErrLibraryUnavailable)
}
