//go:build !darwin || !cgo

package platform

const hasFcopyfile = false

// CopyWhole is only implemented on macOS.
func CopyWhole(_, _ int) error {
	return ErrUnsupported
}
