//go:build !linux

package platform

// Preallocate is a no-op where fallocate is unavailable.
func Preallocate(_ int, _ int64) {}
