//go:build linux

package platform

import "golang.org/x/sys/unix"

// Preallocate reserves size bytes for fd. Errors are ignored because
// fallocate is not supported on all filesystems.
func Preallocate(fd int, size int64) {
	if fd < 0 || size <= 0 {
		return
	}
	//nolint:errcheck // fallocate is advisory; not supported on all filesystems
	unix.Fallocate(fd, 0, 0, size)
}
