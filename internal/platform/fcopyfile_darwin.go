//go:build darwin && cgo

package platform

/*
#include <copyfile.h>
#include <errno.h>

static int zc_fcopyfile(int from, int to, int *err) {
	int rc = fcopyfile(from, to, NULL, COPYFILE_DATA);
	*err = (rc < 0) ? errno : 0;
	return rc;
}
*/
import "C"

import "syscall"

const hasFcopyfile = true

// CopyWhole copies the remaining content of src into dst with fcopyfile(3).
// It reports success or failure only; no partial byte count is available.
func CopyWhole(src, dst int) error {
	if src < 0 {
		return &ValidationError{Field: "src", Err: ErrBadDescriptor}
	}
	if dst < 0 {
		return &ValidationError{Field: "dst", Err: ErrBadDescriptor}
	}

	var (
		rc   C.int
		cerr C.int
	)
	blocking("fcopyfile", func() {
		rc = C.zc_fcopyfile(C.int(src), C.int(dst), &cerr)
	})
	if rc < 0 {
		errno := syscall.Errno(cerr)
		if errno == 0 {
			errno = syscall.EIO
		}
		return &OSError{Op: "fcopyfile", Errno: errno}
	}
	return nil
}
