package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Classify turns the raw result of one kernel call into an Outcome.
// ret is the syscall return value, errno the error it reported (0 on
// success) and sent the number of bytes the platform says were moved.
//
// A transient errno with progress is a short transfer, not an error. The
// same errno without progress asks the caller to retry. Anything else is
// fatal and the partial count is dropped.
func Classify(op string, ret int64, errno syscall.Errno, sent int64) Outcome {
	if errno == 0 && ret >= 0 {
		return Outcome{Status: StatusComplete, BytesSent: sent}
	}
	if isTransient(errno) {
		if sent > 0 {
			return Outcome{Status: StatusComplete, BytesSent: sent}
		}
		return Outcome{
			Status: StatusRetryNeeded,
			Err:    &wouldBlockError{op: op, errno: errno},
		}
	}
	if errno == 0 {
		// ret < 0 without an errno; report it as EIO rather than success.
		errno = unix.EIO
	}
	return failed(&OSError{Op: op, Errno: errno})
}

// isTransient reports the resource-exhaustion errnos: EAGAIN, EWOULDBLOCK
// (equal to EAGAIN on most systems) and EBUSY.
func isTransient(errno syscall.Errno) bool {
	return errno == unix.EAGAIN || errno == unix.EWOULDBLOCK || errno == unix.EBUSY
}

// errnoOf extracts the errno from an x/sys/unix error. Non-errno errors are
// reported as EIO.
func errnoOf(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if e, ok := err.(syscall.Errno); ok {
		return e
	}
	return unix.EIO
}
