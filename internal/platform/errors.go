package platform

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrWouldBlock is returned when the kernel reported transient resource
	// exhaustion and no bytes moved. The caller may retry.
	ErrWouldBlock = errors.New("sendfile: would block")

	// ErrUnsupported is returned when no kernel primitive is compiled in.
	ErrUnsupported = fmt.Errorf("zero-copy transfer: %w", errors.ErrUnsupported)

	ErrOffsetOverflow           = errors.New("offset does not fit the native offset type")
	ErrOffsetRequired           = errors.New("offset is required on this platform")
	ErrNegativeOffset           = errors.New("offset is negative")
	ErrBadDescriptor            = errors.New("descriptor is negative")
	ErrNegativeCount            = errors.New("count is negative")
	ErrCountOverflow            = errors.New("count does not fit the native size type")
	ErrHeaderTrailerUnsupported = errors.New("header/trailer not supported on this platform")
	ErrFlagsUnsupported         = errors.New("flags not supported on this platform")
)

// ValidationError reports a request rejected before any kernel call.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// OSError is a kernel-reported failure. Errno is preserved verbatim.
type OSError struct {
	Op    string
	Errno syscall.Errno
}

func (e *OSError) Error() string {
	return e.Op + ": " + e.Errno.Error()
}

func (e *OSError) Unwrap() error { return e.Errno }

// Timeout and Temporary mirror os.SyscallError so net-style callers can
// inspect the errno without unwrapping.
func (e *OSError) Timeout() bool { return e.Errno.Timeout() }

func (e *OSError) Temporary() bool { return e.Errno.Temporary() }

// wouldBlockError matches both ErrWouldBlock and the originating errno.
type wouldBlockError struct {
	op    string
	errno syscall.Errno
}

func (e *wouldBlockError) Error() string {
	return e.op + ": " + e.errno.Error()
}

func (e *wouldBlockError) Is(target error) bool { return target == ErrWouldBlock }

func (e *wouldBlockError) Unwrap() error { return e.errno }

// IsWouldBlock reports whether err carries the would-block condition.
func IsWouldBlock(err error) bool { return errors.Is(err, ErrWouldBlock) }
