//go:build (freebsd || dragonfly) && !386 && !arm

package platform

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

var defaultStrategy Strategy = bsdStrategy{} //nolint:gochecknoglobals // build-time selection

// bsdStrategy wraps sendfile(2) on FreeBSD and DragonFly:
//
//	int sendfile(int fd, int s, off_t offset, size_t nbytes,
//	    struct sf_hdtr *hdtr, off_t *sbytes, int flags);
//
// nbytes is passed through literally. sbytes receives the bytes sent,
// headers and trailers included, even when the call fails. 32-bit targets
// split off_t across two registers and are not wired. DragonFly reserves
// the flags argument, so no flag names are defined there.
type bsdStrategy struct{}

func (bsdStrategy) Method() Method { return BSDSendfile }

func (bsdStrategy) Transfer(req Request, offset int64) Outcome {
	plan, vectored := planVectors(req.Header, req.Trailer)
	hdtr := buildHdtr(plan, vectored)

	var (
		sent  int64
		errno syscall.Errno
	)
	blocking("sendfile", func() {
		_, _, errno = unix.Syscall9(
			unix.SYS_SENDFILE,
			uintptr(req.Src),
			uintptr(req.Dst),
			uintptr(offset),
			uintptr(req.Count),
			uintptr(unsafe.Pointer(hdtr)),
			uintptr(unsafe.Pointer(&sent)),
			uintptr(req.Flags),
			0, 0,
		)
	})
	runtime.KeepAlive(hdtr)
	runtime.KeepAlive(req.Header)
	runtime.KeepAlive(req.Trailer)

	ret := int64(0)
	if errno != 0 {
		ret = -1
	}
	return Classify("sendfile", ret, errno, sent)
}
