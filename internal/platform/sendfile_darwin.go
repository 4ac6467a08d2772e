//go:build darwin

package platform

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

var defaultStrategy Strategy = darwinStrategy{} //nolint:gochecknoglobals // build-time selection

// darwinStrategy wraps sendfile(2) on macOS:
//
//	int sendfile(int fd, int s, off_t offset, off_t *len, struct sf_hdtr *hdtr, int flags);
//
// len is value-result: on input the bytes to send (header included, 0 for
// "until EOF"), on output the bytes actually sent, even when the call fails.
type darwinStrategy struct{}

func (darwinStrategy) Method() Method { return DarwinSendfile }

func (darwinStrategy) Transfer(req Request, offset int64) Outcome {
	plan, vectored := planVectors(req.Header, req.Trailer)
	hdtr := buildHdtr(plan, vectored)
	sent := darwinSeed(req.Count, plan, vectored)

	var errno syscall.Errno
	blocking("sendfile", func() {
		//nolint:staticcheck // SA1019: libSystem exposes no sf_hdtr wrapper
		_, _, errno = unix.Syscall6(
			unix.SYS_SENDFILE,
			uintptr(req.Src),
			uintptr(req.Dst),
			uintptr(offset),
			uintptr(unsafe.Pointer(&sent)),
			uintptr(unsafe.Pointer(hdtr)),
			uintptr(req.Flags),
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
