//go:build darwin || freebsd || dragonfly

package platform

import (
	"golang.org/x/sys/unix"
)

// sfHdtr mirrors struct sf_hdtr from <sys/socket.h>.
type sfHdtr struct {
	headers  *unix.Iovec
	hdrCnt   int32
	trailers *unix.Iovec
	trlCnt   int32
}

// buildHdtr returns the sf_hdtr for p, or nil for the non-vectored path.
// The returned struct and its iovecs must stay reachable until the kernel
// call returns.
func buildHdtr(p vectorPlan, vectored bool) *sfHdtr {
	if !vectored {
		return nil
	}
	h := &sfHdtr{hdrCnt: p.hdrCnt, trlCnt: p.trlCnt}
	if p.hdrCnt > 0 {
		h.headers = iovecOf(p.header)
	}
	if p.trlCnt > 0 {
		h.trailers = iovecOf(p.trailer)
	}
	return h
}

func iovecOf(b []byte) *unix.Iovec {
	iov := &unix.Iovec{Base: &b[0]}
	iov.SetLen(len(b))
	return iov
}
