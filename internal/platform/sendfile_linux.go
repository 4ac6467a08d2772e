//go:build linux

package platform

import (
	"golang.org/x/sys/unix"
)

var defaultStrategy Strategy = linuxStrategy{} //nolint:gochecknoglobals // build-time selection

// linuxStrategy wraps sendfile(2). A nil request offset reads from and
// advances the source's file position; count 0 transfers nothing.
type linuxStrategy struct{}

func (linuxStrategy) Method() Method { return LinuxSendfile }

func (linuxStrategy) Transfer(req Request, offset int64) Outcome {
	var offp *int64
	if req.Offset != nil {
		offp = &offset
	}

	var (
		n   int
		err error
	)
	blocking("sendfile", func() {
		n, err = unix.Sendfile(req.Dst, req.Src, offp, int(req.Count))
	})
	if err != nil {
		// The kernel reports no partial count alongside -1.
		return Classify("sendfile", -1, errnoOf(err), 0)
	}
	return Classify("sendfile", int64(n), 0, int64(n))
}
