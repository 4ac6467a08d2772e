//go:build solaris

package platform

import (
	"golang.org/x/sys/unix"
)

var defaultStrategy Strategy = solarisStrategy{} //nolint:gochecknoglobals // build-time selection

// solarisStrategy wraps sendfile(3EXT). Dst may be a socket or a regular
// file. The offset is always explicit and count is taken literally.
type solarisStrategy struct{}

func (solarisStrategy) Method() Method { return SolarisSendfile }

func (solarisStrategy) Transfer(req Request, offset int64) Outcome {
	var (
		n   int
		err error
	)
	blocking("sendfile", func() {
		n, err = unix.Sendfile(req.Dst, req.Src, &offset, int(req.Count))
	})
	if err != nil {
		return Classify("sendfile", -1, errnoOf(err), 0)
	}
	return Classify("sendfile", int64(n), 0, int64(n))
}
