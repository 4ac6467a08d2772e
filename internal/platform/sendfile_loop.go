package platform

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sendFileCall is one invocation of AIX send_file(2). rc is 0 when done,
// 1 when more remains and -1 on error; sent is the bytes_sent it reported.
type sendFileCall func() (rc int, sent int64, errno syscall.Errno)

// sendFileLoop drives call until it reports completion or a real error,
// summing bytes_sent across invocations. EINTR is retried silently.
func sendFileLoop(call sendFileCall) Outcome {
	var (
		total int64
		rc    int
		errno syscall.Errno
	)
	for {
		var sent int64
		rc, sent, errno = call()
		total += sent
		if rc == 1 || (rc == -1 && errno == unix.EINTR) {
			continue
		}
		break
	}
	if rc == -1 {
		return Classify("send_file", -1, errno, total)
	}
	return Classify("send_file", int64(rc), 0, total)
}
