package platform

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type scriptedCall struct {
	rc    int
	sent  int64
	errno syscall.Errno
}

// scripted replays steps in order and counts invocations.
func scripted(steps []scriptedCall, calls *int) sendFileCall {
	return func() (int, int64, syscall.Errno) {
		s := steps[*calls]
		*calls++
		return s.rc, s.sent, s.errno
	}
}

func TestSendFileLoopConverges(t *testing.T) {
	var calls int
	out := sendFileLoop(scripted([]scriptedCall{
		{rc: 1, sent: 100},
		{rc: 1, sent: 250},
		{rc: 1, sent: 50},
		{rc: 0, sent: 0},
	}, &calls))

	assert.Equal(t, 4, calls)
	assert.Equal(t, StatusComplete, out.Status)
	assert.Equal(t, int64(400), out.BytesSent)
	assert.NoError(t, out.Err)
}

func TestSendFileLoopRetriesEINTR(t *testing.T) {
	var calls int
	out := sendFileLoop(scripted([]scriptedCall{
		{rc: -1, sent: 10, errno: unix.EINTR},
		{rc: 1, sent: 20},
		{rc: 0, sent: 5},
	}, &calls))

	assert.Equal(t, 3, calls)
	assert.Equal(t, StatusComplete, out.Status)
	assert.Equal(t, int64(35), out.BytesSent)
}

func TestSendFileLoopFatal(t *testing.T) {
	var calls int
	out := sendFileLoop(scripted([]scriptedCall{
		{rc: 1, sent: 100},
		{rc: -1, errno: unix.ECONNRESET},
	}, &calls))

	assert.Equal(t, 2, calls)
	assert.Equal(t, StatusFailed, out.Status)
	var osErr *OSError
	require.ErrorAs(t, out.Err, &osErr)
	assert.Equal(t, "send_file", osErr.Op)
	assert.Equal(t, unix.ECONNRESET, osErr.Errno)
}

func TestSendFileLoopDoesNotRetryEAGAIN(t *testing.T) {
	var calls int
	out := sendFileLoop(scripted([]scriptedCall{
		{rc: -1, errno: unix.EAGAIN},
	}, &calls))

	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusRetryNeeded, out.Status)
	assert.ErrorIs(t, out.Err, ErrWouldBlock)
}

func TestSendFileLoopEAGAINAfterProgress(t *testing.T) {
	var calls int
	out := sendFileLoop(scripted([]scriptedCall{
		{rc: 1, sent: 300},
		{rc: -1, sent: 20, errno: unix.EAGAIN},
	}, &calls))

	assert.Equal(t, 2, calls)
	assert.Equal(t, StatusComplete, out.Status)
	assert.Equal(t, int64(320), out.BytesSent)
}
