//go:build linux

package platform

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// sourceFile writes data to a temp file and returns it opened for reading.
func sourceFile(t *testing.T, data []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// socketPair returns a connected AF_UNIX stream pair: the raw send side and
// the receive side wrapped as a file.
func socketPair(t *testing.T) (int, *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	recv := os.NewFile(uintptr(fds[1]), "recv")
	t.Cleanup(func() {
		unix.Close(fds[0])
		recv.Close()
	})
	return fds[0], recv
}

func readN(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	return buf
}

func TestLinuxSendfileFull(t *testing.T) {
	data := randomBytes(t, 16*1024)
	src := sourceFile(t, data)
	dst, recv := socketPair(t)

	n, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: int64(len(data))})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, readN(t, recv, len(data)))
}

func TestLinuxSendfileLargeLoop(t *testing.T) {
	data := randomBytes(t, 4*1024*1024)
	src := sourceFile(t, data)
	dst, recv := socketPair(t)

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(data))
		_, _ = io.ReadFull(recv, buf)
		got <- buf
	}()

	var off int64
	for off < int64(len(data)) {
		out := Transfer(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(off), Count: int64(len(data)) - off})
		require.Equal(t, StatusComplete, out.Status, "err: %v", out.Err)
		require.Positive(t, out.BytesSent)
		off += out.BytesSent
	}
	assert.Equal(t, data, <-got)
}

func TestLinuxSendfileOffsetRange(t *testing.T) {
	data := []byte("AAAA_BBBB_CCCC")
	src := sourceFile(t, data)
	dst, recv := socketPair(t)

	n, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(5), Count: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, []byte("BBBB"), readN(t, recv, 4))

	// An explicit offset leaves the file position alone.
	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestLinuxSendfileCurrentPosition(t *testing.T) {
	data := []byte("0123456789")
	src := sourceFile(t, data)
	dst, recv := socketPair(t)

	_, err := src.Seek(3, io.SeekStart)
	require.NoError(t, err)

	n, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Count: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, []byte("3456"), readN(t, recv, 4))

	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos, "absent offset advances the source position")
}

func TestLinuxSendfileEOF(t *testing.T) {
	data := []byte("short")
	src := sourceFile(t, data)
	dst, _ := socketPair(t)

	n, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(int64(len(data))), Count: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = src.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	n, err = Sendfile(Request{Dst: dst, Src: int(src.Fd()), Count: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLinuxSendfileZeroCount(t *testing.T) {
	src := sourceFile(t, []byte("data"))
	dst, _ := socketPair(t)

	n, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLinuxSendfileOverflowSkipsKernel(t *testing.T) {
	var calls int
	testHookKernelCall = func(string) { calls++ }
	t.Cleanup(func() { testHookKernelCall = nil })

	src := sourceFile(t, []byte("data"))
	dst, _ := socketPair(t)

	_, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: overflowOffset(), Count: 4})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrOffsetOverflow)
	assert.Equal(t, 0, calls)

	_, err = Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLinuxSendfileWouldBlock(t *testing.T) {
	src := sourceFile(t, randomBytes(t, 64*1024))
	dst, _ := socketPair(t)
	require.NoError(t, unix.SetNonblock(dst, true))

	// Fill the socket buffer so the next send cannot make progress.
	chunk := make([]byte, 64*1024)
	for {
		_, err := unix.Write(dst, chunk)
		if err == unix.EAGAIN {
			break
		}
		require.NoError(t, err)
	}

	out := Transfer(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: 1024})
	assert.Equal(t, StatusRetryNeeded, out.Status)
	assert.Equal(t, int64(0), out.BytesSent)
	assert.ErrorIs(t, out.Err, ErrWouldBlock)

	_, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: 1024})
	assert.True(t, IsWouldBlock(err))
}

func TestLinuxSendfileBadDescriptor(t *testing.T) {
	src := sourceFile(t, []byte("data"))
	fd := int(src.Fd())
	dst, _ := socketPair(t)

	// A directory cannot be a sendfile source.
	dir, err := os.Open(t.TempDir())
	require.NoError(t, err)
	defer dir.Close()

	out := Transfer(Request{Dst: dst, Src: int(dir.Fd()), Offset: Offset(0), Count: 4})
	assert.Equal(t, StatusFailed, out.Status)
	var osErr *OSError
	require.ErrorAs(t, out.Err, &osErr)
	assert.Equal(t, "sendfile", osErr.Op)
	assert.NotZero(t, osErr.Errno)

	// The source is untouched by failures elsewhere.
	n, err := Sendfile(Request{Dst: dst, Src: fd, Offset: Offset(0), Count: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestLinuxRejectsHeaderTrailer(t *testing.T) {
	src := sourceFile(t, []byte("data"))
	dst, _ := socketPair(t)

	_, err := Sendfile(Request{Dst: dst, Src: int(src.Fd()), Offset: Offset(0), Count: 4, Header: []byte("H")})
	assert.ErrorIs(t, err, ErrHeaderTrailerUnsupported)
}

func TestLinuxCapabilities(t *testing.T) {
	caps := Capabilities()
	assert.Equal(t, LinuxSendfile, caps.Method)
	assert.True(t, caps.Sendfile)
	assert.True(t, caps.CurrentOffset)
	assert.False(t, caps.HeaderTrailer)
	assert.False(t, caps.Fcopyfile)
	assert.Empty(t, caps.Flags)
}

func TestCopyWholeUnsupportedOnLinux(t *testing.T) {
	assert.ErrorIs(t, CopyWhole(0, 1), ErrUnsupported)
}
