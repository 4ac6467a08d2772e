// Package engine drives whole transfers on top of the single-call kernel
// primitives in internal/platform: file-to-file copies and file-to-socket
// sends with pacing, progress events and statistics.
package engine

import (
	"errors"
	"io"
	"syscall"
	"time"

	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/stats"
)

var (
	// ErrSameFile is returned by CopyFile when src and dst name the same file.
	ErrSameFile = errors.New("source and destination are the same file")

	// ErrZeroCopyUnavailable is returned when no kernel primitive can copy
	// the given pair of files and nothing has been written yet.
	ErrZeroCopyUnavailable = errors.New("zero-copy not available for these files")

	// ErrVerifyFailed is returned when a copied file's checksum differs.
	ErrVerifyFailed = errors.New("checksum mismatch")
)

// SpecialFileError reports an attempt to copy to or from a named pipe.
type SpecialFileError struct {
	Path string
}

func (e *SpecialFileError) Error() string {
	return "`" + e.Path + "` is a named pipe"
}

// Conn is a connected socket that exposes its descriptor. *net.TCPConn and
// *net.UnixConn satisfy it.
type Conn interface {
	io.Writer
	syscall.Conn
}

func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

func statsOrDiscard(w stats.Writer) stats.Writer {
	if w == nil {
		return stats.Discard
	}
	return w
}
