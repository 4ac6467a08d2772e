package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/platform"
	"github.com/bamsammich/zerocopy/internal/stats"
)

// DefaultSendChunk is the data count requested per kernel call when
// SendOptions.Chunk is zero.
const DefaultSendChunk = 4 << 20 // 4 MiB

// SendOptions controls Send.
type SendOptions struct {
	// Offset is the first source byte to send. Nil means 0. Values that do
	// not fit the platform offset type fail before any kernel call.
	Offset *big.Int
	// Header and Trailer frame the data. They go through the kernel's
	// header/trailer vectors where available and plain socket writes
	// elsewhere.
	Header  []byte
	Trailer []byte
	Limiter *rate.Limiter
	Events  chan<- event.Event
	Stats   stats.Writer
	// Name labels events and logs; defaults to the file name.
	Name string
	// Count is the number of data bytes to send. 0 sends to end of file.
	Count int64
	Chunk int64
	// Flags is passed to the BSD-family sendfile.
	Flags int
}

// SendResult reports what Send did. BytesSent includes header and trailer
// bytes.
type SendResult struct {
	BytesSent int64
	Calls     int64
	Retries   int64
	Method    platform.Method
}

// sendState tracks what is still owed to the peer. Progress reported by
// the kernel is consumed from the header first, then data, then trailer.
type sendState struct {
	offset  *big.Int
	header  []byte
	trailer []byte
	data    int64
	// missing is how far the requested range runs past end of file. The
	// trailer is withheld when it is nonzero.
	missing int64
}

func (s *sendState) advance(n int64) {
	h := min(n, int64(len(s.header)))
	s.header = s.header[h:]
	n -= h

	d := min(n, s.data)
	s.data -= d
	s.offset.Add(s.offset, big.NewInt(d))
	n -= d

	t := min(n, int64(len(s.trailer)))
	s.trailer = s.trailer[t:]
}

func (s *sendState) done() bool {
	return s.data == 0 && len(s.header) == 0 && len(s.trailer) == 0
}

// Send transfers a range of f to conn. When the socket would block, Send
// parks on the runtime network poller until it becomes writable and tries
// again; cancelling ctx interrupts the wait if conn supports write
// deadlines. A source shorter than the requested range yields an error
// wrapping io.ErrUnexpectedEOF.
func Send(ctx context.Context, conn Conn, f *os.File, opts SendOptions) (SendResult, error) {
	st := statsOrDiscard(opts.Stats)
	if opts.Name == "" {
		opts.Name = f.Name()
	}
	name := opts.Name

	strategy := platform.Default()
	result := SendResult{Method: strategy.Method()}
	caps := platform.Capabilities()

	state := &sendState{
		offset:  new(big.Int),
		header:  opts.Header,
		trailer: opts.Trailer,
		data:    opts.Count,
	}
	if opts.Offset != nil {
		state.offset.Set(opts.Offset)
	}
	// Reject a bad offset before any framing reaches the wire.
	start, err := checkOffset(state.offset)
	if err != nil {
		return result, err
	}
	if opts.Flags != 0 && len(caps.Flags) == 0 {
		return result, &platform.ValidationError{Field: "flags", Err: platform.ErrFlagsUnsupported}
	}
	avail, err := remaining(f, start)
	if err != nil {
		return result, err
	}
	if state.data == 0 {
		state.data = avail
	} else if state.data > avail {
		// BSD sendfile stops at end of file and still sends the trailer,
		// so the kernel is only ever asked for bytes that exist.
		state.missing = state.data - avail
		state.data = avail
	}

	total := int64(len(state.header)) + state.data + int64(len(state.trailer))
	st.AddBytesTotal(total)
	emitEvent(opts.Events, event.Event{Type: event.TransferStarted, Path: name, Method: result.Method.String(), Total: total})

	err = sendAll(ctx, conn, f, state, caps.HeaderTrailer, opts, st, &result)
	if err != nil {
		st.AddTransfersFailed(1)
		emitEvent(opts.Events, event.Event{Type: event.TransferFailed, Path: name, Size: result.BytesSent, Error: err})
		slog.Debug("send failed", "path", name, "bytes", result.BytesSent, "error", err)
		return result, err
	}

	st.AddTransfersCompleted(1)
	emitEvent(opts.Events, event.Event{
		Type:   event.TransferCompleted,
		Path:   name,
		Method: result.Method.String(),
		Size:   result.BytesSent,
		Total:  total,
	})
	slog.Debug("send complete", "path", name, "bytes", result.BytesSent, "calls", result.Calls, "retries", result.Retries)
	return result, nil
}

func sendAll(
	ctx context.Context,
	conn Conn,
	f *os.File,
	state *sendState,
	vectored bool,
	opts SendOptions,
	st stats.Writer,
	result *SendResult,
) error {
	w := newRateLimitedWriter(ctx, conn, opts.Limiter)
	writePlain := func(b []byte) ([]byte, error) {
		if len(b) == 0 {
			return b, nil
		}
		n, err := w.Write(b)
		result.BytesSent += int64(n)
		st.AddBytesSent(int64(n))
		return b[n:], err
	}

	var err error
	if !vectored {
		if state.header, err = writePlain(state.header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if state.data > 0 {
		if err := sendData(ctx, conn, f, state, vectored, opts, st, result); err != nil {
			return err
		}
	}

	// The kernel is never asked for zero data bytes: several platforms read
	// that as "until end of file". Framing left over after the data goes
	// out with plain writes.
	if state.header, err = writePlain(state.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if state.missing > 0 {
		return fmt.Errorf("source ended %d bytes early: %w", state.missing, io.ErrUnexpectedEOF)
	}
	if state.trailer, err = writePlain(state.trailer); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

func sendData(
	ctx context.Context,
	conn Conn,
	f *os.File,
	state *sendState,
	vectored bool,
	opts SendOptions,
	st stats.Writer,
	result *SendResult,
) error {
	dst, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("socket descriptor: %w", err)
	}
	src, err := f.SyscallConn()
	if err != nil {
		return fmt.Errorf("file descriptor: %w", err)
	}

	if d, ok := conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		stop := context.AfterFunc(ctx, func() { _ = d.SetWriteDeadline(time.Now()) })
		defer stop()
	}

	chunk := opts.Chunk
	if chunk <= 0 {
		chunk = DefaultSendChunk
	}
	chunk = limitChunk(opts.Limiter, chunk)

	for state.data > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		count := min(state.data, chunk)
		req := platform.Request{
			Offset: new(big.Int).Set(state.offset),
			Count:  count,
			Flags:  opts.Flags,
		}
		if vectored {
			req.Header = state.header
			// The trailer rides along only with the final data chunk.
			if count == state.data && state.missing == 0 {
				req.Trailer = state.trailer
			}
		}

		var out platform.Outcome
		var ctrlErr error
		cerr := src.Control(func(sfd uintptr) {
			req.Src = int(sfd)
			ctrlErr = dst.Write(func(dfd uintptr) bool {
				req.Dst = int(dfd)
				out = platform.Transfer(req)
				if !kernelCalled(out) {
					return true
				}
				result.Calls++
				st.AddKernelCalls(1)
				if out.Status == platform.StatusRetryNeeded {
					result.Retries++
					st.AddRetries(1)
					emitEvent(opts.Events, event.Event{Type: event.TransferRetry, Path: opts.Name})
					return false
				}
				return true
			})
		})
		if cerr != nil {
			return fmt.Errorf("file descriptor: %w", cerr)
		}
		if ctrlErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for socket: %w", ctrlErr)
		}
		if out.Status == platform.StatusFailed {
			return out.Err
		}
		if out.BytesSent == 0 {
			return fmt.Errorf("source ended %d bytes early: %w", state.data, io.ErrUnexpectedEOF)
		}

		state.advance(out.BytesSent)
		result.BytesSent += out.BytesSent
		st.AddBytesSent(out.BytesSent)
		emitEvent(opts.Events, event.Event{
			Type:   event.TransferProgress,
			Path:   opts.Name,
			Method: result.Method.String(),
			Size:   out.BytesSent,
		})

		if err := waitN(ctx, opts.Limiter, out.BytesSent); err != nil {
			return err
		}
	}
	return nil
}

func checkOffset(off *big.Int) (int64, error) {
	start, err := platform.NarrowOffset(off, 64)
	if err != nil {
		return 0, &platform.ValidationError{Field: "offset", Err: err}
	}
	if start < 0 {
		return 0, &platform.ValidationError{Field: "offset", Err: platform.ErrNegativeOffset}
	}
	return start, nil
}

// remaining returns the number of bytes from start to the end of f.
func remaining(f *os.File, start int64) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	return max(info.Size()-start, 0), nil
}

// kernelCalled reports whether o came back from the kernel rather than from
// request validation.
func kernelCalled(o platform.Outcome) bool {
	if o.Status != platform.StatusFailed {
		return true
	}
	var osErr *platform.OSError
	return errors.As(o.Err, &osErr)
}
