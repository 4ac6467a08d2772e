package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/platform"
	"github.com/bamsammich/zerocopy/internal/stats"
)

// minCopyBlock is the smallest count requested from each sendfile call
// during a file copy. Calls repeat until the kernel returns 0, so a block
// smaller or larger than the file only changes the number of calls.
const minCopyBlock = 8 << 20 // 8 MiB

// fileSendfileRefused is set once the kernel rejects a regular file as the
// sendfile destination (ENOTSOCK); later copies skip straight to the next
// primitive.
var fileSendfileRefused atomic.Bool //nolint:gochecknoglobals // process-wide probe result

// errGiveUp marks a failure that happened before any byte was written, so
// the next primitive may be tried.
var errGiveUp = errors.New("zero-copy primitive gave up")

// CopyOptions controls CopyFile.
type CopyOptions struct {
	Limiter *rate.Limiter
	Events  chan<- event.Event
	Stats   stats.Writer
	// NoFollowSymlinks copies a symlink source as a new symlink instead of
	// the file it points to.
	NoFollowSymlinks bool
	// Verify compares BLAKE3 digests of src and dst after the copy.
	Verify bool
}

// CopyResult reports what CopyFile did.
type CopyResult struct {
	Digest       string // dst digest when Verify is set
	BytesWritten int64
	Method       platform.Method
	Symlink      bool
}

// CopyFile copies the content of src into dst using only kernel zero-copy
// primitives: sendfile between regular files where the kernel allows it,
// then fcopyfile on macOS. There is no read/write fallback; when neither
// primitive can move the data an error wrapping ErrZeroCopyUnavailable is
// returned. dst is created or truncated.
func CopyFile(ctx context.Context, src, dst string, opts CopyOptions) (CopyResult, error) {
	if sameFile(src, dst) {
		return CopyResult{}, fmt.Errorf("%s and %s: %w", src, dst, ErrSameFile)
	}
	for _, p := range []string{src, dst} {
		// A missing file is not an error here; open reports it below.
		if info, err := os.Stat(p); err == nil && info.Mode()&os.ModeNamedPipe != 0 {
			return CopyResult{}, &SpecialFileError{Path: p}
		}
	}

	if opts.NoFollowSymlinks {
		if info, err := os.Lstat(src); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return copySymlink(src, dst)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return CopyResult{}, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return CopyResult{}, fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return CopyResult{}, fmt.Errorf("create destination: %w", err)
	}

	st := statsOrDiscard(opts.Stats)
	st.AddBytesTotal(info.Size())
	emitEvent(opts.Events, event.Event{Type: event.TransferStarted, Path: src, Total: info.Size()})

	result, err := copyData(ctx, in, out, info.Size(), opts, st)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close destination: %w", cerr)
	}
	if err == nil && opts.Verify {
		var vr VerifyResult
		vr, err = VerifyFile(src, dst, opts.Events, st)
		result.Digest = vr.DstHash
	}
	if err != nil {
		st.AddTransfersFailed(1)
		emitEvent(opts.Events, event.Event{
			Type:   event.TransferFailed,
			Path:   src,
			Method: result.Method.String(),
			Size:   result.BytesWritten,
			Error:  err,
		})
		return result, err
	}

	st.AddTransfersCompleted(1)
	emitEvent(opts.Events, event.Event{
		Type:   event.TransferCompleted,
		Path:   src,
		Method: result.Method.String(),
		Size:   result.BytesWritten,
		Total:  info.Size(),
	})
	slog.Debug("copied file", "src", src, "dst", dst, "bytes", result.BytesWritten, "method", result.Method)
	return result, nil
}

func copySymlink(src, dst string) (CopyResult, error) {
	target, err := os.Readlink(src)
	if err != nil {
		return CopyResult{}, err
	}
	if err := os.Symlink(target, dst); err != nil {
		return CopyResult{}, err
	}
	slog.Debug("copied symlink", "src", src, "dst", dst, "target", target)
	return CopyResult{Symlink: true}, nil
}

func copyData(
	ctx context.Context,
	in, out *os.File,
	size int64,
	opts CopyOptions,
	st stats.Writer,
) (CopyResult, error) {
	caps := platform.Capabilities()
	var cause error

	if caps.Sendfile && !fileSendfileRefused.Load() {
		result, err := copySendfile(ctx, in, out, size, opts, st)
		if !errors.Is(err, errGiveUp) {
			return result, err
		}
		slog.Debug("sendfile cannot copy these files", "src", in.Name(), "error", err)
		cause = err
	}

	if caps.Fcopyfile {
		result, err := copyFcopyfile(in, out, st)
		if !errors.Is(err, errGiveUp) {
			return result, err
		}
		slog.Debug("fcopyfile cannot copy these files", "src", in.Name(), "error", err)
		cause = err
	}

	if cause == nil {
		return CopyResult{}, fmt.Errorf("%s: %w", in.Name(), ErrZeroCopyUnavailable)
	}
	return CopyResult{}, fmt.Errorf("%s: %w (%w)", in.Name(), ErrZeroCopyUnavailable, cause)
}

// copySendfile calls sendfile from offset 0 until it returns 0.
func copySendfile(
	ctx context.Context,
	in, out *os.File,
	size int64,
	opts CopyOptions,
	st stats.Writer,
) (CopyResult, error) {
	srcFd := int(in.Fd())
	dstFd := int(out.Fd())
	block := limitChunk(opts.Limiter, max(size, minCopyBlock))

	result := CopyResult{Method: platform.Default().Method()}
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		o := platform.Transfer(platform.Request{
			Dst:    dstFd,
			Src:    srcFd,
			Offset: platform.Offset(offset),
			Count:  block,
		})
		if kernelCalled(o) {
			st.AddKernelCalls(1)
		}

		switch o.Status {
		case platform.StatusRetryNeeded:
			st.AddRetries(1)
			continue
		case platform.StatusFailed:
			return result, sendfileCopyError(o.Err, offset)
		}
		if o.BytesSent == 0 {
			return result, nil // EOF
		}

		if offset == 0 && o.BytesSent < size {
			platform.Preallocate(dstFd, size)
		}
		offset += o.BytesSent
		result.BytesWritten = offset
		st.AddBytesSent(o.BytesSent)
		emitEvent(opts.Events, event.Event{
			Type:   event.TransferProgress,
			Path:   in.Name(),
			Method: result.Method.String(),
			Size:   o.BytesSent,
			Total:  size,
		})

		if err := waitN(ctx, opts.Limiter, o.BytesSent); err != nil {
			return result, err
		}
	}
}

// sendfileCopyError decides whether a sendfile failure ends the copy or lets
// the next primitive try. ENOTSOCK means this kernel only sends to sockets.
// ENOSPC is always fatal. Anything else is fatal once data has been written.
func sendfileCopyError(err error, offset int64) error {
	var osErr *platform.OSError
	if !errors.As(err, &osErr) {
		return err
	}
	switch {
	case osErr.Errno == unix.ENOTSOCK:
		fileSendfileRefused.Store(true)
		return fmt.Errorf("%w: %w", errGiveUp, err)
	case osErr.Errno == unix.ENOSPC:
		return err
	case offset == 0:
		return fmt.Errorf("%w: %w", errGiveUp, err)
	}
	return err
}

// copyFcopyfile copies the whole file in one call. fcopyfile reports no
// byte count, so the destination size is read back afterwards and the
// limiter does not apply.
func copyFcopyfile(in, out *os.File, st stats.Writer) (CopyResult, error) {
	result := CopyResult{Method: platform.DarwinFcopyfile}

	err := platform.CopyWhole(int(in.Fd()), int(out.Fd()))
	st.AddKernelCalls(1)
	if err != nil {
		var osErr *platform.OSError
		if errors.As(err, &osErr) && (osErr.Errno == unix.EINVAL || osErr.Errno == unix.ENOTSUP) {
			return result, fmt.Errorf("%w: %w", errGiveUp, err)
		}
		return result, err
	}

	info, err := out.Stat()
	if err != nil {
		return result, fmt.Errorf("stat destination: %w", err)
	}
	result.BytesWritten = info.Size()
	st.AddBytesSent(info.Size())
	return result, nil
}

func sameFile(src, dst string) bool {
	a, err := os.Stat(src)
	if err != nil {
		return false
	}
	b, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}
