package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps aggregate throughput to
// bytesPerSec. The burst is set to 1 MB so a kernel call can move a useful
// chunk without blocking on every page.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// limitChunk caps a per-call byte count so one call never asks the limiter
// for more than its burst.
func limitChunk(limiter *rate.Limiter, chunk int64) int64 {
	if limiter == nil {
		return chunk
	}
	if b := int64(limiter.Burst()); b > 0 && chunk > b {
		return b
	}
	return chunk
}

// waitN charges n bytes against limiter, splitting the reservation into
// burst-sized pieces since WaitN rejects n above the burst.
func waitN(ctx context.Context, limiter *rate.Limiter, n int64) error {
	if limiter == nil || n <= 0 {
		return nil
	}
	burst := int64(limiter.Burst())
	if burst <= 0 {
		return nil
	}
	for n > 0 {
		step := min(n, burst)
		if err := limiter.WaitN(ctx, int(step)); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// rateLimitedWriter wraps an io.Writer and enforces a shared rate limit.
type rateLimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedWriter(ctx context.Context, w io.Writer, limiter *rate.Limiter) io.Writer {
	if limiter == nil {
		return w
	}
	return &rateLimitedWriter{w: w, limiter: limiter, ctx: ctx}
}

func (rw *rateLimitedWriter) Write(p []byte) (int, error) {
	if err := waitN(rw.ctx, rw.limiter, int64(len(p))); err != nil {
		return 0, err
	}
	return rw.w.Write(p)
}
