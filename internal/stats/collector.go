package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// ReadTicker is the view of a Collector that presenters need.
type ReadTicker interface {
	Snapshot() Snapshot
	Tick()
	RollingSpeed(seconds int) float64
	SparklineData(n int) []float64
	ETA() time.Duration
}

// Writer is the view of a Collector that transfers update.
type Writer interface {
	AddKernelCalls(n int64)
	AddRetries(n int64)
	AddBytesSent(n int64)
	AddBytesTotal(n int64)
	AddTransfersCompleted(n int64)
	AddTransfersFailed(n int64)
	AddConnsAccepted(n int64)
	AddVerified(n int64)
	AddVerifyFailed(n int64)
}

// Discard is a Writer that drops every update.
var Discard Writer = discard{} //nolint:gochecknoglobals // stateless sentinel

type discard struct{}

func (discard) AddKernelCalls(int64)        {}
func (discard) AddRetries(int64)            {}
func (discard) AddBytesSent(int64)          {}
func (discard) AddBytesTotal(int64)         {}
func (discard) AddTransfersCompleted(int64) {}
func (discard) AddTransfersFailed(int64)    {}
func (discard) AddConnsAccepted(int64)      {}
func (discard) AddVerified(int64)           {}
func (discard) AddVerifyFailed(int64)       {}

// Collector tracks transfer statistics using lock-free atomic counters.
type Collector struct {
	startTime time.Time

	kernelCalls        atomic.Int64
	retries            atomic.Int64
	bytesSent          atomic.Int64
	bytesTotal         atomic.Int64
	transfersCompleted atomic.Int64
	transfersFailed    atomic.Int64
	connsAccepted      atomic.Int64
	verified           atomic.Int64
	verifyFailed       atomic.Int64

	// Ring buffer, written only by the presenter's Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int // samples written, capped at ringSize
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	KernelCalls        int64
	Retries            int64
	BytesSent          int64
	BytesTotal         int64
	TransfersCompleted int64
	TransfersFailed    int64
	ConnsAccepted      int64
	Verified           int64
	VerifyFailed       int64
	Elapsed            time.Duration
}

func (c *Collector) AddKernelCalls(n int64)        { c.kernelCalls.Add(n) }
func (c *Collector) AddRetries(n int64)            { c.retries.Add(n) }
func (c *Collector) AddBytesSent(n int64)          { c.bytesSent.Add(n) }
func (c *Collector) AddBytesTotal(n int64)         { c.bytesTotal.Add(n) }
func (c *Collector) AddTransfersCompleted(n int64) { c.transfersCompleted.Add(n) }
func (c *Collector) AddTransfersFailed(n int64)    { c.transfersFailed.Add(n) }
func (c *Collector) AddConnsAccepted(n int64)      { c.connsAccepted.Add(n) }
func (c *Collector) AddVerified(n int64)           { c.verified.Add(n) }
func (c *Collector) AddVerifyFailed(n int64)       { c.verifyFailed.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		KernelCalls:        c.kernelCalls.Load(),
		Retries:            c.retries.Load(),
		BytesSent:          c.bytesSent.Load(),
		BytesTotal:         c.bytesTotal.Load(),
		TransfersCompleted: c.transfersCompleted.Load(),
		TransfersFailed:    c.transfersFailed.Load(),
		ConnsAccepted:      c.connsAccepted.Load(),
		Verified:           c.verified.Load(),
		VerifyFailed:       c.verifyFailed.Load(),
		Elapsed:            c.Elapsed(),
	}
}

// Tick records the byte delta since the last Tick. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.bytesSent.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns up to the last n bytes/sec samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		data[i] = float64(c.throughput[(c.ringIdx-count+i+ringSize)%ringSize])
	}
	return data
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesSent.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"calls=%d retries=%d sent=%d completed=%d failed=%d conns=%d verified=%d",
		s.KernelCalls, s.Retries, s.BytesSent, s.TransfersCompleted,
		s.TransfersFailed, s.ConnsAccepted, s.Verified,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
