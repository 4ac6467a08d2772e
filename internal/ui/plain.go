package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/zerocopy/internal/stats"
)

// plainPresenter outputs one line per finished transfer to stdout,
// and periodic progress to stderr when not a TTY.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats stats.ReadTicker
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case TransferCompleted:
		fmt.Fprintf(p.w, "%s  %s  %s%s\n", ev.Path, FormatBytes(ev.Size), ev.Method, peerSuffix(ev))
	case TransferFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s%s\n", ev.Path, FormatBytes(ev.Size), errMsg, peerSuffix(ev))
	case ConnAccepted:
		fmt.Fprintf(p.w, "connect: %s\n", ev.Peer)
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", ev.Path)
	case TransferStarted, TransferProgress, TransferRetry, VerifyOK, ConnClosed:
		// silent in plain mode
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	speed := p.stats.RollingSpeed(10)
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesSent) / float64(snap.BytesTotal) * 100
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s retries %s eta %s\n",
			pct,
			FormatBytes(snap.BytesSent), FormatBytes(snap.BytesTotal),
			FormatRate(speed),
			FormatCount(snap.Retries),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s sent %s\n", FormatBytes(snap.BytesSent), FormatRate(speed))
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

func peerSuffix(ev Event) string {
	if ev.Peer == "" {
		return ""
	}
	return "  " + ev.Peer
}
