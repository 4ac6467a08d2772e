package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/bamsammich/zerocopy/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudLines         = 2
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

// hudPresenter prints a feed line per finished transfer and keeps a 2-line
// HUD at the bottom of the terminal that redraws in place.
type hudPresenter struct {
	w     io.Writer
	stats stats.ReadTicker

	hudDrawn    bool
	lastHUDDraw time.Time
}

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer, then every second.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw even when no events arrive (one long transfer).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			if time.Since(p.lastHUDDraw) >= hudMinInterval {
				p.drawHUD()
			}

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case TransferCompleted:
		p.feed("✓  %s  %10s  %s%s%s%s", styledPath(ev.Path), FormatBytes(ev.Size),
			ansiDim, ev.Method, ansiReset, peerSuffix(ev))
	case TransferFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		p.feed("✗  %s  %10s  %s%s", styledPath(ev.Path), FormatBytes(ev.Size), errMsg, peerSuffix(ev))
	case ConnAccepted:
		p.feed("→  %s%s%s", ansiDim, ev.Peer, ansiReset)
	case VerifyStarted:
		p.feed("%sverifying checksums...%s", ansiDim, ansiReset)
	case VerifyFailed:
		p.feed("✗  %s  CHECKSUM MISMATCH", styledPath(ev.Path))
	case TransferStarted, TransferProgress, TransferRetry, VerifyOK, ConnClosed:
		// reflected in the HUD counters
	}
}

// feed prints one line above the HUD.
func (p *hudPresenter) feed(format string, args ...any) {
	p.clearHUD()
	fmt.Fprintf(p.w, format+"\n", args...)
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesSent) / float64(snap.BytesTotal)
	}

	// Line 1: throughput sparkline + speed + byte totals.
	spark := Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		spark, FormatRate(p.stats.RollingSpeed(10)),
		FormatBytes(snap.BytesSent), FormatBytes(snap.BytesTotal))

	// Line 2: progress bar + kernel calls + retries + eta.
	fmt.Fprintf(p.w, " %3.0f%%  %s   calls %s  retries %s   eta %s\n",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.KernelCalls), FormatCount(snap.Retries),
		FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", hudLines)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// styledPath returns the path with the directory portion dimmed so the
// file name stands out.
func styledPath(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		return base
	}
	return ansiDim + dir + ansiReset + base
}
