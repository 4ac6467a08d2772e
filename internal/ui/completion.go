package ui

import (
	"fmt"

	"github.com/bamsammich/zerocopy/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  transfers 3  sent 2.1 GiB  avg 641 MB/s  calls 412  retries 9  time 3s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesSent) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.TransfersFailed > 0 || snap.VerifyFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  transfers %s  sent %s  avg %s  calls %s  retries %s  time %s",
		icon,
		FormatCount(snap.TransfersCompleted),
		FormatBytes(snap.BytesSent),
		FormatRate(avgSpeed),
		FormatCount(snap.KernelCalls),
		FormatCount(snap.Retries),
		FormatDuration(snap.Elapsed),
	)

	if snap.ConnsAccepted > 0 {
		base += "  conns " + FormatCount(snap.ConnsAccepted)
	}
	if snap.Verified > 0 || snap.VerifyFailed > 0 {
		base += "  verified " + FormatCount(snap.Verified)
	}

	return base + fmt.Sprintf("  errors %d", snap.TransfersFailed)
}
