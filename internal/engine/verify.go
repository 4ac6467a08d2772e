package engine

import (
	"fmt"

	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/stats"
)

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	SrcHash string
	DstHash string
}

// Match reports whether both digests were computed and agree.
func (r VerifyResult) Match() bool {
	return r.SrcHash != "" && r.SrcHash == r.DstHash
}

// VerifyFile compares BLAKE3 checksums of src and dst. A mismatch is
// reported as an error wrapping ErrVerifyFailed.
func VerifyFile(src, dst string, events chan<- event.Event, st stats.Writer) (VerifyResult, error) {
	st = statsOrDiscard(st)
	emitEvent(events, event.Event{Type: event.VerifyStarted, Path: src})

	var result VerifyResult
	fail := func(err error) (VerifyResult, error) {
		st.AddVerifyFailed(1)
		emitEvent(events, event.Event{Type: event.VerifyFailed, Path: src, Error: err})
		return result, err
	}

	var err error
	result.SrcHash, err = HashFile(src)
	if err != nil {
		return fail(err)
	}
	result.DstHash, err = HashFile(dst)
	if err != nil {
		return fail(err)
	}
	if !result.Match() {
		return fail(fmt.Errorf("%s: %w (src %s, dst %s)", dst, ErrVerifyFailed, result.SrcHash, result.DstHash))
	}

	st.AddVerified(1)
	emitEvent(events, event.Event{Type: event.VerifyOK, Path: src})
	return result, nil
}
