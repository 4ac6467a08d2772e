package ui

import "github.com/bamsammich/zerocopy/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats stats.ReadTicker
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Counters live on the collector; events are only drained.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
