package ui

import "github.com/bamsammich/zerocopy/internal/event"

// Event is re-exported so presenters read naturally.
type Event = event.Event

// Re-export event types for convenience.
const (
	TransferStarted   = event.TransferStarted
	TransferProgress  = event.TransferProgress
	TransferRetry     = event.TransferRetry
	TransferCompleted = event.TransferCompleted
	TransferFailed    = event.TransferFailed
	VerifyStarted     = event.VerifyStarted
	VerifyOK          = event.VerifyOK
	VerifyFailed      = event.VerifyFailed
	ConnAccepted      = event.ConnAccepted
	ConnClosed        = event.ConnClosed
)
