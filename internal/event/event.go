package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	TransferStarted Type = iota + 1
	TransferProgress
	TransferRetry
	TransferCompleted
	TransferFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
	ConnAccepted
	ConnClosed
)

var typeNames = [...]string{
	TransferStarted:   "TransferStarted",
	TransferProgress:  "TransferProgress",
	TransferRetry:     "TransferRetry",
	TransferCompleted: "TransferCompleted",
	TransferFailed:    "TransferFailed",
	VerifyStarted:     "VerifyStarted",
	VerifyOK:          "VerifyOK",
	VerifyFailed:      "VerifyFailed",
	ConnAccepted:      "ConnAccepted",
	ConnClosed:        "ConnClosed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Timestamp time.Time
	Type      Type
	Error     error
	Path      string // source file
	Peer      string // remote address, if any
	Method    string // kernel interface used
	Size      int64  // bytes moved by this step, or total on completion
	Total     int64  // bytes the transfer will move
}

// New returns an event of type t stamped with the current time.
func New(t Type, path string) Event {
	return Event{Type: t, Path: path, Timestamp: time.Now()}
}
