package platform

import (
	"math"
	"math/big"
)

// Method identifies which kernel interface performed a transfer.
type Method int

const (
	Unsupported     Method = iota
	LinuxSendfile          // Linux sendfile(2)
	BSDSendfile            // FreeBSD/DragonFly sendfile(2)
	DarwinSendfile         // macOS sendfile(2)
	AIXSendFile            // AIX send_file(2)
	SolarisSendfile        // Solaris sendfile(3EXT)
	DarwinFcopyfile        // macOS fcopyfile(3)
)

func (m Method) String() string {
	switch m {
	case LinuxSendfile:
		return "linux_sendfile"
	case BSDSendfile:
		return "bsd_sendfile"
	case DarwinSendfile:
		return "darwin_sendfile"
	case AIXSendFile:
		return "aix_send_file"
	case SolarisSendfile:
		return "solaris_sendfile"
	case DarwinFcopyfile:
		return "fcopyfile"
	default:
		return "unsupported"
	}
}

// Status is the classification of one transfer attempt.
type Status int

const (
	StatusComplete Status = iota
	StatusRetryNeeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusRetryNeeded:
		return "retry_needed"
	default:
		return "failed"
	}
}

// Request describes one transfer from Src to Dst.
type Request struct {
	// Offset is the source position to read from. Nil means the current
	// position of Src, which the kernel advances (Linux only).
	Offset  *big.Int
	Header  []byte
	Trailer []byte
	Dst     int
	Src     int
	// Count is the number of data bytes to transfer. On Darwin 0 means
	// "until end of file"; elsewhere it is taken literally.
	Count int64
	// Flags is forwarded to the BSD-family sendfile and rejected elsewhere.
	Flags int
}

// Outcome reports the result of one transfer attempt. BytesSent counts
// data plus header and trailer bytes, following the platform's accounting.
type Outcome struct {
	Err       error
	BytesSent int64
	Status    Status
}

// Strategy performs a single transfer through one kernel interface. The
// offset has already been validated and narrowed; it is ignored when
// req.Offset is nil.
type Strategy interface {
	Method() Method
	Transfer(req Request, offset int64) Outcome
}

// Offset is a convenience for building Request.Offset from an int64.
func Offset(off int64) *big.Int {
	return big.NewInt(off)
}

// Default returns the strategy compiled in for this platform.
//
//nolint:ireturn // strategy is selected per build
func Default() Strategy {
	return defaultStrategy
}

// Transfer validates req and runs it through the platform strategy.
func Transfer(req Request) Outcome {
	return TransferWith(defaultStrategy, req)
}

// TransferWith is Transfer with an explicit strategy.
func TransferWith(s Strategy, req Request) Outcome {
	if s.Method() == Unsupported {
		return failed(ErrUnsupported)
	}
	offset, err := req.validate(s.Method())
	if err != nil {
		return failed(err)
	}
	return s.Transfer(req, offset)
}

// Sendfile runs req and returns the number of bytes sent. It returns 0 and
// a nil error when the source is at end of file. A zero-progress transient
// condition is reported as an error matching ErrWouldBlock.
func Sendfile(req Request) (int64, error) {
	out := Transfer(req)
	if out.Status != StatusComplete {
		return 0, out.Err
	}
	return out.BytesSent, nil
}

func (r Request) validate(m Method) (int64, error) {
	if r.Dst < 0 {
		return 0, &ValidationError{Field: "dst", Err: ErrBadDescriptor}
	}
	if r.Src < 0 {
		return 0, &ValidationError{Field: "src", Err: ErrBadDescriptor}
	}
	if r.Count < 0 {
		return 0, &ValidationError{Field: "count", Err: ErrNegativeCount}
	}
	if uint64(r.Count) > math.MaxInt {
		return 0, &ValidationError{Field: "count", Err: ErrCountOverflow}
	}
	if !supportsHeaderTrailer(m) && (len(r.Header) > 0 || len(r.Trailer) > 0) {
		return 0, &ValidationError{Field: "header", Err: ErrHeaderTrailerUnsupported}
	}
	if !supportsFlags(m) && r.Flags != 0 {
		return 0, &ValidationError{Field: "flags", Err: ErrFlagsUnsupported}
	}

	if r.Offset == nil {
		if !supportsCurrentOffset(m) {
			return 0, &ValidationError{Field: "offset", Err: ErrOffsetRequired}
		}
		return 0, nil
	}
	off, err := NarrowOffset(r.Offset, nativeOffsetBits)
	if err != nil {
		return 0, &ValidationError{Field: "offset", Err: err}
	}
	if off < 0 {
		return 0, &ValidationError{Field: "offset", Err: ErrNegativeOffset}
	}
	return off, nil
}

func supportsHeaderTrailer(m Method) bool {
	switch m {
	case BSDSendfile, DarwinSendfile, AIXSendFile:
		return true
	}
	return false
}

func supportsFlags(m Method) bool {
	return m == BSDSendfile || m == DarwinSendfile
}

func supportsCurrentOffset(m Method) bool {
	return m == LinuxSendfile
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
