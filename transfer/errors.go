package transfer

import "errors"

var (
	// ErrTransferActive is returned by Start while a session is in flight.
	ErrTransferActive = errors.New("transfer already in progress")

	// ErrRetriesExhausted means one fragment failed its full retry budget.
	ErrRetriesExhausted = errors.New("retry budget exhausted")

	// ErrAborted means the peer answered with an error-status ack.
	ErrAborted = errors.New("transfer aborted by peer")

	// ErrCancelled means the local side cancelled the session.
	ErrCancelled = errors.New("transfer cancelled")

	// ErrIdleTimeout means the receiver saw no fragment activity for the
	// configured idle window and abandoned the session.
	ErrIdleTimeout = errors.New("transfer idle timeout")

	// ErrChecksumMismatch means the reassembled buffer failed the
	// whole-file CRC announced in the metadata.
	ErrChecksumMismatch = errors.New("file checksum mismatch")
)

// SizeError indicates metadata whose geometry is internally inconsistent
// or a fragment whose length does not match its slot in the buffer.
type SizeError struct {
	Detail string
}

func (e *SizeError) Error() string {
	return "transfer size error: " + e.Detail
}
