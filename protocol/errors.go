package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksum indicates a well-framed packet whose checksum did not
	// match the received bytes. The packet is discarded.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrReadTimeout indicates a partial read: the stream went quiet in
	// the middle of a frame. Distinguished from ErrChecksum so callers can
	// account for link loss separately from link noise.
	ErrReadTimeout = errors.New("read timeout mid-frame")

	// ErrNoData indicates no start marker was found before the stream ran
	// dry. This is the idle case, not an error condition worth counting.
	ErrNoData = errors.New("no packet available")
)

// FramingError indicates a structurally invalid frame (bad marker or
// inconsistent length). The decoder recovers by re-scanning for the next
// start marker.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return "framing error: " + e.Reason
}

// PayloadError indicates a structurally valid packet whose payload does not
// match the fixed layout expected for its message type.
type PayloadError struct {
	Type MessageType
	Got  int
	Want int
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: got %d bytes, expected %d", e.Type, e.Got, e.Want)
}
