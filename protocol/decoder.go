package protocol

import (
	"io"
	"time"
)

// Default bounded-read windows for mid-frame reads. The underlying port is
// expected to return short reads rather than block indefinitely (a serial
// port opened with a read timeout behaves this way).
const (
	DefaultHeaderTimeout = 20 * time.Millisecond
	DefaultBodyTimeout   = 20 * time.Millisecond
)

// Decoder extracts packets from a byte stream.
//
// Decoding is a self-resynchronizing state machine: all bytes before the
// start marker are discarded, the 2-byte header (type, length) is read
// under a short timeout, and then exactly length+2 more bytes (payload +
// checksum + end marker) under a second timeout. A short read mid-frame is
// reported as ErrReadTimeout, distinct from ErrChecksum, so callers can
// account for link loss and link noise separately. Next never yields a
// partial packet.
type Decoder struct {
	r             io.Reader
	headerTimeout time.Duration
	bodyTimeout   time.Duration

	// now and sleep are swapped out in tests
	now   func() time.Time
	sleep func(time.Duration)

	buf [FrameOverhead + MaxPayloadSize]byte
}

// NewDecoder returns a decoder reading frames from r.
// r.Read must not block indefinitely when no data is available.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:             r,
		headerTimeout: DefaultHeaderTimeout,
		bodyTimeout:   DefaultBodyTimeout,
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// SetTimeouts overrides the header and body read windows.
func (d *Decoder) SetTimeouts(header, body time.Duration) {
	d.headerTimeout = header
	d.bodyTimeout = body
}

// Next attempts to decode one packet from the stream.
//
// Returns ErrNoData when the stream is dry before a start marker is found,
// ErrReadTimeout when the stream goes quiet mid-frame, ErrChecksum for a
// well-framed but corrupted packet, and a *FramingError when the end
// marker does not match. On any error the stream position is left after
// the consumed bytes; the next call re-scans for a start marker.
func (d *Decoder) Next() (*Packet, error) {
	if err := d.scanStart(); err != nil {
		return nil, err
	}

	hdr := d.buf[:HeaderSize]
	if !d.readFull(hdr, d.headerTimeout) {
		return nil, ErrReadTimeout
	}

	msgType := MessageType(hdr[0])
	payloadLen := int(hdr[1])

	// payload + checksum + end marker
	body := d.buf[:payloadLen+2]
	if !d.readFull(body, d.bodyTimeout) {
		return nil, ErrReadTimeout
	}

	p := &Packet{
		Type:    msgType,
		Payload: append([]byte(nil), body[:payloadLen]...),
	}

	if body[payloadLen+1] != EndByte {
		return nil, &FramingError{Reason: "invalid end marker"}
	}
	if body[payloadLen] != p.Checksum() {
		return nil, ErrChecksum
	}

	return p, nil
}

// scanStart discards bytes until a start marker is seen. Returns ErrNoData
// when the stream runs dry first.
func (d *Decoder) scanStart() error {
	var b [1]byte
	for {
		n, err := d.r.Read(b[:])
		if n == 1 && b[0] == StartByte {
			return nil
		}
		if n == 0 {
			// Dry stream: the port's own read timeout already bounded
			// this call, so report idle rather than spinning.
			return ErrNoData
		}
		if err != nil {
			return ErrNoData
		}
	}
}

// readFull reads exactly len(p) bytes within the given window.
// Returns false if the window expires first.
func (d *Decoder) readFull(p []byte, window time.Duration) bool {
	deadline := d.now().Add(window)
	read := 0
	for read < len(p) {
		n, err := d.r.Read(p[read:])
		read += n
		if read == len(p) {
			return true
		}
		if d.now().After(deadline) {
			return false
		}
		if n == 0 && err == nil {
			d.sleep(500 * time.Microsecond)
		}
		if err == io.EOF {
			d.sleep(500 * time.Microsecond)
		} else if err != nil {
			return false
		}
	}
	return true
}
