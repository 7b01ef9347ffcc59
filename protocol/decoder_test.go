package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

// chunkReader serves a fixed script of read results, then reports EOF.
// It mimics a serial port opened with a read timeout: short reads between
// chunks, never blocking.
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n == len(c.chunks[0]) {
		c.chunks = c.chunks[1:]
	} else {
		c.chunks[0] = c.chunks[0][n:]
	}
	return n, nil
}

// newTestDecoder wires a decoder to a fake clock that jumps 1ms per
// observation, so read windows expire without real sleeping.
func newTestDecoder(chunks ...[]byte) *Decoder {
	d := NewDecoder(&chunkReader{chunks: chunks})
	now := time.Unix(0, 0)
	d.now = func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
	d.sleep = func(time.Duration) {}
	return d
}

func mustEncode(t *testing.T, msgType MessageType, payload []byte) []byte {
	t.Helper()
	frame, err := EncodePacket(msgType, payload)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return frame
}

func TestDecoderSingleFrame(t *testing.T) {
	frame := mustEncode(t, MsgSensorData, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	d := newTestDecoder(frame)

	pkt, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if pkt.Type != MsgSensorData {
		t.Errorf("type = %v, want %v", pkt.Type, MsgSensorData)
	}
	if !bytes.Equal(pkt.Payload, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("payload = % X", pkt.Payload)
	}

	if _, err := d.Next(); !errors.Is(err, ErrNoData) {
		t.Errorf("second Next error = %v, want ErrNoData", err)
	}
}

func TestDecoderBackToBackFrames(t *testing.T) {
	f1 := mustEncode(t, MsgPing, nil)
	f2 := mustEncode(t, MsgPong, []byte{0x01})

	// Both frames arrive in one read.
	d := newTestDecoder(append(append([]byte{}, f1...), f2...))

	p1, err := d.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if p1.Type != MsgPing {
		t.Errorf("first type = %v, want %v", p1.Type, MsgPing)
	}

	p2, err := d.Next()
	if err != nil {
		t.Fatalf("second Next failed: %v", err)
	}
	if p2.Type != MsgPong {
		t.Errorf("second type = %v, want %v", p2.Type, MsgPong)
	}
}

func TestDecoderResyncAfterNoise(t *testing.T) {
	frame := mustEncode(t, MsgStatus, []byte{0x42})
	noisy := append([]byte{0x00, 0xFF, 0x13, 0x55}, frame...)

	d := newTestDecoder(noisy)

	pkt, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if pkt.Type != MsgStatus || !bytes.Equal(pkt.Payload, []byte{0x42}) {
		t.Errorf("got %v % X", pkt.Type, pkt.Payload)
	}
}

func TestDecoderFragmentedArrival(t *testing.T) {
	frame := mustEncode(t, MsgSensorData, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	// One byte per read, as a slow serial port delivers.
	var chunks [][]byte
	for _, b := range frame {
		chunks = append(chunks, []byte{b})
	}
	d := newTestDecoder(chunks...)

	pkt, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !bytes.Equal(pkt.Payload, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("payload = % X", pkt.Payload)
	}
}

func TestDecoderTimeoutMidFrame(t *testing.T) {
	frame := mustEncode(t, MsgSensorData, make([]byte, 16))

	// Frame cut off after the header: the stream goes quiet mid-body.
	d := newTestDecoder(frame[:4])

	if _, err := d.Next(); !errors.Is(err, ErrReadTimeout) {
		t.Errorf("error = %v, want ErrReadTimeout", err)
	}
}

func TestDecoderTimeoutBeforeHeader(t *testing.T) {
	// Start marker alone, then silence.
	d := newTestDecoder([]byte{StartByte})

	if _, err := d.Next(); !errors.Is(err, ErrReadTimeout) {
		t.Errorf("error = %v, want ErrReadTimeout", err)
	}
}

func TestDecoderChecksumDistinctFromTimeout(t *testing.T) {
	frame := mustEncode(t, MsgCommand, []byte{0x10, 0x20, 0x30})
	frame[4] ^= 0x01 // corrupt a payload byte, frame still complete

	d := newTestDecoder(frame)

	if _, err := d.Next(); !errors.Is(err, ErrChecksum) {
		t.Errorf("error = %v, want ErrChecksum", err)
	}
}

func TestDecoderBadEndMarker(t *testing.T) {
	frame := mustEncode(t, MsgCommand, []byte{0x10})
	frame[len(frame)-1] = 0x00

	d := newTestDecoder(frame)

	var fe *FramingError
	if _, err := d.Next(); !errors.As(err, &fe) {
		t.Errorf("error = %v, want *FramingError", err)
	}
}

func TestDecoderRecoversAfterCorruption(t *testing.T) {
	bad := mustEncode(t, MsgCommand, []byte{0x10})
	bad[3] ^= 0xFF
	good := mustEncode(t, MsgPing, nil)

	d := newTestDecoder(append(bad, good...))

	if _, err := d.Next(); !errors.Is(err, ErrChecksum) {
		t.Fatalf("first Next error = %v, want ErrChecksum", err)
	}

	pkt, err := d.Next()
	if err != nil {
		t.Fatalf("second Next failed: %v", err)
	}
	if pkt.Type != MsgPing {
		t.Errorf("type = %v, want %v", pkt.Type, MsgPing)
	}
}

func TestDecoderIdleStream(t *testing.T) {
	d := newTestDecoder()

	if _, err := d.Next(); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}
