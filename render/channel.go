package render

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"
)

// Channel streams render commands to the display node over its own wire
// format: [0xAA][0x55][opcode][len16 LE][payload]. Drawing commands are
// fire-and-forget; a small set of system commands is synchronous
// request/response with a bounded wait.
//
// A mutex serializes all writes, so any goroutine may issue commands.
type Channel struct {
	mu   sync.Mutex
	port io.ReadWriter
	cfg  Config
	log  Logger

	weighted bool
}

// NewChannel returns a channel on port.
// port.Read must not block indefinitely when no data is available.
func NewChannel(port io.ReadWriter, opts ...Option) *Channel {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Channel{port: port, cfg: cfg, log: log, weighted: cfg.WeightedPixels}
}

// Send writes one command frame. It blocks only for the write itself.
func (c *Channel) Send(op Opcode, payload []byte) error {
	if len(payload) > MaxCommandPayload {
		return fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), MaxCommandPayload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(op, payload)
}

func (c *Channel) sendLocked(op Opcode, payload []byte) error {
	frame := make([]byte, HeaderSize+len(payload))
	frame[0] = Sync0
	frame[1] = Sync1
	frame[2] = byte(op)
	binary.LittleEndian.PutUint16(frame[3:], uint16(len(payload)))
	copy(frame[HeaderSize:], payload)

	n, err := c.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// request sends one frame and waits for a response with the expected
// opcode and payload length. The channel stays locked for the whole
// exchange so a concurrent command cannot interleave with the response.
func (c *Channel) request(ctx context.Context, op, respOp Opcode, payload []byte, wantLen int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flushStale()

	if err := c.sendLocked(op, payload); err != nil {
		return nil, err
	}

	deadline := c.cfg.Clock().Add(c.cfg.ResponseTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.cfg.Clock().After(deadline) {
			return nil, ErrResponseTimeout
		}

		gotOp, body, ok := c.tryReadFrame(deadline)
		if !ok {
			continue
		}
		if gotOp != respOp {
			return nil, &ResponseError{Request: op, Got: gotOp, Detail: "unexpected opcode"}
		}
		if len(body) != wantLen {
			return nil, &ResponseError{Request: op, Got: gotOp,
				Detail: fmt.Sprintf("payload length %d, expected %d", len(body), wantLen)}
		}
		return body, nil
	}
}

// flushStale discards whatever unread bytes a previous exchange left in
// the receive path.
func (c *Channel) flushStale() {
	var buf [64]byte
	for {
		n, err := c.port.Read(buf[:])
		if n == 0 || err != nil {
			return
		}
	}
}

// tryReadFrame attempts to read one response frame before the deadline.
// ok is false when no sync sequence appeared yet.
func (c *Channel) tryReadFrame(deadline time.Time) (Opcode, []byte, bool) {
	if !c.seekSync(deadline) {
		return 0, nil, false
	}

	var hdr [3]byte
	if !c.readFull(hdr[:], deadline) {
		return 0, nil, false
	}
	op := Opcode(hdr[0])
	length := int(binary.LittleEndian.Uint16(hdr[1:]))

	body := make([]byte, length)
	if !c.readFull(body, deadline) {
		return 0, nil, false
	}
	return op, body, true
}

// seekSync consumes bytes until the two-byte sync sequence is seen.
func (c *Channel) seekSync(deadline time.Time) bool {
	sawSync0 := false
	var b [1]byte
	for !c.cfg.Clock().After(deadline) {
		n, err := c.port.Read(b[:])
		if n == 0 {
			if err != nil && err != io.EOF {
				return false
			}
			c.cfg.Sleep(time.Millisecond)
			continue
		}
		switch {
		case sawSync0 && b[0] == Sync1:
			return true
		case b[0] == Sync0:
			sawSync0 = true
		default:
			sawSync0 = false
		}
	}
	return false
}

func (c *Channel) readFull(p []byte, deadline time.Time) bool {
	read := 0
	for read < len(p) {
		n, err := c.port.Read(p[read:])
		read += n
		if read == len(p) {
			return true
		}
		if c.cfg.Clock().After(deadline) {
			return false
		}
		if n == 0 {
			if err != nil && err != io.EOF {
				return false
			}
			c.cfg.Sleep(time.Millisecond)
		}
	}
	return true
}

// Ping checks that the renderer is alive. It returns nil when a pong
// arrives within the response window.
func (c *Channel) Ping(ctx context.Context) error {
	_, err := c.request(ctx, OpPing, OpPong, nil, 0)
	return err
}

// Capabilities describes the renderer, returned by QueryCaps.
type Capabilities struct {
	Version       uint8
	DisplayWidth  uint16
	DisplayHeight uint16
	SpriteSlots   uint8
	Features      uint16
}

// CapabilitiesSize is the fixed wire size of a capabilities response.
const CapabilitiesSize = 8

// QueryCaps asks the renderer what it can do.
func (c *Channel) QueryCaps(ctx context.Context) (*Capabilities, error) {
	body, err := c.request(ctx, OpCapsRequest, OpCapsResponse, nil, CapabilitiesSize)
	if err != nil {
		return nil, err
	}
	return &Capabilities{
		Version:       body[0],
		DisplayWidth:  binary.LittleEndian.Uint16(body[1:]),
		DisplayHeight: binary.LittleEndian.Uint16(body[3:]),
		SpriteSlots:   body[5],
		Features:      binary.LittleEndian.Uint16(body[6:]),
	}, nil
}

// RenderStats are the renderer's own counters, returned by QueryStats.
type RenderStats struct {
	Commands uint32
	Bytes    uint32
	Errors   uint32
	UptimeMs uint32
	FpsX10   uint16
}

// RenderStatsSize is the fixed wire size of a stats response.
const RenderStatsSize = 18

// QueryStats asks the renderer for its counters.
func (c *Channel) QueryStats(ctx context.Context) (*RenderStats, error) {
	body, err := c.request(ctx, OpStatsRequest, OpStatsReply, nil, RenderStatsSize)
	if err != nil {
		return nil, err
	}
	return &RenderStats{
		Commands: binary.LittleEndian.Uint32(body[0:]),
		Bytes:    binary.LittleEndian.Uint32(body[4:]),
		Errors:   binary.LittleEndian.Uint32(body[8:]),
		UptimeMs: binary.LittleEndian.Uint32(body[12:]),
		FpsX10:   binary.LittleEndian.Uint16(body[16:]),
	}, nil
}
