package link

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/featherforge/arclink/protocol"
)

// Handler receives one validated aperiodic packet.
type Handler func(pkt *protocol.Packet)

// PeriodicHandler receives the body of one periodic frame after its
// sequence counter has been stripped and checked for gaps.
type PeriodicHandler func(seq uint32, body []byte)

// FrameSource produces the body of this node's next periodic frame.
// It is called once per scheduled send, from the tick goroutine.
type FrameSource func() []byte

// Stats are the per-endpoint link counters. Values only, no globals;
// read a copy via Endpoint.Stats.
type Stats struct {
	FramesSent     uint64
	FramesReceived uint64
	SendFailures   uint64
	ChecksumErrors uint64
	TimeoutErrors  uint64
	FramingErrors  uint64

	// PacketsDropped counts sequence gaps observed on periodic frames.
	// Diagnostic only; periodic data is never retransmitted.
	PacketsDropped uint64
}

// Endpoint owns one physical serial channel and runs the fixed-cadence
// bidirectional exchange over it: a drift-corrected periodic send plus a
// budget-bounded inbound drain, both from a single tick function.
//
// Exactly one goroutine may call Tick (or Run); Stats and Send are safe
// from any goroutine.
type Endpoint struct {
	port io.ReadWriter
	dec  *protocol.Decoder
	cfg  Config
	log  Logger

	period       time.Duration
	periodicType protocol.MessageType
	source       FrameSource

	handlers  map[protocol.MessageType]Handler
	periodic  map[protocol.MessageType]PeriodicHandler
	nextRxSeq map[protocol.MessageType]uint32

	lastFrame time.Time
	txSeq     uint32

	mu      sync.Mutex
	stats   Stats
	writeMu sync.Mutex
}

// New returns an endpoint on port that periodically sends frames of
// periodicType with bodies drawn from source. A nil source disables the
// periodic send; the endpoint then only drains and dispatches.
func New(port io.ReadWriter, periodicType protocol.MessageType, source FrameSource, opts ...Option) *Endpoint {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}

	dec := protocol.NewDecoder(port)
	dec.SetTimeouts(cfg.HeaderTimeout, cfg.BodyTimeout)

	// Serial ports carry stale bytes across opens; drop them before the
	// first drain so the decoder starts on a frame boundary.
	if f, ok := port.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}

	return &Endpoint{
		port:         port,
		dec:          dec,
		cfg:          cfg,
		log:          log,
		period:       time.Second / time.Duration(cfg.FrameRate),
		periodicType: periodicType,
		source:       source,
		handlers:     make(map[protocol.MessageType]Handler),
		periodic:     make(map[protocol.MessageType]PeriodicHandler),
		nextRxSeq:    make(map[protocol.MessageType]uint32),
	}
}

// Handle registers fn for aperiodic packets of type t. Registration must
// finish before the first Tick; the handler runs on the tick goroutine.
func (e *Endpoint) Handle(t protocol.MessageType, fn Handler) {
	e.handlers[t] = fn
}

// HandlePeriodic registers fn for periodic frames of type t. The endpoint
// strips the 4-byte sequence counter, records gaps, and passes the body.
func (e *Endpoint) HandlePeriodic(t protocol.MessageType, fn PeriodicHandler) {
	e.periodic[t] = fn
}

// Send encodes and writes one aperiodic packet. Safe to call from any
// goroutine; writes are serialized against the periodic sender.
func (e *Endpoint) Send(t protocol.MessageType, payload []byte) error {
	frame, err := protocol.EncodePacket(t, payload)
	if err != nil {
		return err
	}
	if err := e.write(frame); err != nil {
		e.log.Error("send failed", "type", t.String(), "err", err)
		return err
	}
	e.mu.Lock()
	e.stats.FramesSent++
	e.mu.Unlock()
	return nil
}

func (e *Endpoint) write(frame []byte) error {
	e.writeMu.Lock()
	n, err := e.port.Write(frame)
	e.writeMu.Unlock()
	if err != nil {
		e.countSendFailure()
		return err
	}
	if n != len(frame) {
		e.countSendFailure()
		return fmt.Errorf("short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

func (e *Endpoint) countSendFailure() {
	e.mu.Lock()
	e.stats.SendFailures++
	e.mu.Unlock()
}

// Stats returns a copy of the endpoint's counters.
func (e *Endpoint) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Tick runs one scheduler cycle at the given time: drain inbound packets
// up to the configured budget, then send the periodic frame if it is due.
//
// The periodic deadline advances by exactly one period per send rather
// than snapping to now, so jitter on individual ticks does not accumulate
// into long-run drift. If the deadline has fallen more than two periods
// behind, it resynchronizes to now instead of bursting catch-up sends.
func (e *Endpoint) Tick(now time.Time) {
	e.drain()

	if e.source == nil {
		return
	}
	if e.lastFrame.IsZero() {
		// First tick sends immediately and anchors the schedule.
		e.lastFrame = now.Add(-e.period)
	}
	if now.Sub(e.lastFrame) < e.period {
		return
	}

	lag := now.Sub(e.lastFrame)
	e.sendPeriodic()
	if lag > 2*e.period {
		e.log.Debug("schedule resync", "lag", lag.String())
		e.lastFrame = now
	} else {
		e.lastFrame = e.lastFrame.Add(e.period)
	}
}

func (e *Endpoint) sendPeriodic() {
	body := e.source()

	payload := make([]byte, protocol.SeqSize+len(body))
	binary.LittleEndian.PutUint32(payload, e.txSeq)
	copy(payload[protocol.SeqSize:], body)

	frame, err := protocol.EncodePacket(e.periodicType, payload)
	if err != nil {
		e.countSendFailure()
		e.log.Error("periodic frame oversize", "len", len(payload))
		return
	}
	// A failed send is counted, not retried: the next frame supersedes
	// this one anyway.
	if err := e.write(frame); err != nil {
		e.log.Error("periodic send failed", "err", err)
		return
	}

	e.txSeq++
	e.mu.Lock()
	e.stats.FramesSent++
	e.mu.Unlock()
}

func (e *Endpoint) drain() {
	for i := 0; i < e.cfg.DrainBudget; i++ {
		pkt, err := e.dec.Next()
		if err != nil {
			var fe *protocol.FramingError
			switch {
			case errors.Is(err, protocol.ErrNoData):
				return
			case errors.Is(err, protocol.ErrReadTimeout):
				e.mu.Lock()
				e.stats.TimeoutErrors++
				e.mu.Unlock()
				return
			case errors.Is(err, protocol.ErrChecksum):
				e.mu.Lock()
				e.stats.ChecksumErrors++
				e.mu.Unlock()
				continue
			case errors.As(err, &fe):
				e.mu.Lock()
				e.stats.FramingErrors++
				e.mu.Unlock()
				continue
			default:
				e.log.Error("decode failed", "err", err)
				return
			}
		}

		e.mu.Lock()
		e.stats.FramesReceived++
		e.mu.Unlock()
		e.dispatch(pkt)
	}
}

func (e *Endpoint) dispatch(pkt *protocol.Packet) {
	if pkt.Type.Periodic() {
		e.dispatchPeriodic(pkt)
		return
	}
	if fn, ok := e.handlers[pkt.Type]; ok {
		fn(pkt)
		return
	}
	e.log.Debug("unhandled packet", "type", pkt.Type.String(), "len", len(pkt.Payload))
}

func (e *Endpoint) dispatchPeriodic(pkt *protocol.Packet) {
	if len(pkt.Payload) < protocol.SeqSize {
		e.mu.Lock()
		e.stats.FramingErrors++
		e.mu.Unlock()
		return
	}
	seq := binary.LittleEndian.Uint32(pkt.Payload)
	body := pkt.Payload[protocol.SeqSize:]

	if expected, seen := e.nextRxSeq[pkt.Type]; seen && seq > expected {
		e.mu.Lock()
		e.stats.PacketsDropped += uint64(seq - expected)
		e.mu.Unlock()
		e.log.Debug("sequence gap", "type", pkt.Type.String(), "expected", expected, "got", seq)
	}
	e.nextRxSeq[pkt.Type] = seq + 1

	if fn, ok := e.periodic[pkt.Type]; ok {
		fn(seq, body)
	}
}

// Run calls Tick until ctx is cancelled, sleeping a fraction of the frame
// period between cycles so the drain keeps up with inbound traffic.
func (e *Endpoint) Run(ctx context.Context) error {
	interval := e.period / 4
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick(e.cfg.Clock())
		}
	}
}
