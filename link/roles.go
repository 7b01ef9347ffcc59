package link

import (
	"io"

	"github.com/featherforge/arclink/protocol"
	"github.com/featherforge/arclink/telemetry"
)

// NewCoordinator wires an endpoint for the sensor/coordinator node. It
// sends the latest telemetry snapshot from buf once per frame period,
// latches inbound render output frames into frames, answers pings, and
// serves the out-of-band network identifier on data requests.
func NewCoordinator(port io.ReadWriter, buf *telemetry.DoubleBuffer, frames *telemetry.FrameBuffer, opts ...Option) *Endpoint {
	ep := New(port, protocol.MsgSensorData, func() []byte {
		s := buf.Read()
		return s.Marshal()
	}, opts...)

	ep.HandlePeriodic(protocol.MsgLedData, func(seq uint32, body []byte) {
		frames.Store(body, seq, ep.cfg.Clock())
	})

	registerCommon(ep)

	ep.Handle(protocol.MsgDataRequest, func(*protocol.Packet) {
		s := buf.Read()
		if err := ep.Send(protocol.MsgDataResponse, []byte(s.NetworkID)); err != nil {
			ep.log.Error("data response failed", "err", err)
		}
	})

	return ep
}

// NewRenderer wires an endpoint for the rendering node. It sends render
// output from frameSource once per frame period and delivers decoded
// telemetry frames to onTelemetry. A nil onTelemetry discards them.
func NewRenderer(port io.ReadWriter, frameSource FrameSource, onTelemetry func(*protocol.TelemetryPayload), opts ...Option) *Endpoint {
	ep := New(port, protocol.MsgLedData, frameSource, opts...)

	ep.HandlePeriodic(protocol.MsgSensorData, func(seq uint32, body []byte) {
		if onTelemetry == nil {
			return
		}
		t, err := protocol.UnmarshalTelemetry(body)
		if err != nil {
			ep.log.Debug("bad telemetry frame", "seq", seq, "err", err)
			return
		}
		onTelemetry(t)
	})

	registerCommon(ep)

	return ep
}

// registerCommon installs the handlers both roles share.
func registerCommon(ep *Endpoint) {
	ep.Handle(protocol.MsgPing, func(pkt *protocol.Packet) {
		if err := ep.Send(protocol.MsgPong, pkt.Payload); err != nil {
			ep.log.Error("pong failed", "err", err)
		}
	})
}
