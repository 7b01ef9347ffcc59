package transfer

import (
	"time"

	"github.com/featherforge/arclink/link"
	"github.com/featherforge/arclink/protocol"
)

// Attach registers the file transfer message handlers on a link endpoint.
// Either mgr or recv may be nil when a node only sends or only receives.
// A nil clock defaults to time.Now.
func Attach(ep *link.Endpoint, mgr *Manager, recv *Receiver, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}

	if recv != nil {
		ep.Handle(protocol.MsgFileStart, func(pkt *protocol.Packet) {
			m, err := protocol.UnmarshalFileMetadata(pkt.Payload)
			if err != nil {
				return
			}
			_ = recv.HandleMetadata(m, clock())
		})
		ep.Handle(protocol.MsgFileData, func(pkt *protocol.Packet) {
			f, err := protocol.UnmarshalFileFragment(pkt.Payload)
			if err != nil {
				return
			}
			recv.HandleFragment(f, clock())
		})
	}

	if mgr != nil {
		ep.Handle(protocol.MsgFileAck, func(pkt *protocol.Packet) {
			a, err := protocol.UnmarshalFileAck(pkt.Payload)
			if err != nil {
				return
			}
			mgr.HandleAck(a)
		})
	}
}
