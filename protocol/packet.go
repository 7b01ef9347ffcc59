package protocol

import "fmt"

// Packet is the atomic unit of the telemetry/file-transfer protocol.
//
// Frame structure on the wire:
//
//	[START][TYPE][LEN][PAYLOAD...][CHECKSUM][END]
//
// The checksum is the XOR fold of TYPE, LEN, and every payload byte.
type Packet struct {
	Type    MessageType
	Payload []byte
}

// Checksum computes the XOR checksum for the packet.
func (p *Packet) Checksum() byte {
	sum := byte(p.Type) ^ byte(len(p.Payload))
	for _, b := range p.Payload {
		sum ^= b
	}
	return sum
}

// EncodePacket serializes a packet into its wire frame.
// Returns an error if the payload exceeds MaxPayloadSize.
func EncodePacket(t MessageType, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), MaxPayloadSize)
	}

	p := Packet{Type: t, Payload: payload}

	frame := make([]byte, 0, FrameOverhead+len(payload))
	frame = append(frame, StartByte)
	frame = append(frame, byte(t))
	frame = append(frame, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, p.Checksum())
	frame = append(frame, EndByte)

	return frame, nil
}

// DecodeFrame validates a complete frame and extracts the packet.
// This is the non-streaming counterpart of Decoder.Next, used when the
// caller already holds a full candidate frame in memory.
func DecodeFrame(frame []byte) (*Packet, error) {
	if len(frame) < FrameOverhead {
		return nil, &FramingError{Reason: fmt.Sprintf("frame too short: got %d bytes, minimum is %d", len(frame), FrameOverhead)}
	}
	if frame[0] != StartByte {
		return nil, &FramingError{Reason: fmt.Sprintf("invalid start marker: got 0x%02X, expected 0x%02X", frame[0], StartByte)}
	}
	if frame[len(frame)-1] != EndByte {
		return nil, &FramingError{Reason: fmt.Sprintf("invalid end marker: got 0x%02X, expected 0x%02X", frame[len(frame)-1], EndByte)}
	}

	payloadLen := int(frame[2])
	if len(frame) != FrameOverhead+payloadLen {
		return nil, &FramingError{Reason: fmt.Sprintf("frame length mismatch: got %d bytes, expected %d", len(frame), FrameOverhead+payloadLen)}
	}

	p := &Packet{
		Type:    MessageType(frame[1]),
		Payload: append([]byte(nil), frame[3:3+payloadLen]...),
	}

	if got, want := frame[3+payloadLen], p.Checksum(); got != want {
		return nil, ErrChecksum
	}

	return p, nil
}
