// Package protocol implements the framed wire format shared by the sensor
// coordinator and the display renderer.
//
// # Frame Overview
//
// Every frame has the same shape:
//
//	[START][TYPE][LEN][PAYLOAD...][CHECKSUM][END]
//
// Where:
//   - START = 0xAA, END = 0x55
//   - LEN = payload byte count (0-255)
//   - CHECKSUM = XOR of TYPE, LEN and every payload byte
//
// # Encoding
//
// Use EncodePacket to build a frame ready to write to the port:
//
//	frame, err := protocol.EncodePacket(protocol.MsgSensorData, payload)
//
// # Decoding
//
// Decoder consumes a byte stream (typically a serial port) and yields one
// packet per call, resynchronizing on the next start marker after noise:
//
//	dec := protocol.NewDecoder(port)
//	pkt, err := dec.Next()
//	switch {
//	case errors.Is(err, protocol.ErrNoData):   // idle, try later
//	case errors.Is(err, protocol.ErrChecksum): // corrupted, count and move on
//	}
//
// # Payloads
//
// Fixed-layout payloads (TelemetryPayload, FileMetadata, FileFragment,
// FileAck) each have a Marshal method and a matching Unmarshal* function.
// All multi-byte fields are little-endian.
package protocol
