package protocol

// Frame structure constants for the telemetry/file-transfer wire format.
const (
	// StartByte is the frame start marker (0xAA)
	StartByte = 0xAA

	// EndByte is the frame end marker (0x55)
	EndByte = 0x55

	// MaxPayloadSize is the maximum payload length a frame can carry.
	// The length field is a single unsigned byte.
	MaxPayloadSize = 255

	// FrameOverhead is the number of non-payload bytes in a frame:
	// START(1) + TYPE(1) + LEN(1) + CHECKSUM(1) + END(1)
	FrameOverhead = 5

	// HeaderSize is the number of bytes following the start marker that
	// the decoder reads before it knows the payload length: TYPE(1) + LEN(1)
	HeaderSize = 2
)

// SeqSize is the size of the little-endian monotonic frame counter that
// prefixes periodic payloads (MsgSensorData, MsgLedData).
const SeqSize = 4

// MessageType identifies the kind of data a frame carries.
type MessageType uint8

// Message types for bidirectional communication.
const (
	// MsgPing is a heartbeat/connection check
	MsgPing MessageType = 0x01

	// MsgPong is the response to a ping
	MsgPong MessageType = 0x02

	// MsgDataRequest requests data from the peer
	MsgDataRequest MessageType = 0x10

	// MsgDataResponse carries requested data
	MsgDataResponse MessageType = 0x11

	// MsgSensorData is the coordinator's periodic telemetry frame
	MsgSensorData MessageType = 0x12

	// MsgLedData is the renderer's periodic output frame
	MsgLedData MessageType = 0x13

	// MsgCommand carries an opaque command to the peer
	MsgCommand MessageType = 0x20

	// MsgAck acknowledges a received message
	MsgAck MessageType = 0x30

	// MsgNack is a negative acknowledgment
	MsgNack MessageType = 0x31

	// MsgStatus is a status update
	MsgStatus MessageType = 0x40

	// MsgFileStart opens a file transfer (metadata)
	MsgFileStart MessageType = 0x50

	// MsgFileData carries one file transfer fragment
	MsgFileData MessageType = 0x51

	// MsgFileAck acknowledges one file transfer fragment
	MsgFileAck MessageType = 0x52

	// MsgError is an error notification
	MsgError MessageType = 0xE0
)

// Periodic reports whether frames of this type carry a sequence counter and
// supersede earlier frames of the same type.
func (t MessageType) Periodic() bool {
	return t == MsgSensorData || t == MsgLedData
}

// String returns a human-readable name for a message type.
func (t MessageType) String() string {
	switch t {
	case MsgPing:
		return "PING"
	case MsgPong:
		return "PONG"
	case MsgDataRequest:
		return "DATA_REQUEST"
	case MsgDataResponse:
		return "DATA_RESPONSE"
	case MsgSensorData:
		return "SENSOR_DATA"
	case MsgLedData:
		return "LED_DATA"
	case MsgCommand:
		return "COMMAND"
	case MsgAck:
		return "ACK"
	case MsgNack:
		return "NACK"
	case MsgStatus:
		return "STATUS"
	case MsgFileStart:
		return "FILE_TRANSFER_START"
	case MsgFileData:
		return "FILE_TRANSFER_DATA"
	case MsgFileAck:
		return "FILE_TRANSFER_ACK"
	case MsgError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
