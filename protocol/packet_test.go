package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodePacket(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		payload []byte
		want    []byte
		wantErr bool
	}{
		{
			name:    "empty payload",
			msgType: MsgPing,
			payload: nil,
			want:    []byte{0xAA, 0x01, 0x00, 0x01, 0x55},
		},
		{
			name:    "small payload",
			msgType: MsgCommand,
			payload: []byte{0x10, 0x20},
			want:    []byte{0xAA, 0x20, 0x02, 0x10, 0x20, 0x12, 0x55},
		},
		{
			name:    "payload containing frame markers",
			msgType: MsgStatus,
			payload: []byte{0xAA, 0x55},
			want:    []byte{0xAA, 0x40, 0x02, 0xAA, 0x55, 0xBD, 0x55},
		},
		{
			name:    "max payload",
			msgType: MsgFileData,
			payload: make([]byte, MaxPayloadSize),
			wantErr: false,
		},
		{
			name:    "oversize payload",
			msgType: MsgFileData,
			payload: make([]byte, MaxPayloadSize+1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodePacket(tt.msgType, tt.payload)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(frame) != FrameOverhead+len(tt.payload) {
				t.Errorf("frame length = %d, want %d", len(frame), FrameOverhead+len(tt.payload))
			}
			if tt.want != nil && !bytes.Equal(frame, tt.want) {
				t.Errorf("frame = % X, want % X", frame, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 5, TelemetryPayloadSize, DefaultFragmentSize, MaxPayloadSize} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		frame, err := EncodePacket(MsgSensorData, payload)
		if err != nil {
			t.Fatalf("size %d: encode failed: %v", size, err)
		}

		pkt, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("size %d: decode failed: %v", size, err)
		}
		if pkt.Type != MsgSensorData {
			t.Errorf("size %d: type = %v, want %v", size, pkt.Type, MsgSensorData)
		}
		if !bytes.Equal(pkt.Payload, payload) {
			t.Errorf("size %d: payload mismatch", size)
		}
	}
}

func TestDecodeFrameRejectsCorruption(t *testing.T) {
	frame, err := EncodePacket(MsgSensorData, []byte{0x01, 0x02, 0x03, 0x04})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// Flipping any single interior byte must be caught by the checksum
	// (or surface as a framing error when a marker is hit).
	for i := 1; i < len(frame)-1; i++ {
		corrupted := append([]byte(nil), frame...)
		corrupted[i] ^= 0x40

		if _, err := DecodeFrame(corrupted); err == nil {
			t.Errorf("byte %d corrupted: decode succeeded, want error", i)
		}
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	valid, _ := EncodePacket(MsgPing, nil)

	tests := []struct {
		name     string
		frame    []byte
		wantType string
	}{
		{"too short", valid[:3], "framing"},
		{"bad start marker", []byte{0x00, 0x01, 0x00, 0x01, 0x55}, "framing"},
		{"bad end marker", []byte{0xAA, 0x01, 0x00, 0x01, 0x00}, "framing"},
		{"length mismatch", []byte{0xAA, 0x01, 0x05, 0x01, 0x55}, "framing"},
		{"bad checksum", []byte{0xAA, 0x01, 0x00, 0xFF, 0x55}, "checksum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.frame)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var fe *FramingError
			switch tt.wantType {
			case "framing":
				if !errors.As(err, &fe) {
					t.Errorf("error = %v, want *FramingError", err)
				}
			case "checksum":
				if !errors.Is(err, ErrChecksum) {
					t.Errorf("error = %v, want ErrChecksum", err)
				}
			}
		})
	}
}

func TestChecksumKnownVector(t *testing.T) {
	// XOR of 0x12, 0x03, 0x01, 0x02, 0x03
	p := &Packet{Type: MsgSensorData, Payload: []byte{0x01, 0x02, 0x03}}
	if got := p.Checksum(); got != 0x11 {
		t.Errorf("checksum = 0x%02X, want 0x11", got)
	}
}
