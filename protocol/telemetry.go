package protocol

import (
	"encoding/binary"
	"math"
)

// TelemetryPayloadSize is the fixed wire size of a telemetry payload.
const TelemetryPayloadSize = 90

// Bit positions inside the packed flag bytes.
const (
	gpsFlagValidBit   = 1
	gpsFlagQualShift  = 2
	micFlagClipping   = 0
	buttonABit        = 0
	buttonBBit        = 1
	buttonCBit        = 2
	buttonDBit        = 3
	validImuBit       = 0
	validEnvBit       = 1
	validGpsBit       = 2
	validMicBit       = 3
)

// TelemetryPayload is the fixed-layout aggregate of all sensor domains,
// packed for 60 Hz transmission. Multi-byte fields are little-endian on
// the wire; per-domain validity is carried in bit-packed flag bytes.
//
// Wire layout (TelemetryPayloadSize bytes):
//
//	[0:36)  IMU: accel xyz, gyro xyz, mag xyz (9 x float32)
//	[36:48) environment: temperature, humidity, pressure (3 x float32)
//	[48:68) GPS: lat, lon, alt, speed, course (5 x float32)
//	[68:74) GPS: satellites, hour, minute, second, flags, reserved
//	[74:87) mic: current sample (i32), peak amplitude (i32), dB (f32), flags
//	[87]    button flags
//	[88]    sensor validity flags
//	[89]    reserved padding
type TelemetryPayload struct {
	// Inertial (g, deg/s, uT)
	AccelX, AccelY, AccelZ float32
	GyroX, GyroY, GyroZ    float32
	MagX, MagY, MagZ       float32

	// Environmental
	Temperature float32 // degC
	Humidity    float32 // %
	Pressure    float32 // Pa

	// Positional
	Latitude   float32 // decimal degrees
	Longitude  float32 // decimal degrees
	Altitude   float32 // meters
	SpeedKnots float32
	Course     float32 // degrees

	GpsSatellites uint8
	GpsHour       uint8
	GpsMinute     uint8
	GpsSecond     uint8
	GpsFlags      uint8

	// Audio
	MicCurrentSample int32
	MicPeakAmplitude int32
	MicDbLevel       float32
	MicFlags         uint8

	// Input
	ButtonFlags uint8

	// Per-domain validity: [3]=mic, [2]=gps, [1]=env, [0]=imu
	ValidFlags uint8
}

// GPS flag helpers

func (t *TelemetryPayload) GpsValid() bool     { return t.GpsFlags>>gpsFlagValidBit&1 == 1 }
func (t *TelemetryPayload) GpsFixQuality() uint8 {
	return t.GpsFlags >> gpsFlagQualShift & 0x03
}

func (t *TelemetryPayload) SetGpsValid(valid bool) {
	t.GpsFlags = setBit(t.GpsFlags, gpsFlagValidBit, valid)
}

func (t *TelemetryPayload) SetGpsFixQuality(quality uint8) {
	t.GpsFlags = t.GpsFlags&^(0x03<<gpsFlagQualShift) | (quality&0x03)<<gpsFlagQualShift
}

// Microphone flag helpers

func (t *TelemetryPayload) MicClipping() bool { return t.MicFlags&1 == 1 }
func (t *TelemetryPayload) SetMicClipping(clipping bool) {
	t.MicFlags = setBit(t.MicFlags, micFlagClipping, clipping)
}

// Button helpers

func (t *TelemetryPayload) ButtonA() bool { return t.ButtonFlags>>buttonABit&1 == 1 }
func (t *TelemetryPayload) ButtonB() bool { return t.ButtonFlags>>buttonBBit&1 == 1 }
func (t *TelemetryPayload) ButtonC() bool { return t.ButtonFlags>>buttonCBit&1 == 1 }
func (t *TelemetryPayload) ButtonD() bool { return t.ButtonFlags>>buttonDBit&1 == 1 }

func (t *TelemetryPayload) SetButtonA(pressed bool) { t.ButtonFlags = setBit(t.ButtonFlags, buttonABit, pressed) }
func (t *TelemetryPayload) SetButtonB(pressed bool) { t.ButtonFlags = setBit(t.ButtonFlags, buttonBBit, pressed) }
func (t *TelemetryPayload) SetButtonC(pressed bool) { t.ButtonFlags = setBit(t.ButtonFlags, buttonCBit, pressed) }
func (t *TelemetryPayload) SetButtonD(pressed bool) { t.ButtonFlags = setBit(t.ButtonFlags, buttonDBit, pressed) }

// Validity helpers

func (t *TelemetryPayload) ImuValid() bool { return t.ValidFlags>>validImuBit&1 == 1 }
func (t *TelemetryPayload) EnvValid() bool { return t.ValidFlags>>validEnvBit&1 == 1 }
func (t *TelemetryPayload) GpsDomainValid() bool { return t.ValidFlags>>validGpsBit&1 == 1 }
func (t *TelemetryPayload) MicValid() bool { return t.ValidFlags>>validMicBit&1 == 1 }

func (t *TelemetryPayload) SetImuValid(v bool) { t.ValidFlags = setBit(t.ValidFlags, validImuBit, v) }
func (t *TelemetryPayload) SetEnvValid(v bool) { t.ValidFlags = setBit(t.ValidFlags, validEnvBit, v) }
func (t *TelemetryPayload) SetGpsDomainValid(v bool) { t.ValidFlags = setBit(t.ValidFlags, validGpsBit, v) }
func (t *TelemetryPayload) SetMicValid(v bool) { t.ValidFlags = setBit(t.ValidFlags, validMicBit, v) }

func setBit(flags uint8, bit uint, v bool) uint8 {
	if v {
		return flags | 1<<bit
	}
	return flags &^ (1 << bit)
}

// Marshal serializes the payload into its fixed wire layout.
func (t *TelemetryPayload) Marshal() []byte {
	out := make([]byte, TelemetryPayloadSize)

	floats := []float32{
		t.AccelX, t.AccelY, t.AccelZ,
		t.GyroX, t.GyroY, t.GyroZ,
		t.MagX, t.MagY, t.MagZ,
		t.Temperature, t.Humidity, t.Pressure,
		t.Latitude, t.Longitude, t.Altitude, t.SpeedKnots, t.Course,
	}
	for i, f := range floats {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}

	out[68] = t.GpsSatellites
	out[69] = t.GpsHour
	out[70] = t.GpsMinute
	out[71] = t.GpsSecond
	out[72] = t.GpsFlags
	// out[73] reserved

	binary.LittleEndian.PutUint32(out[74:], uint32(t.MicCurrentSample))
	binary.LittleEndian.PutUint32(out[78:], uint32(t.MicPeakAmplitude))
	binary.LittleEndian.PutUint32(out[82:], math.Float32bits(t.MicDbLevel))
	out[86] = t.MicFlags

	out[87] = t.ButtonFlags
	out[88] = t.ValidFlags
	// out[89] reserved

	return out
}

// UnmarshalTelemetry parses a telemetry payload from its wire layout.
func UnmarshalTelemetry(data []byte) (*TelemetryPayload, error) {
	if len(data) != TelemetryPayloadSize {
		return nil, &PayloadError{Type: MsgSensorData, Got: len(data), Want: TelemetryPayloadSize}
	}

	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}

	t := &TelemetryPayload{
		AccelX: f(0), AccelY: f(4), AccelZ: f(8),
		GyroX: f(12), GyroY: f(16), GyroZ: f(20),
		MagX: f(24), MagY: f(28), MagZ: f(32),
		Temperature: f(36), Humidity: f(40), Pressure: f(44),
		Latitude: f(48), Longitude: f(52), Altitude: f(56),
		SpeedKnots: f(60), Course: f(64),

		GpsSatellites: data[68],
		GpsHour:       data[69],
		GpsMinute:     data[70],
		GpsSecond:     data[71],
		GpsFlags:      data[72],

		MicCurrentSample: int32(binary.LittleEndian.Uint32(data[74:])),
		MicPeakAmplitude: int32(binary.LittleEndian.Uint32(data[78:])),
		MicDbLevel:       f(82),
		MicFlags:         data[86],

		ButtonFlags: data[87],
		ValidFlags:  data[88],
	}

	return t, nil
}
