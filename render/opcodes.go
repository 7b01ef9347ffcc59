package render

// Render channel framing constants. This channel has its own two-byte
// sync sequence and a 16-bit length, and no checksum: drawing commands
// are idempotent, so reliability stays with the caller.
const (
	Sync0 = 0xAA
	Sync1 = 0x55

	// HeaderSize is sync(2) + opcode(1) + length(2).
	HeaderSize = 5

	// MaxCommandPayload bounds one command's payload.
	MaxCommandPayload = 0xFFFF
)

// Opcode identifies one render command.
type Opcode uint8

// System opcodes.
const (
	OpNop          Opcode = 0x00
	OpPing         Opcode = 0xF0
	OpPong         Opcode = 0xF1
	OpCapsRequest  Opcode = 0xF2
	OpCapsResponse Opcode = 0xF3
	OpStatsRequest Opcode = 0xF4
	OpStatsReply   Opcode = 0xF5
	OpReset        Opcode = 0xFF
)

// Shader opcodes.
const (
	OpUploadShader Opcode = 0x10
	OpDeleteShader Opcode = 0x11
	OpExecShader   Opcode = 0x12
)

// Sprite opcodes.
const (
	OpUploadSprite Opcode = 0x20
	OpDeleteSprite Opcode = 0x21
)

// Variable opcodes.
const (
	OpSetVar  Opcode = 0x30
	OpSetVars Opcode = 0x31
)

// Integer drawing opcodes.
const (
	OpDrawPixel  Opcode = 0x40
	OpDrawLine   Opcode = 0x41
	OpDrawRect   Opcode = 0x42
	OpDrawFill   Opcode = 0x43
	OpDrawCircle Opcode = 0x44
	OpDrawPoly   Opcode = 0x45
	OpBlitSprite Opcode = 0x46
	OpClear      Opcode = 0x47
)

// Sub-pixel drawing opcodes. Coordinates are 8.8 fixed point and render
// anti-aliased.
const (
	OpDrawLineF     Opcode = 0x48
	OpDrawCircleF   Opcode = 0x49
	OpDrawRectF     Opcode = 0x4A
	OpDrawFillF     Opcode = 0x4B
	OpBlitSpriteF   Opcode = 0x4C
	OpBlitSpriteRot Opcode = 0x4D
	OpSetAA         Opcode = 0x4E
)

// Target control opcodes.
const (
	OpSetTarget Opcode = 0x50
	OpPresent   Opcode = 0x51
)

// Monochrome OLED opcodes, always addressed to the OLED target.
const (
	OpOledClear   Opcode = 0x60
	OpOledLine    Opcode = 0x61
	OpOledRect    Opcode = 0x62
	OpOledFill    Opcode = 0x63
	OpOledCircle  Opcode = 0x64
	OpOledPresent Opcode = 0x65
)

// Target selects which display subsequent drawing commands address.
type Target uint8

const (
	// TargetMatrix is the 128x32 RGB LED matrix.
	TargetMatrix Target = 0

	// TargetOled is the 128x128 monochrome OLED.
	TargetOled Target = 1
)

// SpriteFormat is the pixel encoding of uploaded sprite data.
type SpriteFormat uint8

const (
	// FormatRGB888 is 3 bytes per pixel.
	FormatRGB888 SpriteFormat = 0

	// FormatMono1BPP is 1 bit per pixel, packed.
	FormatMono1BPP SpriteFormat = 1
)

// Color is one RGB pixel value.
type Color struct {
	R, G, B uint8
}

// Named colors used all over the demo animations.
var (
	Black   = Color{0, 0, 0}
	White   = Color{255, 255, 255}
	Red     = Color{255, 0, 0}
	Green   = Color{0, 255, 0}
	Blue    = Color{0, 0, 255}
	Yellow  = Color{255, 255, 0}
	Cyan    = Color{0, 255, 255}
	Magenta = Color{255, 0, 255}
	Orange  = Color{255, 128, 0}
)
