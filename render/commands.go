package render

import (
	"encoding/binary"
	"fmt"
)

// fixed88 converts a float coordinate to its 8.8 fixed-point wire form:
// fraction byte first, then the signed integer byte.
func fixed88(v float32) (frac, intPart byte) {
	i := int8(v)
	f := v - float32(i)
	if f < 0 {
		f += 1.0
	}
	return byte(f * 256.0), byte(i)
}

func putI16(p []byte, v int16) {
	binary.LittleEndian.PutUint16(p, uint16(v))
}

// SetTarget selects the display subsequent drawing commands address.
func (c *Channel) SetTarget(t Target) error {
	return c.Send(OpSetTarget, []byte{byte(t)})
}

// Present flips the completed frame onto the active target.
func (c *Channel) Present() error {
	return c.Send(OpPresent, nil)
}

// Clear fills the active target with one color.
func (c *Channel) Clear(col Color) error {
	return c.Send(OpClear, []byte{col.R, col.G, col.B})
}

// Nop is a keep-alive; the renderer does nothing with it.
func (c *Channel) Nop() error {
	return c.Send(OpNop, nil)
}

// Reset asks the renderer to reinitialize, dropping all uploaded state.
func (c *Channel) Reset() error {
	return c.Send(OpReset, nil)
}

// SetWeightedPixels switches the integer drawing calls between plain and
// anti-aliased rendering, and syncs the renderer-side setting.
func (c *Channel) SetWeightedPixels(enabled bool) error {
	c.mu.Lock()
	c.weighted = enabled
	c.mu.Unlock()
	return c.SetAntiAliasing(enabled)
}

// SetAntiAliasing directly toggles renderer-side anti-aliasing.
func (c *Channel) SetAntiAliasing(enabled bool) error {
	v := byte(0)
	if enabled {
		v = 1
	}
	return c.Send(OpSetAA, []byte{v})
}

func (c *Channel) useWeighted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weighted
}

// DrawPixel sets one pixel.
func (c *Channel) DrawPixel(x, y int16, col Color) error {
	p := make([]byte, 7)
	putI16(p[0:], x)
	putI16(p[2:], y)
	p[4], p[5], p[6] = col.R, col.G, col.B
	return c.Send(OpDrawPixel, p)
}

// DrawLine draws a line. With weighted pixels enabled it renders through
// the anti-aliased sub-pixel path.
func (c *Channel) DrawLine(x1, y1, x2, y2 int16, col Color) error {
	if c.useWeighted() {
		return c.DrawLineF(float32(x1), float32(y1), float32(x2), float32(y2), col)
	}
	p := make([]byte, 11)
	putI16(p[0:], x1)
	putI16(p[2:], y1)
	putI16(p[4:], x2)
	putI16(p[6:], y2)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawLine, p)
}

// DrawRect draws a rectangle outline.
func (c *Channel) DrawRect(x, y, w, h int16, col Color) error {
	if c.useWeighted() {
		return c.DrawRectF(float32(x), float32(y), float32(w), float32(h), col)
	}
	p := make([]byte, 11)
	putI16(p[0:], x)
	putI16(p[2:], y)
	putI16(p[4:], w)
	putI16(p[6:], h)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawRect, p)
}

// DrawFilledRect draws a filled rectangle.
func (c *Channel) DrawFilledRect(x, y, w, h int16, col Color) error {
	p := make([]byte, 11)
	putI16(p[0:], x)
	putI16(p[2:], y)
	putI16(p[4:], w)
	putI16(p[6:], h)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawFill, p)
}

// DrawCircle draws a circle outline.
func (c *Channel) DrawCircle(cx, cy, radius int16, col Color) error {
	if c.useWeighted() {
		return c.DrawCircleF(float32(cx), float32(cy), float32(radius), col)
	}
	p := make([]byte, 9)
	putI16(p[0:], cx)
	putI16(p[2:], cy)
	putI16(p[4:], radius)
	p[6], p[7], p[8] = col.R, col.G, col.B
	return c.Send(OpDrawCircle, p)
}

// MaxPolygonVertices bounds one filled polygon.
const MaxPolygonVertices = 16

// DrawFilledPolygon draws a filled polygon from parallel coordinate
// slices. Vertex count beyond MaxPolygonVertices is truncated.
func (c *Channel) DrawFilledPolygon(xs, ys []int16, col Color) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("vertex slices differ: %d x, %d y", len(xs), len(ys))
	}
	n := len(xs)
	if n > MaxPolygonVertices {
		n = MaxPolygonVertices
	}

	p := make([]byte, 4+n*4)
	p[0] = byte(n)
	p[1], p[2], p[3] = col.R, col.G, col.B
	for i := 0; i < n; i++ {
		putI16(p[4+i*4:], xs[i])
		putI16(p[6+i*4:], ys[i])
	}
	return c.Send(OpDrawPoly, p)
}

// Sub-pixel drawing

// DrawLineF draws an anti-aliased line with 8.8 fixed-point coordinates.
func (c *Channel) DrawLineF(x1, y1, x2, y2 float32, col Color) error {
	p := make([]byte, 11)
	p[0], p[1] = fixed88(x1)
	p[2], p[3] = fixed88(y1)
	p[4], p[5] = fixed88(x2)
	p[6], p[7] = fixed88(y2)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawLineF, p)
}

// DrawRectF draws an anti-aliased rectangle outline.
func (c *Channel) DrawRectF(x, y, w, h float32, col Color) error {
	p := make([]byte, 11)
	p[0], p[1] = fixed88(x)
	p[2], p[3] = fixed88(y)
	p[4], p[5] = fixed88(w)
	p[6], p[7] = fixed88(h)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawRectF, p)
}

// DrawFilledRectF draws a filled rectangle with anti-aliased edges.
func (c *Channel) DrawFilledRectF(x, y, w, h float32, col Color) error {
	p := make([]byte, 11)
	p[0], p[1] = fixed88(x)
	p[2], p[3] = fixed88(y)
	p[4], p[5] = fixed88(w)
	p[6], p[7] = fixed88(h)
	p[8], p[9], p[10] = col.R, col.G, col.B
	return c.Send(OpDrawFillF, p)
}

// DrawCircleF draws an anti-aliased circle.
func (c *Channel) DrawCircleF(cx, cy, radius float32, col Color) error {
	p := make([]byte, 9)
	p[0], p[1] = fixed88(cx)
	p[2], p[3] = fixed88(cy)
	p[4], p[5] = fixed88(radius)
	p[6], p[7], p[8] = col.R, col.G, col.B
	return c.Send(OpDrawCircleF, p)
}

// Sprites

// UploadSprite stores pixel data in one of the renderer's sprite slots.
// The data stays cached until deleted or the renderer resets.
func (c *Channel) UploadSprite(id, width, height uint8, pixels []byte, format SpriteFormat) error {
	want := int(width) * int(height) * 3
	if format == FormatMono1BPP {
		want = (int(width)*int(height) + 7) / 8
	}
	if len(pixels) != want {
		return fmt.Errorf("sprite %d: %d pixel bytes, format needs %d", id, len(pixels), want)
	}

	p := make([]byte, 4+len(pixels))
	p[0], p[1], p[2], p[3] = id, width, height, byte(format)
	copy(p[4:], pixels)
	return c.Send(OpUploadSprite, p)
}

// DeleteSprite frees one sprite slot.
func (c *Channel) DeleteSprite(id uint8) error {
	return c.Send(OpDeleteSprite, []byte{id})
}

// BlitSprite draws an uploaded sprite at integer coordinates.
func (c *Channel) BlitSprite(id uint8, x, y int16) error {
	p := make([]byte, 5)
	p[0] = id
	putI16(p[1:], x)
	putI16(p[3:], y)
	return c.Send(OpBlitSprite, p)
}

// BlitSpriteF draws an uploaded sprite at a sub-pixel position.
func (c *Channel) BlitSpriteF(id uint8, x, y float32) error {
	p := make([]byte, 5)
	p[0] = id
	p[1], p[2] = fixed88(x)
	p[3], p[4] = fixed88(y)
	return c.Send(OpBlitSpriteF, p)
}

// BlitSpriteRotated draws an uploaded sprite rotated clockwise around
// its center. The angle travels as 8.8 fixed-point degrees.
func (c *Channel) BlitSpriteRotated(id uint8, x, y, angleDegrees float32) error {
	p := make([]byte, 7)
	p[0] = id
	p[1], p[2] = fixed88(x)
	p[3], p[4] = fixed88(y)
	p[5], p[6] = fixed88(angleDegrees)
	return c.Send(OpBlitSpriteRot, p)
}

// Shaders

// UploadShader stores a compiled shader program in a slot.
func (c *Channel) UploadShader(id uint8, program []byte) error {
	p := make([]byte, 1+len(program))
	p[0] = id
	copy(p[1:], program)
	return c.Send(OpUploadShader, p)
}

// DeleteShader frees one shader slot.
func (c *Channel) DeleteShader(id uint8) error {
	return c.Send(OpDeleteShader, []byte{id})
}

// ExecShader runs an uploaded shader.
func (c *Channel) ExecShader(id uint8) error {
	return c.Send(OpExecShader, []byte{id})
}

// Variables

// SetVar sets one renderer-side variable, read by shaders and polygons.
func (c *Channel) SetVar(index uint8, value int16) error {
	p := make([]byte, 3)
	p[0] = index
	putI16(p[1:], value)
	return c.Send(OpSetVar, p)
}

// SetVars sets a contiguous run of renderer-side variables.
func (c *Channel) SetVars(startIndex uint8, values []int16) error {
	if len(values) == 0 {
		return nil
	}
	if len(values) > 255 {
		return fmt.Errorf("%d values exceed the count byte", len(values))
	}

	p := make([]byte, 2+len(values)*2)
	p[0] = startIndex
	p[1] = byte(len(values))
	for i, v := range values {
		putI16(p[2+i*2:], v)
	}
	return c.Send(OpSetVars, p)
}

// OLED drawing, always addressed to the monochrome target.

// OledClear blanks the OLED.
func (c *Channel) OledClear() error {
	return c.Send(OpOledClear, nil)
}

// OledPresent flips the OLED frame.
func (c *Channel) OledPresent() error {
	return c.Send(OpOledPresent, nil)
}

// OledDrawLine draws a monochrome line; on=false erases.
func (c *Channel) OledDrawLine(x1, y1, x2, y2 int16, on bool) error {
	p := make([]byte, 9)
	putI16(p[0:], x1)
	putI16(p[2:], y1)
	putI16(p[4:], x2)
	putI16(p[6:], y2)
	p[8] = oledOn(on)
	return c.Send(OpOledLine, p)
}

// OledDrawRect draws a monochrome rectangle outline.
func (c *Channel) OledDrawRect(x, y, w, h int16, on bool) error {
	p := make([]byte, 9)
	putI16(p[0:], x)
	putI16(p[2:], y)
	putI16(p[4:], w)
	putI16(p[6:], h)
	p[8] = oledOn(on)
	return c.Send(OpOledRect, p)
}

// OledDrawFilledRect draws a filled monochrome rectangle.
func (c *Channel) OledDrawFilledRect(x, y, w, h int16, on bool) error {
	p := make([]byte, 9)
	putI16(p[0:], x)
	putI16(p[2:], y)
	putI16(p[4:], w)
	putI16(p[6:], h)
	p[8] = oledOn(on)
	return c.Send(OpOledFill, p)
}

// OledDrawCircle draws a monochrome circle outline.
func (c *Channel) OledDrawCircle(cx, cy, radius int16, on bool) error {
	p := make([]byte, 7)
	putI16(p[0:], cx)
	putI16(p[2:], cy)
	putI16(p[4:], radius)
	p[6] = oledOn(on)
	return c.Send(OpOledCircle, p)
}

func oledOn(on bool) byte {
	if on {
		return 1
	}
	return 0
}
