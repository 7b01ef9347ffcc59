// Package render implements the command channel that drives the display
// node's renderer.
//
// The channel has its own framing, separate from the telemetry link:
//
//	[0xAA][0x55][OPCODE][LEN:2 LE][PAYLOAD]
//
// with no checksum. Drawing commands (pixels, lines, rectangles,
// circles, polygons, sprite blits, OLED primitives) are fire-and-forget.
// The sub-pixel variants carry 8.8 fixed-point coordinates and render
// anti-aliased; with weighted pixels enabled (the default) the integer
// calls route through them automatically.
//
// Ping, QueryCaps and QueryStats are synchronous: they flush stale
// input, send the request and poll for the matching response header
// under a bounded timeout, never blocking indefinitely.
//
//	ch := render.NewChannel(port)
//	ch.Clear(render.Black)
//	ch.DrawLine(10, 5, 100, 28, render.Red)
//	ch.Present()
package render
