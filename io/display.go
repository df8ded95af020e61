// Package io provides the devices attached to the CHIP-8 processor:
// the monochrome Framebuffer, the hex Keypad, ROM images and memory dumps.
package io

import (
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

const (
	DISPLAY_WIDTH  = 64 // Horizontal pixels.
	DISPLAY_HEIGHT = 32 // Vertical pixels.
)

var _display_defines = map[string]string{
	"DISPLAY_WIDTH":  fmt.Sprintf("%d", DISPLAY_WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%d", DISPLAY_HEIGHT),
}

// Framebuffer is a 64x32 monochrome display.
//
// Sprites are XORed onto the display. The starting coordinate always
// wraps; pixels that run off the right or bottom edge are clipped
// unless Wrap is set.
type Framebuffer struct {
	Wrap   bool                                // If set, sprites wrap around the edges.
	Pixels [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool // Lit pixels, by row.
	Dirty  bool                                // Set on any change; cleared by the renderer.
}

var _ cpu.Display = (*Framebuffer)(nil)

// Defines for the display.
func (fb *Framebuffer) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}

// Clear blanks the display.
func (fb *Framebuffer) Clear() {
	fb.Pixels = [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool{}
	fb.Dirty = true
}

// Draw XORs an 8 pixel wide sprite onto the display at (x, y).
// Returns true if any lit pixel was turned off.
func (fb *Framebuffer) Draw(x, y byte, sprite []byte) (collision bool) {
	x0 := int(x) % DISPLAY_WIDTH
	y0 := int(y) % DISPLAY_HEIGHT

	for row, bits := range sprite {
		py := y0 + row
		if py >= DISPLAY_HEIGHT {
			if !fb.Wrap {
				break
			}
			py %= DISPLAY_HEIGHT
		}

		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := x0 + col
			if px >= DISPLAY_WIDTH {
				if !fb.Wrap {
					break
				}
				px %= DISPLAY_WIDTH
			}
			if fb.Pixels[py][px] {
				collision = true
			}
			fb.Pixels[py][px] = !fb.Pixels[py][px]
		}
	}

	fb.Dirty = true

	return
}

// Pixel returns true if the pixel at (x, y) is lit.
// Coordinates outside of the display are never lit.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}

	return fb.Pixels[y][x]
}

// Lit returns the number of lit pixels.
func (fb *Framebuffer) Lit() (count int) {
	for _, row := range fb.Pixels {
		for _, on := range row {
			if on {
				count++
			}
		}
	}

	return
}

// String renders the display as text, one line per row.
func (fb *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)

	for _, row := range fb.Pixels {
		for _, on := range row {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
