package host

import (
	"strings"

	"github.com/ezrec/chip8/io"
)

const (
	ansiHome    = "\x1b[H"
	ansiClear   = "\x1b[2J"
	ansiHideCur = "\x1b[?25l"
	ansiShowCur = "\x1b[?25h"
)

// halfBlocks indexes by (top lit) | (bottom lit << 1).
var halfBlocks = [4]string{" ", "▀", "▄", "█"}

// RenderHalfBlocks renders the display as text, two pixel rows per
// line, using the Unicode half block characters. Lines end with eol.
func RenderHalfBlocks(fb *io.Framebuffer, eol string) string {
	var sb strings.Builder

	for y := 0; y < io.DISPLAY_HEIGHT; y += 2 {
		for x := range io.DISPLAY_WIDTH {
			index := 0
			if fb.Pixel(x, y) {
				index |= 1
			}
			if fb.Pixel(x, y+1) {
				index |= 2
			}
			sb.WriteString(halfBlocks[index])
		}
		sb.WriteString(eol)
	}

	return sb.String()
}

// FillRGBA fills an RGBA pixel buffer from the display, using on and
// off as the pixel colors.
func FillRGBA(fb *io.Framebuffer, pix []byte, on, off [4]byte) {
	for y, row := range fb.Pixels {
		for x, lit := range row {
			offset := (y*io.DISPLAY_WIDTH + x) * 4
			if offset+4 > len(pix) {
				return
			}
			if lit {
				copy(pix[offset:], on[:])
			} else {
				copy(pix[offset:], off[:])
			}
		}
	}
}
