package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/io"
)

func TestRenderHalfBlocks(t *testing.T) {
	assert := assert.New(t)

	fb := &io.Framebuffer{}
	fb.Draw(0, 0, []byte{0b11000000, 0b10100000})

	lines := strings.Split(RenderHalfBlocks(fb, "\r\n"), "\r\n")
	assert.Equal(io.DISPLAY_HEIGHT/2+1, len(lines))
	assert.Equal("█▀▄"+strings.Repeat(" ", io.DISPLAY_WIDTH-3), lines[0])
	assert.Equal(strings.Repeat(" ", io.DISPLAY_WIDTH), lines[1])
	assert.Equal("", lines[io.DISPLAY_HEIGHT/2])
}

func TestFillRGBA(t *testing.T) {
	assert := assert.New(t)

	on := [4]byte{1, 2, 3, 4}
	off := [4]byte{5, 6, 7, 8}

	fb := &io.Framebuffer{}
	fb.Draw(1, 1, []byte{0x80})

	pix := make([]byte, io.DISPLAY_WIDTH*io.DISPLAY_HEIGHT*4)
	FillRGBA(fb, pix, on, off)

	assert.Equal(off[:], pix[0:4])
	lit := (1*io.DISPLAY_WIDTH + 1) * 4
	assert.Equal(on[:], pix[lit:lit+4])
	assert.Equal(off[:], pix[len(pix)-4:])

	// Short buffers are filled as far as they go.
	short := make([]byte, 6)
	FillRGBA(fb, short, on, off)
	assert.Equal([]byte{5, 6, 7, 8, 0, 0}, short)
}
