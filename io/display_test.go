package io

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramebuffer_Draw(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}

	collision := fb.Draw(2, 3, []byte{0b11000000, 0b00000001})
	assert.False(collision)
	assert.True(fb.Dirty)
	assert.Equal(3, fb.Lit())
	assert.True(fb.Pixel(2, 3))
	assert.True(fb.Pixel(3, 3))
	assert.False(fb.Pixel(4, 3))
	assert.True(fb.Pixel(9, 4))

	// Redrawing erases, and collides.
	collision = fb.Draw(2, 3, []byte{0b10000000})
	assert.True(collision)
	assert.False(fb.Pixel(2, 3))
	assert.Equal(2, fb.Lit())

	// Drawing over unlit pixels does not collide.
	collision = fb.Draw(20, 20, []byte{0xff})
	assert.False(collision)
	assert.Equal(10, fb.Lit())
}

func TestFramebuffer_Draw_Clip(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}

	fb.Draw(DISPLAY_WIDTH-4, DISPLAY_HEIGHT-1, []byte{0xff, 0xff})
	assert.Equal(4, fb.Lit())
	assert.True(fb.Pixel(DISPLAY_WIDTH-1, DISPLAY_HEIGHT-1))
	assert.False(fb.Pixel(0, DISPLAY_HEIGHT-1))
	assert.False(fb.Pixel(0, 0))
}

func TestFramebuffer_Draw_Wrap(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{Wrap: true}

	fb.Draw(DISPLAY_WIDTH-4, DISPLAY_HEIGHT-1, []byte{0xff, 0xff})
	assert.Equal(16, fb.Lit())
	assert.True(fb.Pixel(DISPLAY_WIDTH-1, DISPLAY_HEIGHT-1))
	assert.True(fb.Pixel(3, DISPLAY_HEIGHT-1))
	assert.True(fb.Pixel(0, 0))
	assert.True(fb.Pixel(3, 0))
	assert.False(fb.Pixel(4, 0))
}

func TestFramebuffer_Draw_StartWraps(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}

	// Starting coordinates always wrap, even when clipping.
	fb.Draw(DISPLAY_WIDTH+1, DISPLAY_HEIGHT+2, []byte{0x80})
	assert.True(fb.Pixel(1, 2))
	assert.Equal(1, fb.Lit())
}

func TestFramebuffer_Clear(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}
	fb.Draw(0, 0, []byte{0xff, 0xff, 0xff})
	fb.Dirty = false

	fb.Clear()
	assert.Equal(0, fb.Lit())
	assert.True(fb.Dirty)
}

func TestFramebuffer_String(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}
	fb.Draw(0, 0, []byte{0xa0})

	lines := strings.Split(fb.String(), "\n")
	assert.Equal(DISPLAY_HEIGHT+1, len(lines))
	assert.Equal("#.#"+strings.Repeat(".", DISPLAY_WIDTH-3), lines[0])
	assert.Equal(strings.Repeat(".", DISPLAY_WIDTH), lines[1])
	assert.Equal("", lines[DISPLAY_HEIGHT])
}

func TestFramebuffer_Pixel_Outside(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}
	fb.Clear()

	assert.False(fb.Pixel(-1, 0))
	assert.False(fb.Pixel(0, -1))
	assert.False(fb.Pixel(DISPLAY_WIDTH, 0))
	assert.False(fb.Pixel(0, DISPLAY_HEIGHT))
}

func TestFramebuffer_Defines(t *testing.T) {
	assert := assert.New(t)

	fb := &Framebuffer{}
	defines := map[string]string{}
	for key, value := range fb.Defines() {
		defines[key] = value
	}

	assert.Equal(map[string]string{
		"DISPLAY_WIDTH":  "64",
		"DISPLAY_HEIGHT": "32",
	}, defines)
}
