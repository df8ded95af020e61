//go:build !headless

package host

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
)

const WINDOW_SCALE = 10 // Default screen pixels per display pixel.

// ebitenKeys maps KeyMap characters to ebiten keys.
var ebitenKeys = map[rune]ebiten.Key{
	'0': ebiten.KeyDigit0,
	'1': ebiten.KeyDigit1,
	'2': ebiten.KeyDigit2,
	'3': ebiten.KeyDigit3,
	'4': ebiten.KeyDigit4,
	'5': ebiten.KeyDigit5,
	'6': ebiten.KeyDigit6,
	'7': ebiten.KeyDigit7,
	'8': ebiten.KeyDigit8,
	'9': ebiten.KeyDigit9,
	'a': ebiten.KeyA,
	'b': ebiten.KeyB,
	'c': ebiten.KeyC,
	'd': ebiten.KeyD,
	'e': ebiten.KeyE,
	'f': ebiten.KeyF,
	'g': ebiten.KeyG,
	'h': ebiten.KeyH,
	'i': ebiten.KeyI,
	'j': ebiten.KeyJ,
	'k': ebiten.KeyK,
	'l': ebiten.KeyL,
	'm': ebiten.KeyM,
	'n': ebiten.KeyN,
	'o': ebiten.KeyO,
	'p': ebiten.KeyP,
	'q': ebiten.KeyQ,
	'r': ebiten.KeyR,
	's': ebiten.KeyS,
	't': ebiten.KeyT,
	'u': ebiten.KeyU,
	'v': ebiten.KeyV,
	'w': ebiten.KeyW,
	'x': ebiten.KeyX,
	'y': ebiten.KeyY,
	'z': ebiten.KeyZ,
}

var (
	pixelOn  = [4]byte{0x33, 0xff, 0x66, 0xff}
	pixelOff = [4]byte{0x00, 0x11, 0x00, 0xff}
)

// Window runs an emulator in an ebiten window, one frame per ebiten
// update. Escape, or closing the window, stops the emulator.
type Window struct {
	Emulator *emulator.Emulator
	KeyMap   KeyMap
	Scale    int    // Screen pixels per display pixel. If zero, WINDOW_SCALE.
	Title    string // Window title.

	keys   map[ebiten.Key]byte
	image  *ebiten.Image
	pixels []byte
	halted bool
	err    error
}

var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window for an emulator.
func NewWindow(emu *emulator.Emulator) *Window {
	return &Window{
		Emulator: emu,
		KeyMap:   DefaultKeyMap,
		Scale:    WINDOW_SCALE,
		Title:    "chip8",
	}
}

// Run opens the window, and runs until it is closed or the emulator fails.
func (win *Window) Run() (err error) {
	win.keys = make(map[ebiten.Key]byte, len(win.KeyMap))
	for r, key := range win.KeyMap {
		ek, ok := ebitenKeys[r]
		if ok {
			win.keys[ek] = key
		}
	}

	scale := win.Scale
	if scale <= 0 {
		scale = WINDOW_SCALE
	}

	ebiten.SetWindowSize(io.DISPLAY_WIDTH*scale, io.DISPLAY_HEIGHT*scale)
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetTPS(win.Emulator.TimerHz)

	err = ebiten.RunGame(win)

	return errors.Join(err, win.err)
}

// Update polls the keyboard, and runs one emulator frame.
func (win *Window) Update() (err error) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	keypad := &win.Emulator.Keypad
	for ek, key := range win.keys {
		if ebiten.IsKeyPressed(ek) {
			_ = keypad.Press(key)
		} else {
			keypad.Release(key)
		}
	}

	if win.halted {
		return
	}

	win.halted, win.err = win.Emulator.Frame()
	if win.err != nil {
		return ebiten.Termination
	}

	return
}

// Draw renders the display.
func (win *Window) Draw(screen *ebiten.Image) {
	fb := &win.Emulator.Display

	if win.image == nil {
		win.image = ebiten.NewImage(io.DISPLAY_WIDTH, io.DISPLAY_HEIGHT)
		win.pixels = make([]byte, io.DISPLAY_WIDTH*io.DISPLAY_HEIGHT*4)
		fb.Dirty = true
	}

	if fb.Dirty {
		FillRGBA(fb, win.pixels, pixelOn, pixelOff)
		win.image.WritePixels(win.pixels)
		fb.Dirty = false
	}

	screen.DrawImage(win.image, nil)
}

// Layout is the fixed display size; ebiten scales it to the window.
func (win *Window) Layout(_, _ int) (int, int) {
	return io.DISPLAY_WIDTH, io.DISPLAY_HEIGHT
}
