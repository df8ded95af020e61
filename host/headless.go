//go:build headless

package host

import (
	"github.com/ezrec/chip8/emulator"
)

// Window is unavailable in headless builds.
type Window struct {
	Emulator *emulator.Emulator
	KeyMap   KeyMap
	Scale    int
	Title    string
}

// NewWindow creates a window that cannot be opened.
func NewWindow(emu *emulator.Emulator) *Window {
	return &Window{Emulator: emu, KeyMap: DefaultKeyMap}
}

// Run always fails with ErrHeadless.
func (win *Window) Run() error {
	return ErrHeadless
}

// Beeper is unavailable in headless builds.
type Beeper struct {
	*Tone
}

// NewBeeper always fails with ErrHeadless.
func NewBeeper(sampleRate int) (*Beeper, error) {
	return nil, ErrHeadless
}

// Close does nothing.
func (beeper *Beeper) Close() error {
	return nil
}
