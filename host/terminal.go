package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/ezrec/chip8/emulator"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// TerminalHost runs an emulator in a raw mode terminal.
//
// Terminals report key presses but not releases, so every mapped key
// is tapped on the keypad. Escape or Ctrl-C stops the emulator.
type TerminalHost struct {
	Emulator *emulator.Emulator
	KeyMap   KeyMap
	Input    *os.File  // Key input; raw mode is used if it is a terminal.
	Output   io.Writer // Display output.
}

// NewTerminalHost creates a host on the standard input and output.
func NewTerminalHost(emu *emulator.Emulator) *TerminalHost {
	return &TerminalHost{
		Emulator: emu,
		KeyMap:   DefaultKeyMap,
		Input:    os.Stdin,
		Output:   os.Stdout,
	}
}

// Run the emulator until it halts, fails, the context is done, or
// the user quits.
func (th *TerminalHost) Run(ctx context.Context) (err error) {
	fd := int(th.Input.Fd())
	if term.IsTerminal(fd) {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer func() {
			_ = term.Restore(fd, state)
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go th.readKeys(ctx, cancel)

	fmt.Fprint(th.Output, ansiClear+ansiHideCur)
	defer fmt.Fprint(th.Output, ansiShowCur)

	th.Emulator.Display.Dirty = true

	err = th.Emulator.Run(ctx, th.Render)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	return
}

// readKeys feeds input bytes to HandleKey until quit, or end of input.
func (th *TerminalHost) readKeys(ctx context.Context, cancel context.CancelFunc) {
	buf := make([]byte, 16)
	for ctx.Err() == nil {
		n, err := th.Input.Read(buf)
		for _, b := range buf[:n] {
			if th.HandleKey(b) {
				cancel()
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && th.Emulator.Verbose {
				log.Printf("terminal: %v", err)
			}
			return
		}
	}
}

// HandleKey taps the keypad key mapped to an input byte. Returns true
// if the byte requests quitting.
func (th *TerminalHost) HandleKey(b byte) (quit bool) {
	switch b {
	case keyCtrlC, keyEscape:
		quit = true
		return
	}

	key, ok := th.KeyMap.Key(rune(b))
	if !ok {
		return
	}

	err := th.Emulator.Keypad.Tap(key)
	if err != nil && th.Emulator.Verbose {
		log.Printf("terminal: %v", err)
	}

	return
}

// Render redraws the terminal, if the display has changed.
func (th *TerminalHost) Render() (err error) {
	fb := &th.Emulator.Display
	if !fb.Dirty {
		return
	}
	fb.Dirty = false

	_, err = io.WriteString(th.Output, ansiHome+RenderHalfBlocks(fb, "\r\n"))

	return
}
