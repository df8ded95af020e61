// Package host connects an emulator to the outside world: a raw mode
// terminal, an ebiten window, and an oto tone generator.
package host

import (
	"fmt"
	"strings"
	"unicode"
)

// KeyMap maps host keyboard characters to hex keypad keys.
type KeyMap map[rune]byte

// DefaultKeyMap is the customary QWERTY layout of the hex keypad:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultKeyMap = KeyMap{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Key returns the keypad key for a host character. Letters match
// regardless of case.
func (km KeyMap) Key(r rune) (key byte, ok bool) {
	key, ok = km[unicode.ToLower(r)]
	return
}

// ParseKeyMap parses a layout of 16 characters, giving the host
// character for each of the keypad keys 0 through F in order.
func ParseKeyMap(layout string) (km KeyMap, err error) {
	runes := []rune(strings.ToLower(layout))
	if len(runes) != 16 {
		err = fmt.Errorf("%w: %q", ErrKeyLayout, layout)
		return
	}

	km = make(KeyMap, len(runes))
	for key, r := range runes {
		if _, dup := km[r]; dup {
			err = fmt.Errorf("%w: %q", ErrKeyLayout, layout)
			km = nil
			return
		}
		km[r] = byte(key)
	}

	return
}

// String returns the layout of the map, as accepted by ParseKeyMap.
// Unmapped keys are shown as '?'.
func (km KeyMap) String() string {
	layout := []rune("????????????????")
	for r, key := range km {
		if int(key) < len(layout) {
			layout[key] = r
		}
	}

	return string(layout)
}
