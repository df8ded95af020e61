package io

import (
	"io"

	"github.com/ezrec/chip8/cpu"
)

// ROM_LIMIT is the largest image that fits above PROGRAM_START.
const ROM_LIMIT = cpu.MEMORY_SIZE - cpu.PROGRAM_START

// ReadRom reads a program image, checking that it fits in memory.
func ReadRom(r io.Reader) (rom []byte, err error) {
	rom, err = io.ReadAll(io.LimitReader(r, ROM_LIMIT+1))
	if err != nil {
		return
	}

	switch {
	case len(rom) == 0:
		err = ErrRomEmpty
	case len(rom) > ROM_LIMIT:
		err = ErrRomTooLarge
	}
	if err != nil {
		rom = nil
	}

	return
}
