package io

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestReadRom(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom(bytes.NewReader([]byte{0x12, 0x00}))
	assert.NoError(err)
	assert.Equal([]byte{0x12, 0x00}, rom)

	full := bytes.Repeat([]byte{0xee}, ROM_LIMIT)
	rom, err = ReadRom(bytes.NewReader(full))
	assert.NoError(err)
	assert.Equal(full, rom)
}

func TestReadRom_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadRom(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrRomEmpty)

	rom, err := ReadRom(bytes.NewReader(make([]byte, ROM_LIMIT+1)))
	assert.ErrorIs(err, ErrRomTooLarge)
	assert.Nil(rom)

	failure := errors.New("read failure")
	_, err = ReadRom(iotest.ErrReader(failure))
	assert.ErrorIs(err, failure)
}
