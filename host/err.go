package host

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Host errors
	ErrHeadless  = errors.New(f("built without window or audio support"))
	ErrKeyLayout = errors.New(f("key layout invalid"))
)
