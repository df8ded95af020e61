package io

import (
	"fmt"
	"iter"
	"maps"
	"sync"

	"github.com/ezrec/chip8/cpu"
)

const (
	KEY_COUNT = 16 // Keys on the hex keypad, 0-F.

	// TAP_TICKS is the default number of timer ticks a tapped key is
	// held down for.
	TAP_TICKS = 6
)

var _keypad_defines = map[string]string{
	"KEY_COUNT": fmt.Sprintf("%d", KEY_COUNT),
}

// Buzzer is the tone generator gated by the sound timer.
type Buzzer interface {
	// SetTone starts or stops the tone.
	SetTone(on bool)
}

// Keypad is the 16 key hex keypad.
//
// Keys are either held (Press, until Release) or tapped (Tap, released
// automatically after TapTicks calls to Tick), the latter for hosts
// that never see key-up events. Every key-down event is also queued,
// for LD Vx, K.
//
// Keypad is safe for concurrent use; hosts typically feed it from an
// input goroutine.
type Keypad struct {
	TapTicks int // Timer ticks a tapped key is held. If zero, TAP_TICKS.

	mutex sync.Mutex
	hold  [KEY_COUNT]int // Remaining tap ticks, or -1 if held.
	queue []byte         // Key-down events not yet awaited.
}

var _ cpu.Keypad = (*Keypad)(nil)

// Defines for the keypad.
func (kp *Keypad) Defines() iter.Seq2[string, string] {
	return maps.All(_keypad_defines)
}

// Reset releases all keys and drops queued events.
func (kp *Keypad) Reset() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.hold = [KEY_COUNT]int{}
	kp.queue = nil
}

// Press holds a key down until Release.
func (kp *Keypad) Press(key byte) (err error) {
	return kp.down(key, -1)
}

// Tap presses a key, to be released after TapTicks timer ticks.
func (kp *Keypad) Tap(key byte) (err error) {
	ticks := kp.TapTicks
	if ticks <= 0 {
		ticks = TAP_TICKS
	}

	return kp.down(key, ticks)
}

func (kp *Keypad) down(key byte, hold int) (err error) {
	if key >= KEY_COUNT {
		err = fmt.Errorf("%w: %#x", ErrKeyInvalid, key)
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if kp.hold[key] == 0 {
		kp.queue = append(kp.queue, key)
	}
	if kp.hold[key] >= 0 {
		kp.hold[key] = hold
	}

	return
}

// Release lets go of a key.
func (kp *Keypad) Release(key byte) {
	if key >= KEY_COUNT {
		return
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.hold[key] = 0
}

// Pressed returns true if the key is down.
func (kp *Keypad) Pressed(key byte) bool {
	if key >= KEY_COUNT {
		return false
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	return kp.hold[key] != 0
}

// Await pops the oldest queued key-down event.
func (kp *Keypad) Await() (key byte, ok bool) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if len(kp.queue) > 0 {
		ok = true
		key = kp.queue[0]
		kp.queue = kp.queue[1:]
	}

	return
}

// Flush drops all queued key-down events.
func (kp *Keypad) Flush() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.queue = nil
}

// Tick counts down tapped keys, releasing them when expired.
func (kp *Keypad) Tick() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	for key, hold := range kp.hold {
		if hold > 0 {
			kp.hold[key] = hold - 1
		}
	}
}
