// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	CLOCK_HZ = 600 // Default instruction rate.
	TIMER_HZ = 60  // Default delay and sound timer rate.
)

var _emulator_defines = map[string]string{
	"CLOCK_HZ": fmt.Sprintf("%v", CLOCK_HZ),
	"TIMER_HZ": fmt.Sprintf("%v", TIMER_HZ),
}

// Emulator state. CPU + display, keypad and buzzer.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Display io.Framebuffer // Display device.
	Keypad  io.Keypad      // Keypad device.
	Buzzer  io.Buzzer      // Optional tone generator, gated by the sound timer.

	ClockHz int // Instructions per second.
	TimerHz int // Timer decrements per second.

	tone bool // Last tone state sent to the Buzzer.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
		ClockHz: CLOCK_HZ,
		TimerHz: TIMER_HZ,
	}

	emu.Cpu.ExternalTimers = true
	emu.Cpu.Display = &emu.Display
	emu.Cpu.Keypad = &emu.Keypad

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Display.Defines(),
		emu.Keypad.Defines(),
	)
}

// Load replaces the program with a raw ROM image, and resets.
func (emu *Emulator) Load(rom []byte) (err error) {
	if len(rom) > cpu.MEMORY_SIZE-cpu.PROGRAM_START {
		err = cpu.ErrLoadOverflow
		return
	}

	emu.Program = &cpu.Program{
		Opcodes: []cpu.Opcode{
			{Address: cpu.PROGRAM_START, Data: rom},
		},
	}

	err = emu.Reset()

	return
}

// Reset the machine, and load the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()
	emu.Display.Clear()
	emu.Keypad.Reset()
	emu.setTone(false)

	err = emu.Cpu.Load(emu.Program.Binary())

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() (ins cpu.Instruction) {
	word, err := emu.Cpu.Memory.Word(emu.Cpu.Pc)
	if err != nil {
		return
	}

	return cpu.Decode(word)
}

// Tick performs a single tick of the emulator.
//
// A CPU waiting on LD Vx, K is resumed by the next key-down event on
// the keypad. Returns done if the program has halted in a jump to itself.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if _, ok := emu.Cpu.Awaiting(); ok {
		key, ok := emu.Keypad.Await()
		if !ok {
			return
		}
		err = emu.Cpu.PressKey(key)
		return
	}

	ins := emu.Code()
	if ins.Op == cpu.OP_JP && ins.Addr == pc {
		if emu.Verbose {
			log.Printf("emulator: halted at %03x", pc)
		}
		done = true
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	// Only key presses after LD Vx, K count.
	if _, ok := emu.Cpu.Awaiting(); ok {
		emu.Keypad.Flush()
	}

	emu.setTone(emu.Cpu.ST > 0)

	return
}

// TickTimers decrements the timers, and expires tapped keys.
func (emu *Emulator) TickTimers() {
	emu.Cpu.TickTimers()
	emu.Keypad.Tick()
	emu.setTone(emu.Cpu.ST > 0)
}

// setTone updates the buzzer, if the tone state has changed.
func (emu *Emulator) setTone(on bool) {
	if on == emu.tone {
		return
	}

	emu.tone = on
	if emu.Buzzer != nil {
		emu.Buzzer.SetTone(on)
	}
}

// Frame runs a single timer period: ClockHz/TimerHz instructions,
// then one timer tick.
func (emu *Emulator) Frame() (done bool, err error) {
	steps := 1
	if emu.TimerHz > 0 && emu.ClockHz > emu.TimerHz {
		steps = emu.ClockHz / emu.TimerHz
	}

	for range steps {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	emu.TickTimers()

	return
}

// Run executes frames at TimerHz until the program halts, an error
// occurs, or the context is done. If set, frame is called after
// every frame.
func (emu *Emulator) Run(ctx context.Context, frame func() error) (err error) {
	rate := emu.TimerHz
	if rate <= 0 {
		rate = TIMER_HZ
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-ticker.C:
		}

		var done bool
		done, err = emu.Frame()
		if err != nil {
			return
		}

		if frame != nil {
			err = frame()
			if err != nil {
				return
			}
		}

		if done {
			return
		}
	}
}

// Dump writes the memory image and machine state to filesys.
func (emu *Emulator) Dump(filesys io.CreateFS) (name string, err error) {
	state := emu.Cpu.String() + emu.Display.String()

	name, err = io.WriteDump(filesys, time.Now(), emu.Cpu.Snapshot(), state)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: dumped %v", name)
	}

	return
}
