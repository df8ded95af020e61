// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/host"
	"github.com/ezrec/chip8/io"
)

func main() {
	err := run(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}

// run the command line. All resources are released before it returns.
func run(name string, args []string) (err error) {
	var rom string
	var compile string
	var save string
	var ui string
	var clockHz int
	var timerHz int
	var beep bool
	var wrap bool
	var keys string
	var dump string
	var verbose bool

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&rom, "r", "", ".ch8 ROM image to run")
	flags.StringVar(&compile, "c", "", ".asm file to compile")
	flags.StringVar(&save, "s", "", "Save compiled ROM image, do not execute")
	flags.StringVar(&ui, "ui", "term", "User interface: none, term or window")
	flags.IntVar(&clockHz, "hz", emulator.CLOCK_HZ, "Instructions per second")
	flags.IntVar(&timerHz, "timer-hz", emulator.TIMER_HZ, "Timer ticks per second")
	flags.BoolVar(&beep, "beep", false, "Sound the buzzer")
	flags.BoolVar(&wrap, "wrap", false, "Wrap sprites at the display edges")
	flags.StringVar(&keys, "keys", host.DefaultKeyMap.String(), "Host keys for keypad 0-F")
	flags.StringVar(&dump, "d", "", "Directory to dump memory to on exit")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	if flags.NArg() != 0 {
		err = fmt.Errorf("%v: Unknown arguments: %v", name, flags.Args())
		return
	}

	if len(rom) != 0 && len(compile) != 0 {
		err = fmt.Errorf("%v: -r and -c are exclusive", name)
		return
	}

	keymap, err := host.ParseKeyMap(keys)
	if err != nil {
		err = fmt.Errorf("-keys: %w", err)
		return
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.ClockHz = clockHz
	emu.TimerHz = timerHz
	emu.Display.Wrap = wrap

	// Compile a new instruction stream.
	if len(compile) != 0 {
		emu.Program, err = assemble(emu, compile, verbose)
		if err != nil {
			err = fmt.Errorf("%v: %w", compile, err)
			return
		}
	}

	if len(rom) != 0 {
		err = load(emu, rom)
		if err != nil {
			err = fmt.Errorf("%v: %w", rom, err)
			return
		}
	}

	if len(save) != 0 {
		err = os.WriteFile(save, emu.Program.Binary(), 0644)
		if err != nil {
			err = fmt.Errorf("%v: %w", save, err)
		}
		return
	}

	if len(emu.Program.Opcodes) == 0 {
		err = fmt.Errorf("%v: nothing to run; use -r or -c", name)
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	if beep {
		beeper, berr := host.NewBeeper(0)
		if berr != nil {
			log.Printf("beep: %v", berr)
		} else {
			defer beeper.Close()
			emu.Buzzer = beeper
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch ui {
	case "none":
		err = emu.Run(ctx, nil)
	case "term":
		th := host.NewTerminalHost(emu)
		th.KeyMap = keymap
		err = th.Run(ctx)
	case "window":
		win := host.NewWindow(emu)
		win.KeyMap = keymap
		win.Title = compile + rom
		err = win.Run()
	default:
		err = fmt.Errorf("-ui: unknown interface %q", ui)
		return
	}

	if len(dump) != 0 {
		file, derr := emu.Dump(io.DirFS(dump))
		if derr != nil {
			log.Printf("%v: %v", dump, derr)
		} else {
			log.Printf("%v: dumped %v", dump, file)
		}
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}

	return
}

// assemble compiles a source file, with the emulator's defines.
func assemble(emu *emulator.Emulator, path string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)

	return
}

// load reads a ROM image into the emulator.
func load(emu *emulator.Emulator, path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	image, err := io.ReadRom(inf)
	if err != nil {
		return
	}

	err = emu.Load(image)

	return
}
