package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("0x%x", PROGRAM_START),
	"FONT_BASE":     fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_HEIGHT":   fmt.Sprintf("%d", FONT_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%d", STACK_LIMIT),
}

// Display is the sprite drawing surface driven by CLS and DRW.
// Draw must not retain sprite.
type Display interface {
	// Clear blanks the display.
	Clear()
	// Draw XORs sprite onto the display at (x, y), returning true
	// if any lit pixel was turned off.
	Draw(x, y byte, sprite []byte) (collision bool)
}

// Keypad reports the state of the 16 key hex keypad.
type Keypad interface {
	Pressed(key byte) bool
}

// Cpu is the machine state, and the fetch-decode-execute engine.
type Cpu struct {
	Verbose        bool // Set to enable verbose logging.
	ExternalTimers bool // If set, Tick() leaves timer decay to TickTimers().

	Memory Memory   // Main memory.
	V      [16]byte // Register bank. V[0xF] doubles as the flag register.
	I      uint16   // Index register.
	Pc     uint16   // Program counter.
	Stack  Stack    // Call stack.
	DT     byte     // Delay timer.
	ST     byte     // Sound timer.

	Display Display    // Optional display collaborator.
	Keypad  Keypad     // Optional keypad collaborator.
	Rand    *rand.Rand // Optional random source for RND.

	Ticks   int // Instructions executed since reset.
	Ignored int // Unknown or unsupported instructions skipped since reset.

	awaiting bool  // Suspended on LD Vx, K.
	awaitReg uint8 // Destination register of LD Vx, K.
}

// NewCpu creates a new, reset, CPU.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory, and installs the font.
// - Clears registers, timers, and the stack.
// - Sets the PC to the program start.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.V[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.DT = 0
	cpu.ST = 0
	cpu.Ticks = 0
	cpu.Ignored = 0
	cpu.awaiting = false
	cpu.awaitReg = 0
}

// Load copies a program image into memory at PROGRAM_START.
// Memory is unchanged if the image does not fit.
func (cpu *Cpu) Load(rom []byte) (err error) {
	if len(rom) > MEMORY_SIZE-PROGRAM_START {
		err = ErrLoadOverflow
		return
	}

	copy(cpu.Memory[PROGRAM_START:], rom)

	return
}

// Snapshot returns a copy of all of memory.
func (cpu *Cpu) Snapshot() []byte {
	return slices.Clone(cpu.Memory[:])
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"pc", "i", "dt", "st", "stack", "v"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%03X", cpu.Pc)
		case "i":
			strval = fmt.Sprintf("%03X", cpu.I)
		case "dt":
			strval = fmt.Sprintf("%02X", cpu.DT)
		case "st":
			strval = fmt.Sprintf("%02X", cpu.ST)
		case "stack":
			var addrs []string
			for _, addr := range cpu.Stack.Data {
				addrs = append(addrs, fmt.Sprintf("%03X", addr))
			}
			if len(addrs) == 0 {
				strval = "---"
			} else {
				strval = strings.Join(addrs, " ")
			}
		case "v":
			strval = fmt.Sprintf("% X", cpu.V[:])
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Awaiting returns the destination register if the CPU is
// suspended waiting for a key press.
func (cpu *Cpu) Awaiting() (reg uint8, ok bool) {
	return cpu.awaitReg, cpu.awaiting
}

// PressKey resumes a CPU suspended by LD Vx, K.
func (cpu *Cpu) PressKey(key byte) (err error) {
	if !cpu.awaiting {
		err = ErrNotAwaiting
		return
	}

	if key > 0xf {
		err = ErrKeyInvalid
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: key %X to V%X", key, cpu.awaitReg)
	}

	cpu.V[cpu.awaitReg] = key
	cpu.awaiting = false

	return
}

// TickTimers decrements the delay and sound timers toward zero.
func (cpu *Cpu) TickTimers() {
	if cpu.DT > 0 {
		cpu.DT--
	}
	if cpu.ST > 0 {
		cpu.ST--
	}
}

// Tick executes a single CPU instruction cycle.
// On error, the machine state is left as it was before the call.
func (cpu *Cpu) Tick() (err error) {
	if cpu.awaiting {
		err = ErrAwaitingKey
		return
	}

	pc, dt, st := cpu.Pc, cpu.DT, cpu.ST
	defer func() {
		if err != nil {
			cpu.Pc, cpu.DT, cpu.ST = pc, dt, st
		}
	}()

	cpu.Pc += 2

	if !cpu.ExternalTimers {
		cpu.TickTimers()
	}

	word, err := cpu.Memory.Word(pc)
	if err != nil {
		return
	}

	err = cpu.Execute(Decode(word))
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// Execute executes a single decoded instruction.
// The PC must already point past the instruction.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	ip := cpu.Pc - 2

	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Pc: ip, Instruction: ins}, err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", ip, ins)
	}

	if ins.X > 0xf || ins.Y > 0xf {
		err = fmt.Errorf("%w: V%X, V%X", ErrRegisterInvalid, ins.X, ins.Y)
		return
	}

	v := &cpu.V
	x := ins.X
	y := ins.Y

	switch ins.Op {
	case OP_CLS:
		if cpu.Display != nil {
			cpu.Display.Clear()
		}
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		cpu.Pc = addr
	case OP_JP:
		cpu.Pc = ins.Addr
	case OP_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			err = ErrStackFull
			return
		}
		cpu.Pc = ins.Addr
	case OP_SE_VX_KK:
		cpu.skipIf(v[x] == ins.KK)
	case OP_SNE_VX_KK:
		cpu.skipIf(v[x] != ins.KK)
	case OP_SE_VX_VY:
		cpu.skipIf(v[x] == v[y])
	case OP_SNE_VX_VY:
		cpu.skipIf(v[x] != v[y])
	case OP_LD_VX_KK:
		v[x] = ins.KK
	case OP_ADD_VX_KK:
		v[x] += ins.KK
	case OP_LD_VX_VY:
		v[x] = v[y]
	case OP_OR:
		v[x] |= v[y]
	case OP_AND:
		v[x] &= v[y]
	case OP_XOR:
		v[x] ^= v[y]
	case OP_ADD_VX_VY:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = byte(sum)
		v[0xf] = flag(sum > 0xff)
	case OP_SUB:
		borrow := flag(v[x] > v[y])
		v[x] = v[x] - v[y]
		v[0xf] = borrow
	case OP_SHR:
		carry := v[x] & 0x01
		v[x] >>= 1
		v[0xf] = carry
	case OP_SUBN:
		borrow := flag(v[y] > v[x])
		v[x] = v[y] - v[x]
		v[0xf] = borrow
	case OP_SHL:
		carry := v[x] >> 7
		v[x] <<= 1
		v[0xf] = carry
	case OP_LD_I_ADDR:
		cpu.I = ins.Addr
	case OP_JP_V0:
		target := uint32(ins.Addr) + uint32(v[0])
		if target >= MEMORY_SIZE {
			err = ErrAddress(target)
			return
		}
		cpu.Pc = uint16(target)
	case OP_RND:
		v[x] = cpu.random() & ins.KK
	case OP_DRW:
		var sprite []byte
		sprite, err = cpu.Memory.Slice(cpu.I, int(ins.N))
		if err != nil {
			return
		}
		if cpu.Display != nil {
			v[0xf] = flag(cpu.Display.Draw(v[x], v[y], sprite))
		}
	case OP_SKP:
		cpu.skipIf(cpu.pressed(v[x]))
	case OP_SKNP:
		cpu.skipIf(!cpu.pressed(v[x]))
	case OP_LD_VX_DT:
		v[x] = cpu.DT
	case OP_LD_VX_K:
		cpu.awaiting = true
		cpu.awaitReg = x
	case OP_LD_DT_VX:
		cpu.DT = v[x]
	case OP_LD_ST_VX:
		cpu.ST = v[x]
	case OP_ADD_I_VX:
		cpu.I += uint16(v[x])
	case OP_LD_F_VX:
		cpu.I = FONT_BASE + uint16(v[x]&0xf)*FONT_HEIGHT
	case OP_LD_B_VX:
		var bcd []byte
		bcd, err = cpu.Memory.Slice(cpu.I, 3)
		if err != nil {
			return
		}
		bcd[0] = v[x] / 100
		bcd[1] = (v[x] / 10) % 10
		bcd[2] = v[x] % 10
	case OP_LD_IMEM_VX:
		var mem []byte
		mem, err = cpu.Memory.Slice(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, v[:x+1])
	case OP_LD_VX_IMEM:
		var mem []byte
		mem, err = cpu.Memory.Slice(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(v[:x+1], mem)
	default:
		// SYS, and anything unrecognized.
		cpu.Ignored++
		log.Printf("%03x: %v %v, ignored", ip, ErrOpcodeUnknown, ins)
	}

	return
}

// skipIf skips the next instruction if cond is true.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

// pressed queries the keypad. Keys outside of 0-F are never pressed.
func (cpu *Cpu) pressed(key byte) bool {
	if key > 0xf || cpu.Keypad == nil {
		return false
	}

	return cpu.Keypad.Pressed(key)
}

// random returns a random byte.
func (cpu *Cpu) random() byte {
	if cpu.Rand != nil {
		return byte(cpu.Rand.Uint32())
	}

	return byte(rand.Uint32())
}

// flag converts a condition to a VF value.
func flag(cond bool) byte {
	if cond {
		return 1
	}
	return 0
}
