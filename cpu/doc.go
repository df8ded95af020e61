// Package cpu implements the processor and assembler of a CHIP-8 virtual machine.
//
// The processor has 4096 bytes of memory, sixteen 8-bit registers (V0-VF), a
// 16-bit index register (I), a program counter, a 16 entry call stack, and the
// delay and sound timers. VF is also the carry, borrow and collision flag.
// Programs are loaded at 0x200; the hex digit font lives below that.
//
// Decode maps any 16-bit word to an Instruction. Cpu.Tick fetches, decodes and
// executes one instruction. Display and keypad are collaborators supplied by
// the caller; the key wait instruction suspends the processor until the caller
// supplies a key with Cpu.PressKey.
//
// The assembler accepts the conventional mnemonic syntax, with labels,
// equates, and compile-time $(...) expressions.
package cpu
