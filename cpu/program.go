package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated output.
type Opcode struct {
	LineNo    int      // Source line number.
	Address   int      // Memory address of the first generated byte.
	Words     []string // Source words.
	Codes     []uint16 // Generated instruction words.
	Data      []byte   // Generated data bytes, placed after Codes.
	LinkLabel string   // Label to link into the address field of Codes[0].
}

// Size returns the number of bytes generated by the opcode.
func (op *Opcode) Size() int {
	return len(op.Codes)*2 + len(op.Data)
}

// Bytes returns the generated bytes of the opcode.
func (op *Opcode) Bytes() (data []byte) {
	for _, code := range op.Codes {
		data = append(data, byte(code>>8), byte(code))
	}
	data = append(data, op.Data...)
	return
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int // Byte offset into the opcode output.
}

// Debug finds the opcode that generated the byte at addr.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+op.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
// Gaps between opcodes are zero filled.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		offset := op.Address - PROGRAM_START
		if offset < 0 {
			continue
		}
		data := op.Bytes()
		if need := offset + len(data); need > len(bin) {
			bin = append(bin, make([]byte, need-len(bin))...)
		}
		copy(bin[offset:], data)
	}

	return
}

// Codes iterates over the instructions of the program, by address.
func (prog *Program) Codes() iter.Seq2[uint16, Instruction] {
	return func(yield func(addr uint16, ins Instruction) bool) {
		for _, op := range prog.Opcodes {
			addr := uint16(op.Address)
			for n, code := range op.Codes {
				if !yield(addr+uint16(n*2), Decode(code)) {
					return
				}
			}
		}
	}
}
