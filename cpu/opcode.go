package cpu

import (
	"fmt"
)

// Op is the decoded operation of an instruction word.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_INVALID    = Op(0)  // .word
	OP_SYS        = Op(1)  // SYS
	OP_CLS        = Op(2)  // CLS
	OP_RET        = Op(3)  // RET
	OP_JP         = Op(4)  // JP
	OP_CALL       = Op(5)  // CALL
	OP_SE_VX_KK   = Op(6)  // SE
	OP_SNE_VX_KK  = Op(7)  // SNE
	OP_SE_VX_VY   = Op(8)  // SE
	OP_LD_VX_KK   = Op(9)  // LD
	OP_ADD_VX_KK  = Op(10) // ADD
	OP_LD_VX_VY   = Op(11) // LD
	OP_OR         = Op(12) // OR
	OP_AND        = Op(13) // AND
	OP_XOR        = Op(14) // XOR
	OP_ADD_VX_VY  = Op(15) // ADD
	OP_SUB        = Op(16) // SUB
	OP_SHR        = Op(17) // SHR
	OP_SUBN       = Op(18) // SUBN
	OP_SHL        = Op(19) // SHL
	OP_SNE_VX_VY  = Op(20) // SNE
	OP_LD_I_ADDR  = Op(21) // LD
	OP_JP_V0      = Op(22) // JP
	OP_RND        = Op(23) // RND
	OP_DRW        = Op(24) // DRW
	OP_SKP        = Op(25) // SKP
	OP_SKNP       = Op(26) // SKNP
	OP_LD_VX_DT   = Op(27) // LD
	OP_LD_VX_K    = Op(28) // LD
	OP_LD_DT_VX   = Op(29) // LD
	OP_LD_ST_VX   = Op(30) // LD
	OP_ADD_I_VX   = Op(31) // ADD
	OP_LD_F_VX    = Op(32) // LD
	OP_LD_B_VX    = Op(33) // LD
	OP_LD_IMEM_VX = Op(34) // LD
	OP_LD_VX_IMEM = Op(35) // LD
)

// Instruction is a decoded instruction word.
// Only the operands used by Op are populated.
type Instruction struct {
	Word uint16 // Raw instruction word.
	Op   Op     // Decoded operation.
	X    uint8  // Register index from bits 8-11.
	Y    uint8  // Register index from bits 4-7.
	N    uint8  // Nibble from bits 0-3.
	KK   uint8  // Immediate byte from bits 0-7.
	Addr uint16 // Address from bits 0-11.
}

// aluOps maps the low nibble of an 8xyn word.
var aluOps = map[uint8]Op{
	0x0: OP_LD_VX_VY,
	0x1: OP_OR,
	0x2: OP_AND,
	0x3: OP_XOR,
	0x4: OP_ADD_VX_VY,
	0x5: OP_SUB,
	0x6: OP_SHR,
	0x7: OP_SUBN,
	0xe: OP_SHL,
}

// miscOps maps the low byte of an Fxkk word.
var miscOps = map[uint8]Op{
	0x07: OP_LD_VX_DT,
	0x0a: OP_LD_VX_K,
	0x15: OP_LD_DT_VX,
	0x18: OP_LD_ST_VX,
	0x1e: OP_ADD_I_VX,
	0x29: OP_LD_F_VX,
	0x33: OP_LD_B_VX,
	0x55: OP_LD_IMEM_VX,
	0x65: OP_LD_VX_IMEM,
}

// nibbles splits an instruction word into its operand fields.
func nibbles(word uint16) (family, x, y, n uint8, kk uint8, addr uint16) {
	family = uint8((word >> 12) & 0xf)
	x = uint8((word >> 8) & 0xf)
	y = uint8((word >> 4) & 0xf)
	n = uint8((word >> 0) & 0xf)
	kk = uint8((word >> 0) & 0xff)
	addr = (word >> 0) & 0xfff
	return
}

// Decode an instruction word. Every word decodes; unrecognized
// words produce an OP_INVALID instruction.
func Decode(word uint16) (ins Instruction) {
	family, x, y, n, kk, addr := nibbles(word)

	ins.Word = word

	switch family {
	case 0x0:
		switch word {
		case 0x00e0:
			ins.Op = OP_CLS
		case 0x00ee:
			ins.Op = OP_RET
		default:
			ins.Op, ins.Addr = OP_SYS, addr
		}
	case 0x1:
		ins.Op, ins.Addr = OP_JP, addr
	case 0x2:
		ins.Op, ins.Addr = OP_CALL, addr
	case 0x3:
		ins.Op, ins.X, ins.KK = OP_SE_VX_KK, x, kk
	case 0x4:
		ins.Op, ins.X, ins.KK = OP_SNE_VX_KK, x, kk
	case 0x5:
		ins.Op, ins.X, ins.Y = OP_SE_VX_VY, x, y
	case 0x6:
		ins.Op, ins.X, ins.KK = OP_LD_VX_KK, x, kk
	case 0x7:
		ins.Op, ins.X, ins.KK = OP_ADD_VX_KK, x, kk
	case 0x8:
		op, ok := aluOps[n]
		if ok {
			ins.Op, ins.X, ins.Y = op, x, y
		}
	case 0x9:
		ins.Op, ins.X, ins.Y = OP_SNE_VX_VY, x, y
	case 0xa:
		ins.Op, ins.Addr = OP_LD_I_ADDR, addr
	case 0xb:
		ins.Op, ins.Addr = OP_JP_V0, addr
	case 0xc:
		ins.Op, ins.X, ins.KK = OP_RND, x, kk
	case 0xd:
		ins.Op, ins.X, ins.Y, ins.N = OP_DRW, x, y, n
	case 0xe:
		switch kk {
		case 0x9e:
			ins.Op, ins.X = OP_SKP, x
		case 0xa1:
			ins.Op, ins.X = OP_SKNP, x
		}
	case 0xf:
		op, ok := miscOps[kk]
		if ok {
			ins.Op, ins.X = op, x
		}
	}

	return
}

// MakeAddr creates an instruction word of the form Fnnn.
func MakeAddr(family uint8, addr uint16) uint16 {
	return (uint16(family&0xf) << 12) | (addr & 0xfff)
}

// MakeXKK creates an instruction word of the form Fxkk.
func MakeXKK(family uint8, x uint8, kk uint8) uint16 {
	return (uint16(family&0xf) << 12) | (uint16(x&0xf) << 8) | uint16(kk)
}

// MakeXYN creates an instruction word of the form Fxyn.
func MakeXYN(family uint8, x, y, n uint8) uint16 {
	return (uint16(family&0xf) << 12) | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(n&0xf)
}

// Skips returns true if the instruction may skip the following instruction.
func (ins Instruction) Skips() bool {
	switch ins.Op {
	case OP_SE_VX_KK, OP_SNE_VX_KK, OP_SE_VX_VY, OP_SNE_VX_VY, OP_SKP, OP_SKNP:
		return true
	}
	return false
}

// String returns the assembly language representation of this instruction.
func (ins Instruction) String() (out string) {
	name := ins.Op.String()

	switch ins.Op {
	case OP_INVALID:
		out = fmt.Sprintf("%v 0x%04X", name, ins.Word)
	case OP_CLS, OP_RET:
		out = name
	case OP_SYS, OP_JP, OP_CALL:
		out = fmt.Sprintf("%v 0x%03X", name, ins.Addr)
	case OP_JP_V0:
		out = fmt.Sprintf("%v V0, 0x%03X", name, ins.Addr)
	case OP_LD_I_ADDR:
		out = fmt.Sprintf("%v I, 0x%03X", name, ins.Addr)
	case OP_SE_VX_KK, OP_SNE_VX_KK, OP_LD_VX_KK, OP_ADD_VX_KK, OP_RND:
		out = fmt.Sprintf("%v V%X, 0x%02X", name, ins.X, ins.KK)
	case OP_SE_VX_VY, OP_SNE_VX_VY, OP_LD_VX_VY,
		OP_OR, OP_AND, OP_XOR, OP_ADD_VX_VY,
		OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		out = fmt.Sprintf("%v V%X, V%X", name, ins.X, ins.Y)
	case OP_DRW:
		out = fmt.Sprintf("%v V%X, V%X, %d", name, ins.X, ins.Y, ins.N)
	case OP_SKP, OP_SKNP:
		out = fmt.Sprintf("%v V%X", name, ins.X)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("%v V%X, DT", name, ins.X)
	case OP_LD_VX_K:
		out = fmt.Sprintf("%v V%X, K", name, ins.X)
	case OP_LD_DT_VX:
		out = fmt.Sprintf("%v DT, V%X", name, ins.X)
	case OP_LD_ST_VX:
		out = fmt.Sprintf("%v ST, V%X", name, ins.X)
	case OP_ADD_I_VX:
		out = fmt.Sprintf("%v I, V%X", name, ins.X)
	case OP_LD_F_VX:
		out = fmt.Sprintf("%v F, V%X", name, ins.X)
	case OP_LD_B_VX:
		out = fmt.Sprintf("%v B, V%X", name, ins.X)
	case OP_LD_IMEM_VX:
		out = fmt.Sprintf("%v [I], V%X", name, ins.X)
	case OP_LD_VX_IMEM:
		out = fmt.Sprintf("%v V%X, [I]", name, ins.X)
	default:
		out = fmt.Sprintf("%v 0x%04X", OP_INVALID.String(), ins.Word)
	}

	return
}
