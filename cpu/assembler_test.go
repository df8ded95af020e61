package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, len(prog.Binary()))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x200", asm.Equate["PROGRAM_START"])
	assert.Equal("0x50", asm.Equate["FONT_BASE"])
	assert.Equal("5", asm.Equate["FONT_HEIGHT"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssembler_Program(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"; draw a digit",
		"        .equ DIGIT 7",
		"start:  LD V0, DIGIT",
		"        LD F, V0       ; digit sprite",
		"        LD V1, 0",
		"        LD V2, 0",
		"        DRW V1, V2, 5",
		"loop:   JP loop",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{LineNo: 3, Address: 0x200, Words: []string{"LD", "V0", "7"}, Codes: []uint16{0x6007}},
		{LineNo: 4, Address: 0x202, Words: []string{"LD", "F", "V0"}, Codes: []uint16{0xf029}},
		{LineNo: 5, Address: 0x204, Words: []string{"LD", "V1", "0"}, Codes: []uint16{0x6100}},
		{LineNo: 6, Address: 0x206, Words: []string{"LD", "V2", "0"}, Codes: []uint16{0x6200}},
		{LineNo: 7, Address: 0x208, Words: []string{"DRW", "V1", "V2", "5"}, Codes: []uint16{0xd125}},
		{LineNo: 8, Address: 0x20a, Words: []string{"JP", "loop"}, Codes: []uint16{0x120a}, LinkLabel: "loop"},
	}

	opEqual(t, expected, prog.Opcodes)

	assert.Equal(0x200, asm.Label["start"])
	assert.Equal(0x20a, asm.Label["loop"])
	assert.Equal("7", asm.Equate["DIGIT"])

	assert.Equal([]byte{
		0x60, 0x07, 0xf0, 0x29, 0x61, 0x00, 0x62, 0x00, 0xd1, 0x25, 0x12, 0x0a,
	}, prog.Binary())
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"      CALL sub",
		"      JP end",
		"sub:  RET",
		"end:",
		"      JP end",
		"      LD I, data",
		"data: .byte 0xAA",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal([]byte{
		0x22, 0x04, 0x12, 0x06, 0x00, 0xee, 0x12, 0x06, 0xa2, 0x0a, 0xaa,
	}, prog.Binary())

	// Reparsing starts from a clean slate.
	prog, err = asm.Parse(strings.NewReader("here: JP here"))
	assert.NoError(err)
	assert.Equal([]byte{0x12, 0x00}, prog.Binary())
	assert.Equal(map[string]int{"here": 0x200}, asm.Label)
}

func TestAssembler_Instructions(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		line string
		word uint16
	}{
		{"CLS", 0x00e0},
		{"RET", 0x00ee},
		{"SYS 0x123", 0x0123},
		{"JP 0x456", 0x1456},
		{"CALL 0x789", 0x2789},
		{"SE V1, 0x2A", 0x312a},
		{"SNE V1, 42", 0x412a},
		{"SE V1, V2", 0x5120},
		{"LD V1, 0x2A", 0x612a},
		{"LD V1, -1", 0x61ff},
		{"ADD V1, 1", 0x7101},
		{"LD V1, V2", 0x8120},
		{"OR V1, V2", 0x8121},
		{"AND V1, V2", 0x8122},
		{"XOR V1, V2", 0x8123},
		{"ADD V1, V2", 0x8124},
		{"SUB V1, V2", 0x8125},
		{"SHR V1, V2", 0x8126},
		{"SHR V1", 0x8106},
		{"SUBN V1, V2", 0x8127},
		{"SHL V1, V2", 0x812e},
		{"SHL V1", 0x810e},
		{"SNE V1, V2", 0x9120},
		{"LD I, 0x300", 0xa300},
		{"JP V0, 0x300", 0xb300},
		{"RND VA, 0x0F", 0xca0f},
		{"DRW V1, V2, 15", 0xd12f},
		{"SKP VE", 0xee9e},
		{"SKNP VE", 0xeea1},
		{"LD V3, DT", 0xf307},
		{"LD V3, K", 0xf30a},
		{"LD DT, V3", 0xf315},
		{"LD ST, V3", 0xf318},
		{"ADD I, V3", 0xf31e},
		{"LD F, V3", 0xf329},
		{"LD B, V3", 0xf333},
		{"LD [I], V3", 0xf355},
		{"LD V3, [I]", 0xf365},
		{"ld vf, 0x10", 0x6f10},
		{"ld i, 0x10", 0xa010},
		{"LD V1, 'A'", 0x6141},
		{"LD V1, '\\n'", 0x610a},
		{".word 0xFFFF", 0xffff},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		if !assert.NoError(err, entry.line) {
			continue
		}
		if !assert.Equal(1, len(prog.Opcodes), entry.line) {
			continue
		}
		assert.Equal([]uint16{entry.word}, prog.Opcodes[0].Codes, entry.line)
	}
}

func TestAssembler_Directives(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"        JP main",
		"        .org 0x210",
		"sprite: .byte 0xF0 0x90, 'A'",
		"        .word 0x1234, 0x5678",
		"main:   LD I, sprite",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(0x210, asm.Label["sprite"])
	assert.Equal(0x217, asm.Label["main"])

	bin := prog.Binary()
	assert.Equal(0x19, len(bin))
	assert.Equal([]byte{0x12, 0x17}, bin[0:2])
	assert.Equal(make([]byte, 0x0e), bin[2:0x10])
	assert.Equal([]byte{0xf0, 0x90, 0x41, 0x12, 0x34, 0x56, 0x78, 0xa2, 0x10}, bin[0x10:])
}

func TestAssembler_Expressions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SPEED", "3")

	program := []string{
		".equ BASE 0x300",
		"LD I, $(BASE + 0x10)",
		"LD V0, $(LINENO * 2)",
		"LD V1, SPEED",
		"LD V2, $(SPEED << 4)",
		"LD I, $(FONT_BASE + 0xA * FONT_HEIGHT)",
		"LD V3, $(-1)",
		".equ NEG -2",
		"ADD V4, $(NEG)",
		"ADD V5, $(SPEED - 4)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	var words []uint16
	for _, op := range prog.Opcodes {
		words = append(words, op.Codes...)
	}
	assert.Equal([]uint16{0xa310, 0x6006, 0x6103, 0x6230, 0xa082, 0x63ff, 0x74fe, 0x75ff}, words)
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		source string
		lineno int
		err    error
	}{
		{"FOO V1", 1, ErrInstructionInvalid},
		{"LD V1", 1, ErrOpcodeValueMissing},
		{"CLS V1", 1, ErrOpcodeExtraArgs},
		{"DRW V1, V2", 1, ErrOpcodeValueMissing},
		{"LD V1, 0x100", 1, ErrValueRange},
		{"DRW V1, V2, 16", 1, ErrValueRange},
		{"JP 0x1000", 1, ErrValueRange},
		{"LD VG, 1", 1, ErrRegisterInvalid},
		{"JP V1, 0x200", 1, ErrRegisterInvalid},
		{"OR V1, 7", 1, ErrRegisterInvalid},
		{"LD V1, zz", 1, ErrParseNumber("zz")},
		{"CLS\nJP nowhere", 2, ErrLabelMissing("nowhere")},
		{".equ A", 1, ErrEquateSyntax},
		{".equ A 1\n.equ A 2", 2, ErrEquateDuplicate},
		{"a: CLS\na: CLS", 2, ErrLabelDuplicate},
		{"CLS\n.org 0x200", 2, ErrOrgBackwards},
		{".org 0x1000\nhigh: CLS\nJP high", 3, ErrValueRange},
		{"LD V1, $(-129)", 1, ErrValueRange},
		{".macro", 1, ErrMacroSyntax},
		{".macro A B C\n.endm\nA 1", 3, ErrMacroSyntax},
		{".macro A B\n.macro C\n.endm\n.endm", 2, ErrMacroNesting},
		{".macro A B\n.endm\n.macro A\n.endm", 3, ErrMacroDuplicate},
		{".macro A B\n.endm\n.endm", 3, ErrMacroLonelyEndm},
		{".macro A\nCLS", 2, ErrMacroLonely},
		{".macro A\nA\n.endm\nA", 4, ErrMacroRecursive},
		{".macro A R\nLD R, 0x100\n.endm\nA V1", 4, ErrValueRange},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.ErrorIs(err, entry.err, entry.source)

		var se *ErrSyntax
		if assert.True(errors.As(err, &se), entry.source) {
			assert.Equal(entry.lineno, se.LineNo, entry.source)
		}
	}

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("LD V0, $(1 +)"))
	assert.Error(err)
}

func TestAssembler_Macro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro SETADD rn a b",
		"        LD rn, a",
		"        ADD rn, b",
		".endm",
		"        SETADD V0 8 8",
		".equ TEN 10",
		"        SETADD V1, TEN, $(TEN + 1)",
		".macro WAIT reg",
		"@loop:  SE reg, 0",
		"        JP @loop",
		".endm",
		"        WAIT V2",
		"        WAIT V3",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{LineNo: 2, Address: 0x200, Words: []string{"LD", "V0", "8"}, Codes: []uint16{0x6008}},
		{LineNo: 3, Address: 0x202, Words: []string{"ADD", "V0", "8"}, Codes: []uint16{0x7008}},
		{LineNo: 2, Address: 0x204, Words: []string{"LD", "V1", "10"}, Codes: []uint16{0x610a}},
		{LineNo: 3, Address: 0x206, Words: []string{"ADD", "V1", "0xb"}, Codes: []uint16{0x710b}},
		{LineNo: 9, Address: 0x208, Words: []string{"SE", "V2", "0"}, Codes: []uint16{0x3200}},
		{LineNo: 10, Address: 0x20a, Words: []string{"JP", "WAIT_3_loop"}, Codes: []uint16{0x1208}, LinkLabel: "WAIT_3_loop"},
		{LineNo: 9, Address: 0x20c, Words: []string{"SE", "V3", "0"}, Codes: []uint16{0x3300}},
		{LineNo: 10, Address: 0x20e, Words: []string{"JP", "WAIT_4_loop"}, Codes: []uint16{0x120c}, LinkLabel: "WAIT_4_loop"},
	}

	opEqual(t, expected, prog.Opcodes)

	assert.Equal(0x208, asm.Label["WAIT_3_loop"])
	assert.Equal(0x20c, asm.Label["WAIT_4_loop"])
	assert.Equal([]string{"rn", "a", "b"}, asm.Macro["SETADD"].Args)

	// Macro arguments do not leak out as equates.
	_, ok := asm.Equate["rn"]
	assert.False(ok)

	// Errors within an expansion name the macro line.
	_, err = asm.Parse(strings.NewReader(".macro BAD r\nLD r, 0x100\n.endm\nBAD V1"))
	var em *ErrMacro
	if assert.True(errors.As(err, &em)) {
		assert.Equal("BAD", em.Macro)
		assert.Equal(2, em.Line)
	}
}
