// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

func init() {
	for key, value := range _cpu_defines {
		sysEquate[key] = value
	}
}

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
	Macro     map[string]*Macro // Map of macros.

	address    int             // Address of the next generated byte.
	expansions int             // Count of macro expansions, for @ labels.
	expanding  map[string]bool // Macros currently being expanded.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric word, which must fit in
// the given number of bits. Negative values are two's complement.
func (asm *Assembler) valueOf(word string, bits int) (value uint32, err error) {
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	limit := int64(1) << bits
	switch {
	case v64 >= 0 && v64 < limit:
		value = uint32(v64)
	case v64 < 0 && v64 >= -(limit/2):
		value = uint32(limit + v64)
	default:
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
	}

	return
}

// register returns the index of a Vx register word.
func register(word string) (reg uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'V' && word[0] != 'v') {
		return
	}

	value, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(value), true
}

var (
	// identifier matches label names.
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// charLiteral matches 'c' and '\c' literals.
	charLiteral = regexp.MustCompile(`'\\?[^']'`)
	// parenExpr matches $(...) expressions.
	parenExpr = regexp.MustCompile(`\$\([^\$]*\)`)
)

// addressOf returns an address operand, or the label to link it to.
func (asm *Assembler) addressOf(word string) (addr uint16, label string, err error) {
	_, err = strconv.ParseInt(word, 0, 33)
	if err != nil && identifier.MatchString(word) {
		err = nil
		label = word
		return
	}

	value, err := asm.valueOf(word, 12)
	if err != nil {
		return
	}

	addr = uint16(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64
	return
}

// parseLine parses a single line into words, after expansions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charLiteral.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "t":
				str = "\t"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenExpr.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		if value < 0 {
			return fmt.Sprintf("%d", value)
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.address
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]
		err = asm.expand(name, macro, words[1:])
		words = nil
		return
	}

	return
}

// expand assembles the lines of a macro, with its arguments bound as
// equates. '@' in the macro text is replaced by a prefix unique to the
// expansion, for local labels.
func (asm *Assembler) expand(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}
	if asm.expanding[name] {
		err = ErrMacroRecursive
		return
	}

	if asm.expanding == nil {
		asm.expanding = map[string]bool{}
	}
	asm.expanding[name] = true
	defer delete(asm.expanding, name)

	// Turn args into equs
	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	defer func() { asm.Equate = old_equate }()

	asm.expansions++
	local := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n

		line = strings.ReplaceAll(line, "@", local)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.address = PROGRAM_START
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string]*Macro)
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		directive := ""
		if len(fields) > 0 {
			directive = strings.ToLower(fields[0])
		}

		// .macro NAME arg...
		if directive == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(fields) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[fields[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   fields[2:],
			}
			asm.Macro[fields[1]] = macro
			continue
		}

		if directive == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			line = strings.Join(op.Words, " ")
			lineno = op.LineNo
			err = ErrLabelMissing(label)
			return
		}
		if addr > 0xfff {
			line = strings.Join(op.Words, " ")
			lineno = op.LineNo
			err = fmt.Errorf("%w: %v", ErrValueRange, label)
			return
		}
		op.Codes[0] |= uint16(addr)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// aluMap maps the register-register ALU opcode names to their low nibble.
var aluMap = map[string]uint8{
	"OR":   0x1,
	"AND":  0x2,
	"XOR":  0x3,
	"SUB":  0x5,
	"SHR":  0x6,
	"SUBN": 0x7,
	"SHL":  0xe,
}

// ldFromMap maps LD Vx, <special> forms to the low byte of Fxkk.
var ldFromMap = map[string]uint8{
	"DT":  0x07,
	"K":   0x0a,
	"[I]": 0x65,
}

// ldToMap maps LD <special>, Vx forms to the low byte of Fxkk.
var ldToMap = map[string]uint8{
	"DT":  0x15,
	"ST":  0x18,
	"F":   0x29,
	"B":   0x33,
	"[I]": 0x55,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || (len(codes) == 0 && len(data) == 0) {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.address, Words: initial_words, Codes: codes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.address += opcode.Size()
	}()

	mnemonic := strings.ToUpper(words[0])
	args := words[1:]

	// argCount checks the number of arguments.
	argCount := func(least, most int) error {
		if len(args) < least {
			return ErrOpcodeValueMissing
		}
		if len(args) > most {
			return ErrOpcodeExtraArgs
		}
		return nil
	}

	// reg returns argument n as a register.
	reg := func(n int) (x uint8, err error) {
		x, ok := register(args[n])
		if !ok {
			err = fmt.Errorf("%w: %v", ErrRegisterInvalid, args[n])
		}
		return
	}

	switch mnemonic {
	case ".ORG":
		if err = argCount(1, 1); err != nil {
			return
		}
		var value uint32
		value, err = asm.valueOf(args[0], 16)
		if err != nil {
			return
		}
		if int(value) < asm.address {
			err = ErrOrgBackwards
			return
		}
		asm.address = int(value)
	case ".BYTE":
		if err = argCount(1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.valueOf(arg, 8)
			if err != nil {
				return
			}
			data = append(data, byte(value))
		}
	case ".WORD":
		if err = argCount(1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.valueOf(arg, 16)
			if err != nil {
				return
			}
			codes = append(codes, uint16(value))
		}
	case "CLS", "RET":
		if err = argCount(0, 0); err != nil {
			return
		}
		if mnemonic == "CLS" {
			codes = append(codes, 0x00e0)
		} else {
			codes = append(codes, 0x00ee)
		}
	case "SYS", "CALL", "JP":
		if err = argCount(1, 2); err != nil {
			return
		}
		family := map[string]uint8{"SYS": 0x0, "JP": 0x1, "CALL": 0x2}[mnemonic]
		target := args[0]
		if len(args) == 2 {
			// JP V0, addr
			x, ok := register(args[0])
			if mnemonic != "JP" || !ok || x != 0 {
				err = fmt.Errorf("%w: %v", ErrRegisterInvalid, args[0])
				return
			}
			family = 0xb
			target = args[1]
		}
		var addr uint16
		addr, label, err = asm.addressOf(target)
		if err != nil {
			return
		}
		codes = append(codes, MakeAddr(family, addr))
	case "SE", "SNE", "ADD", "LD":
		if err = argCount(2, 2); err != nil {
			return
		}
		codes, label, err = asm.parsePair(mnemonic, args[0], args[1])
		if err != nil {
			return
		}
	case "OR", "AND", "XOR", "SUB", "SUBN", "SHR", "SHL":
		// SHR and SHL may omit Vy.
		least := 2
		if mnemonic == "SHR" || mnemonic == "SHL" {
			least = 1
		}
		if err = argCount(least, 2); err != nil {
			return
		}
		var x, y uint8
		x, err = reg(0)
		if err != nil {
			return
		}
		if len(args) > 1 {
			y, err = reg(1)
			if err != nil {
				return
			}
		}
		codes = append(codes, MakeXYN(0x8, x, y, aluMap[mnemonic]))
	case "RND":
		if err = argCount(2, 2); err != nil {
			return
		}
		var x uint8
		x, err = reg(0)
		if err != nil {
			return
		}
		var kk uint32
		kk, err = asm.valueOf(args[1], 8)
		if err != nil {
			return
		}
		codes = append(codes, MakeXKK(0xc, x, uint8(kk)))
	case "DRW":
		if err = argCount(3, 3); err != nil {
			return
		}
		var x, y uint8
		x, err = reg(0)
		if err != nil {
			return
		}
		y, err = reg(1)
		if err != nil {
			return
		}
		var n uint32
		n, err = asm.valueOf(args[2], 4)
		if err != nil {
			return
		}
		codes = append(codes, MakeXYN(0xd, x, y, uint8(n)))
	case "SKP", "SKNP":
		if err = argCount(1, 1); err != nil {
			return
		}
		var x uint8
		x, err = reg(0)
		if err != nil {
			return
		}
		kk := uint8(0x9e)
		if mnemonic == "SKNP" {
			kk = 0xa1
		}
		codes = append(codes, MakeXKK(0xe, x, kk))
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// parsePair assembles the two operand forms of SE, SNE, ADD and LD.
func (asm *Assembler) parsePair(mnemonic string, dst, src string) (codes []uint16, label string, err error) {
	dst_u := strings.ToUpper(dst)
	src_u := strings.ToUpper(src)

	x, dst_reg := register(dst)
	y, src_reg := register(src)

	var code uint16
	switch {
	case mnemonic == "LD" && dst_u == "I":
		var addr uint16
		addr, label, err = asm.addressOf(src)
		code = MakeAddr(0xa, addr)
	case mnemonic == "ADD" && dst_u == "I" && src_reg:
		code = MakeXKK(0xf, y, 0x1e)
	case mnemonic == "LD" && src_reg && ldToMap[dst_u] != 0:
		code = MakeXKK(0xf, y, ldToMap[dst_u])
	case mnemonic == "LD" && dst_reg && ldFromMap[src_u] != 0:
		code = MakeXKK(0xf, x, ldFromMap[src_u])
	case !dst_reg:
		err = fmt.Errorf("%w: %v", ErrRegisterInvalid, dst)
	case src_reg:
		family := map[string]uint8{"SE": 0x5, "SNE": 0x9, "LD": 0x8, "ADD": 0x8}[mnemonic]
		n := map[string]uint8{"SE": 0x0, "SNE": 0x0, "LD": 0x0, "ADD": 0x4}[mnemonic]
		code = MakeXYN(family, x, y, n)
	default:
		family := map[string]uint8{"SE": 0x3, "SNE": 0x4, "LD": 0x6, "ADD": 0x7}[mnemonic]
		var kk uint32
		kk, err = asm.valueOf(src, 8)
		code = MakeXKK(family, x, uint8(kk))
	}

	if err != nil {
		return
	}

	codes = []uint16{code}
	return
}
