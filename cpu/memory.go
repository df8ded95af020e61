package cpu

const (
	MEMORY_SIZE   = 4096  // Addressable bytes.
	PROGRAM_START = 0x200 // Load address of program images.
	FONT_BASE     = 0x050 // Address of the built-in hex digit sprites.
	FONT_HEIGHT   = 5     // Bytes per digit sprite.
)

// font holds the sprites for the hex digits 0-F.
var font = [16 * FONT_HEIGHT]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the byte addressable memory of the machine.
type Memory [MEMORY_SIZE]byte

// Slice returns memory[addr:addr+length], or an error if any
// part of the range is outside of memory.
func (mem *Memory) Slice(addr uint16, length int) (data []byte, err error) {
	end := int(addr) + length
	if end > len(mem) {
		err = ErrAddress(end - 1)
		return
	}

	data = mem[addr:end]
	return
}

// Word fetches the big-endian word at addr.
func (mem *Memory) Word(addr uint16) (word uint16, err error) {
	data, err := mem.Slice(addr, 2)
	if err != nil {
		return
	}

	word = (uint16(data[0]) << 8) | uint16(data[1])
	return
}

// Reset clears memory and installs the font.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_BASE:], font[:])
}
