package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/opcode"
)

const (
	// Size is the total addressable memory, 4KB.
	Size = 0x1000
	// ProgramStart is where ROMs are loaded and execution begins.
	// Everything below it is reserved for the interpreter (font data).
	ProgramStart uint16 = 0x200
	// MaxROMSize is the largest ROM that fits between ProgramStart and the end of memory.
	MaxROMSize = Size - int(ProgramStart)
)

var (
	// ErrOutOfBounds is returned for any access outside [0, Size).
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrROMTooLarge is returned when a ROM does not fit in the program region.
	ErrROMTooLarge = errors.New("rom too large")
)

// AddressSpace is the 4KB CHIP-8 memory. The font table is loaded on creation.
type AddressSpace struct {
	memory [Size]byte
}

// New creates a new address space, zeroed except for the font table.
func New() *AddressSpace {
	m := &AddressSpace{}
	m.Reset()
	return m
}

// Reset zeroes memory and reloads the font table.
func (m *AddressSpace) Reset() {
	m.memory = [Size]byte{}
	copy(m.memory[FontStart:], font[:])
}

func checkSpan(address uint16, length int) error {
	if int(address)+length > Size {
		return fmt.Errorf("%w: 0x%04X+%d", ErrOutOfBounds, address, length)
	}
	return nil
}

// Read returns the byte at address.
func (m *AddressSpace) Read(address uint16) (byte, error) {
	if err := checkSpan(address, 1); err != nil {
		return 0, err
	}
	return m.memory[address], nil
}

// ReadOpcode reads two consecutive bytes at address as a big-endian instruction word.
func (m *AddressSpace) ReadOpcode(address uint16) (opcode.Opcode, error) {
	if err := checkSpan(address, opcode.Size); err != nil {
		return 0, err
	}
	return opcode.FromBytes(m.memory[address], m.memory[address+1]), nil
}

// ReadSlice returns a copy of length bytes starting at address.
func (m *AddressSpace) ReadSlice(address uint16, length int) ([]byte, error) {
	if err := checkSpan(address, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.memory[address:])
	return out, nil
}

// Write stores value at address.
func (m *AddressSpace) Write(address uint16, value byte) error {
	if err := checkSpan(address, 1); err != nil {
		return err
	}
	m.memory[address] = value
	return nil
}

// WriteSlice copies data starting at address. The whole span is validated
// before anything is written.
func (m *AddressSpace) WriteSlice(address uint16, data []byte) error {
	if err := checkSpan(address, len(data)); err != nil {
		return err
	}
	copy(m.memory[address:], data)
	return nil
}

// LoadROM copies a program image to ProgramStart.
func (m *AddressSpace) LoadROM(data []byte) error {
	if len(data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(data), MaxROMSize)
	}
	return m.WriteSlice(ProgramStart, data)
}

// Window returns up to length bytes starting at address, truncated at the end
// of memory. Used by debug views, which must never fail.
func (m *AddressSpace) Window(address uint16, length int) []byte {
	if int(address) >= Size {
		return nil
	}
	end := int(address) + length
	if end > Size {
		end = Size
	}
	out := make([]byte, end-int(address))
	copy(out, m.memory[address:end])
	return out
}
