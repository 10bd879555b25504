package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
)

// RegisterCount is the number of general purpose registers, V0 to VF.
const RegisterCount = 16

// ErrRegisterOutOfRange is returned when a register index above 0xF is used.
var ErrRegisterOutOfRange = errors.New("register index out of range")

// Register is a validated general purpose register index.
type Register uint8

const (
	V0 Register = 0x0
	// VF doubles as the flag register, arithmetic/shift/draw overwrite it.
	VF Register = 0xF
)

// RegisterAt validates index and returns the matching register.
func RegisterAt(index uint8) (Register, error) {
	if index >= RegisterCount {
		return 0, fmt.Errorf("%w: %d", ErrRegisterOutOfRange, index)
	}
	return Register(index), nil
}

// registerFromNibble builds a register from a decoded 4 bit field, always in range.
func registerFromNibble(nibble uint8) Register {
	return Register(nibble & 0x0F)
}

func (r Register) String() string {
	return fmt.Sprintf("V%X", uint8(r))
}

// ProgramCounter is the 16 bit address of the next instruction.
type ProgramCounter uint16

// Get returns the current address.
func (pc ProgramCounter) Get() uint16 {
	return uint16(pc)
}

// Set jumps to address.
func (pc *ProgramCounter) Set(address uint16) {
	*pc = ProgramCounter(address)
}

// Increment advances to the next instruction.
func (pc *ProgramCounter) Increment() {
	*pc += opcode.Size
}

// Decrement moves back one instruction, used to re-run the current one.
func (pc *ProgramCounter) Decrement() {
	*pc -= opcode.Size
}

// RegisterFile holds V0-VF, the index register I and the program counter.
type RegisterFile struct {
	v     [RegisterCount]uint8
	index uint16
	pc    ProgramCounter
}

// NewRegisterFile returns zeroed registers with the PC at the program start.
func NewRegisterFile() *RegisterFile {
	r := &RegisterFile{}
	r.Reset()
	return r
}

// Reset zeroes every register and points the PC at the program start.
func (r *RegisterFile) Reset() {
	r.v = [RegisterCount]uint8{}
	r.index = 0
	r.pc = ProgramCounter(memory.ProgramStart)
}

// Get returns the value of a decoded register.
func (r *RegisterFile) Get(reg Register) uint8 {
	return r.v[reg&0x0F]
}

// Set stores value in a decoded register.
func (r *RegisterFile) Set(reg Register, value uint8) {
	r.v[reg&0x0F] = value
}

// Read returns the value of register index, failing for index > 0xF.
func (r *RegisterFile) Read(index uint8) (uint8, error) {
	reg, err := RegisterAt(index)
	if err != nil {
		return 0, err
	}
	return r.Get(reg), nil
}

// Write stores value in register index, failing for index > 0xF.
func (r *RegisterFile) Write(index uint8, value uint8) error {
	reg, err := RegisterAt(index)
	if err != nil {
		return err
	}
	r.Set(reg, value)
	return nil
}

// Ref returns a pointer to register index for in-place updates.
func (r *RegisterFile) Ref(index uint8) (*uint8, error) {
	reg, err := RegisterAt(index)
	if err != nil {
		return nil, err
	}
	return &r.v[reg], nil
}

// Index returns the I register.
func (r *RegisterFile) Index() uint16 {
	return r.index
}

// SetIndex sets the I register.
func (r *RegisterFile) SetIndex(value uint16) {
	r.index = value
}

// PC returns the program counter for reading or updating.
func (r *RegisterFile) PC() *ProgramCounter {
	return &r.pc
}

// Snapshot returns a copy of V0-VF.
func (r *RegisterFile) Snapshot() [RegisterCount]uint8 {
	return r.v
}
