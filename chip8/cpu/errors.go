package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/opcode"
)

var (
	// ErrHalted is returned by Cycle once a fatal error has stopped the CPU.
	ErrHalted = errors.New("cpu halted")
	// ErrBadProgramCounter is returned for a jump, call or return to an odd
	// address or one outside the program region.
	ErrBadProgramCounter = errors.New("program counter out of range")
)

// UnknownOpcodeError reports an instruction word that decodes to nothing.
type UnknownOpcodeError struct {
	Opcode  opcode.Opcode
	Address uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %04X at 0x%04X", uint16(e.Opcode), e.Address)
}
