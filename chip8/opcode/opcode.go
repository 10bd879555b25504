// Package opcode decodes the fields of a 16 bit CHIP-8 instruction word.
package opcode

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Size is the length of an encoded instruction in bytes.
const Size = 2

// Opcode is a raw instruction word, as fetched big-endian from memory.
// All field accessors are pure.
type Opcode uint16

// FromBytes builds an opcode from its two bytes in memory order.
func FromBytes(high, low uint8) Opcode {
	return Opcode(bit.Combine(high, low))
}

// Code returns the top nibble (bits 15-12), the instruction family.
func (o Opcode) Code() uint8 {
	return uint8(o >> 12)
}

// X returns bits 11-8, usually the first register operand.
func (o Opcode) X() uint8 {
	return uint8(o>>8) & 0x0F
}

// Y returns bits 7-4, usually the second register operand.
func (o Opcode) Y() uint8 {
	return uint8(o>>4) & 0x0F
}

// N returns the lowest nibble (bits 3-0).
func (o Opcode) N() uint8 {
	return uint8(o) & 0x0F
}

// NN returns the low byte (bits 7-0).
func (o Opcode) NN() uint8 {
	return bit.Low(uint16(o))
}

// NNN returns the low 12 bits, an address.
func (o Opcode) NNN() uint16 {
	return uint16(o) & 0x0FFF
}

// Bytes returns the opcode in memory order.
func (o Opcode) Bytes() [Size]byte {
	return [Size]byte{bit.High(uint16(o)), bit.Low(uint16(o))}
}

func (o Opcode) String() string {
	return fmt.Sprintf("0x%04X", uint16(o))
}
