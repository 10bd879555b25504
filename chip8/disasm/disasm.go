package disasm

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
)

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Opcode      opcode.Opcode
	Instruction string
}

func (l DisassemblyLine) String() string {
	return fmt.Sprintf("%04X  %04X  %s", l.Address, uint16(l.Opcode), l.Instruction)
}

// Instruction returns the assembly mnemonic for op. Words that do not decode
// to an instruction are rendered as data.
func Instruction(op opcode.Opcode) string {
	x, y := op.X(), op.Y()

	switch op.Code() {
	case 0x0:
		switch op {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP $%03X", op.NNN())
	case 0x2:
		return fmt.Sprintf("CALL $%03X", op.NNN())
	case 0x3:
		return fmt.Sprintf("SE V%X, $%02X", x, op.NN())
	case 0x4:
		return fmt.Sprintf("SNE V%X, $%02X", x, op.NN())
	case 0x5:
		if op.N() == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, $%02X", x, op.NN())
	case 0x7:
		return fmt.Sprintf("ADD V%X, $%02X", x, op.NN())
	case 0x8:
		if name, ok := aluNames[op.N()]; ok {
			if op.N() == 0x6 || op.N() == 0xE {
				return fmt.Sprintf("%s V%X", name, x)
			}
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if op.N() == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, $%03X", op.NNN())
	case 0xB:
		return fmt.Sprintf("JP V0, $%03X", op.NNN())
	case 0xC:
		return fmt.Sprintf("RND V%X, $%02X", x, op.NN())
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, $%X", x, y, op.N())
	case 0xE:
		switch op.NN() {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if template, ok := miscTemplates[op.NN()]; ok {
			return fmt.Sprintf(template, x)
		}
	}

	return fmt.Sprintf("DW $%04X", uint16(op))
}

var aluNames = map[uint8]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscTemplates = map[uint8]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

// DisassembleAt disassembles the instruction at the given program counter.
// Addresses without a full word left in memory render as "??".
func DisassembleAt(pc uint16, mem *memory.AddressSpace) DisassemblyLine {
	word := mem.Window(pc, opcode.Size)
	if len(word) < opcode.Size {
		return DisassemblyLine{Address: pc, Instruction: "??"}
	}

	op := opcode.FromBytes(word[0], word[1])
	return DisassemblyLine{
		Address:     pc,
		Opcode:      op,
		Instruction: Instruction(op),
	}
}

// DisassembleRange disassembles count instructions starting at pc.
func DisassembleRange(pc uint16, count int, mem *memory.AddressSpace) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	for i := 0; i < count; i++ {
		address := int(pc) + i*opcode.Size
		if address >= memory.Size {
			break
		}
		lines = append(lines, DisassembleAt(uint16(address), mem))
	}
	return lines
}

// DisassembleROM linearly disassembles a program image loaded at base.
// A trailing odd byte is emitted as a data byte.
func DisassembleROM(data []byte, base uint16) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, len(data)/opcode.Size+1)
	for i := 0; i+1 < len(data); i += opcode.Size {
		op := opcode.FromBytes(data[i], data[i+1])
		lines = append(lines, DisassemblyLine{
			Address:     base + uint16(i),
			Opcode:      op,
			Instruction: Instruction(op),
		})
	}
	if len(data)%opcode.Size == 1 {
		last := len(data) - 1
		lines = append(lines, DisassemblyLine{
			Address:     base + uint16(last),
			Opcode:      opcode.Opcode(data[last]),
			Instruction: fmt.Sprintf("DB $%02X", data[last]),
		})
	}
	return lines
}
