package debug

import (
	"github.com/valerio/go-chip8/chip8/disasm"
	"github.com/valerio/go-chip8/chip8/opcode"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly decodes up to maxLines instructions from the snapshot,
// aligned on pc so the current instruction is always decoded from its own
// first byte. Lines before pc are included when the snapshot starts earlier.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	end := int(snapshot.StartAddr) + len(snapshot.Bytes)
	if int(pc) < int(snapshot.StartAddr) || int(pc) >= end {
		return []DisasmLine{{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		}}
	}

	// walk back from pc in whole instructions, leaving room after pc
	start := int(pc)
	before := maxLines / 3
	for i := 0; i < before && start-opcode.Size >= int(snapshot.StartAddr); i++ {
		start -= opcode.Size
	}

	lines := make([]DisasmLine, 0, maxLines)
	for addr := start; addr+1 < end && len(lines) < maxLines; addr += opcode.Size {
		offset := addr - int(snapshot.StartAddr)
		op := opcode.FromBytes(snapshot.Bytes[offset], snapshot.Bytes[offset+1])
		lines = append(lines, DisasmLine{
			Address:     uint16(addr),
			Instruction: disasm.Instruction(op),
			IsCurrent:   addr == int(pc),
		})
	}
	return lines
}
