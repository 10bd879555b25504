package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
)

// execute runs a decoded instruction. The PC already points past it.
func (c *CPU) execute(op opcode.Opcode) error {
	x := registerFromNibble(op.X())
	y := registerFromNibble(op.Y())

	switch op.Code() {
	case 0x0:
		switch op {
		case 0x00E0: // CLS
			c.display.Clear()
			return nil
		case 0x00EE: // RET
			return c.ret()
		}
	case 0x1: // JP addr
		return c.jump(op.NNN())
	case 0x2: // CALL addr
		return c.call(op.NNN())
	case 0x3: // SE Vx, byte
		c.skipIf(c.regs.Get(x) == op.NN())
		return nil
	case 0x4: // SNE Vx, byte
		c.skipIf(c.regs.Get(x) != op.NN())
		return nil
	case 0x5:
		if op.N() == 0 { // SE Vx, Vy
			c.skipIf(c.regs.Get(x) == c.regs.Get(y))
			return nil
		}
	case 0x6: // LD Vx, byte
		c.regs.Set(x, op.NN())
		return nil
	case 0x7: // ADD Vx, byte, no carry
		c.regs.Set(x, c.regs.Get(x)+op.NN())
		return nil
	case 0x8:
		if c.alu(op.N(), x, y) {
			return nil
		}
	case 0x9:
		if op.N() == 0 { // SNE Vx, Vy
			c.skipIf(c.regs.Get(x) != c.regs.Get(y))
			return nil
		}
	case 0xA: // LD I, addr
		c.regs.SetIndex(op.NNN())
		return nil
	case 0xB: // JP V0, addr
		offset := V0
		if c.quirks.JumpUsesVX {
			offset = x
		}
		return c.jump(op.NNN() + uint16(c.regs.Get(offset)))
	case 0xC: // RND Vx, byte
		c.regs.Set(x, uint8(c.rng.Uint32())&op.NN())
		return nil
	case 0xD: // DRW Vx, Vy, nibble
		return c.draw(x, y, op.N())
	case 0xE:
		switch op.NN() {
		case 0x9E: // SKP Vx
			c.skipIf(c.keypad.IsPressed(c.regs.Get(x)))
			return nil
		case 0xA1: // SKNP Vx
			c.skipIf(!c.keypad.IsPressed(c.regs.Get(x)))
			return nil
		}
	case 0xF:
		return c.misc(op, x)
	}

	return c.unknown(op)
}

func (c *CPU) unknown(op opcode.Opcode) error {
	return &UnknownOpcodeError{Opcode: op, Address: c.regs.pc.Get() - opcode.Size}
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.regs.pc.Increment()
	}
}

// jump moves the PC to address, which must be even and inside the
// program region.
func (c *CPU) jump(address uint16) error {
	if err := checkTarget(address); err != nil {
		return fmt.Errorf("jump at 0x%04X: %w", c.regs.pc.Get()-opcode.Size, err)
	}
	c.regs.pc.Set(address)
	return nil
}

func checkTarget(address uint16) error {
	if address < memory.ProgramStart || int(address) > memory.Size-opcode.Size || address%opcode.Size != 0 {
		return fmt.Errorf("%w: 0x%04X", ErrBadProgramCounter, address)
	}
	return nil
}

func (c *CPU) call(address uint16) error {
	from := c.regs.pc.Get() - opcode.Size
	if err := checkTarget(address); err != nil {
		return fmt.Errorf("call from 0x%04X: %w", from, err)
	}
	if err := c.stack.Push(c.regs.pc.Get()); err != nil {
		return fmt.Errorf("call 0x%03X from 0x%04X: %w", address, from, err)
	}
	c.regs.pc.Set(address)
	return nil
}

func (c *CPU) ret() error {
	from := c.regs.pc.Get() - opcode.Size
	address, err := c.stack.Pop()
	if err != nil {
		return fmt.Errorf("return at 0x%04X: %w", from, err)
	}
	if err := checkTarget(address); err != nil {
		return fmt.Errorf("return at 0x%04X: %w", from, err)
	}
	c.regs.pc.Set(address)
	return nil
}

// alu runs the 8XYN group and reports whether n was a known operation.
// VF is written after VX so the flag survives when X is F.
func (c *CPU) alu(n uint8, x, y Register) bool {
	vx, vy := c.regs.Get(x), c.regs.Get(y)

	switch n {
	case 0x0: // LD Vx, Vy
		c.regs.Set(x, vy)
	case 0x1: // OR Vx, Vy
		c.regs.Set(x, vx|vy)
	case 0x2: // AND Vx, Vy
		c.regs.Set(x, vx&vy)
	case 0x3: // XOR Vx, Vy
		c.regs.Set(x, vx^vy)
	case 0x4: // ADD Vx, Vy
		sum, carry := bit.CheckedAdd(vx, vy)
		c.regs.Set(x, sum)
		c.regs.Set(VF, bit.BoolToBit(carry))
	case 0x5: // SUB Vx, Vy
		diff, borrow := bit.CheckedSub(vx, vy)
		c.regs.Set(x, diff)
		c.regs.Set(VF, bit.BoolToBit(!borrow))
	case 0x6: // SHR Vx {, Vy}
		src := vx
		if c.quirks.ShiftUsesVY {
			src = vy
		}
		c.regs.Set(x, src>>1)
		c.regs.Set(VF, bit.Lsb(src))
	case 0x7: // SUBN Vx, Vy
		diff, borrow := bit.CheckedSub(vy, vx)
		c.regs.Set(x, diff)
		c.regs.Set(VF, bit.BoolToBit(!borrow))
	case 0xE: // SHL Vx {, Vy}
		src := vx
		if c.quirks.ShiftUsesVY {
			src = vy
		}
		c.regs.Set(x, src<<1)
		c.regs.Set(VF, bit.Msb(src))
	default:
		return false
	}
	return true
}

func (c *CPU) draw(x, y Register, height uint8) error {
	rows, err := c.mem.ReadSlice(c.regs.Index(), int(height))
	if err != nil {
		return fmt.Errorf("sprite at I=0x%04X: %w", c.regs.Index(), err)
	}
	// coordinates are read before VF is cleared, so DXYN with X or Y = F
	// draws at the old flag value
	vx, vy := c.regs.Get(x), c.regs.Get(y)
	c.regs.Set(VF, 0)
	collision := c.display.DrawSprite(vx, vy, rows)
	c.regs.Set(VF, bit.BoolToBit(collision))
	return nil
}

func (c *CPU) misc(op opcode.Opcode, x Register) error {
	vx := c.regs.Get(x)

	switch op.NN() {
	case 0x07: // LD Vx, DT
		c.regs.Set(x, c.timers.Delay())
	case 0x0A: // LD Vx, K
		key, ok := c.keypad.FirstPressed()
		if !ok {
			// re-run this instruction on the next cycle
			c.waitingForKey = true
			c.regs.pc.Decrement()
			return nil
		}
		c.waitingForKey = false
		c.regs.Set(x, key)
	case 0x15: // LD DT, Vx
		c.timers.SetDelay(vx)
	case 0x18: // LD ST, Vx
		c.timers.SetSound(vx)
	case 0x1E: // ADD I, Vx
		c.regs.SetIndex(c.regs.Index() + uint16(vx))
	case 0x29: // LD F, Vx
		c.regs.SetIndex(memory.FontGlyphAddress(vx))
	case 0x33: // LD B, Vx
		hundreds, tens, units := bit.BCD(vx)
		if err := c.mem.WriteSlice(c.regs.Index(), []byte{hundreds, tens, units}); err != nil {
			return fmt.Errorf("bcd store at I=0x%04X: %w", c.regs.Index(), err)
		}
	case 0x55: // LD [I], Vx
		values := make([]byte, int(x)+1)
		for i := range values {
			values[i] = c.regs.Get(Register(i))
		}
		if err := c.mem.WriteSlice(c.regs.Index(), values); err != nil {
			return fmt.Errorf("register store at I=0x%04X: %w", c.regs.Index(), err)
		}
	case 0x65: // LD Vx, [I]
		values, err := c.mem.ReadSlice(c.regs.Index(), int(x)+1)
		if err != nil {
			return fmt.Errorf("register load at I=0x%04X: %w", c.regs.Index(), err)
		}
		for i, value := range values {
			c.regs.Set(Register(i), value)
		}
	default:
		return c.unknown(op)
	}
	return nil
}
