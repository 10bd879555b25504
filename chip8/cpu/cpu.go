package cpu

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
	"github.com/valerio/go-chip8/chip8/video"
)

// Keypad is the read side of the hex keypad used by EX9E, EXA1 and FX0A.
type Keypad interface {
	IsPressed(key uint8) bool
	FirstPressed() (uint8, bool)
}

// Random produces the values used by CXNN.
type Random interface {
	Uint32() uint32
}

// CPU executes CHIP-8 instructions against the memory, display and keypad it
// is wired to. Timers are owned here but ticked by the host on its own clock.
type CPU struct {
	regs   RegisterFile
	stack  CallStack
	timers Timers

	mem     *memory.AddressSpace
	display *video.FrameBuffer
	keypad  Keypad
	rng     Random
	quirks  Quirks

	// metadata
	currentOpcode opcode.Opcode
	cycles        uint64
	waitingForKey bool
	halted        bool
	err           error
}

// New returns a CPU ready to run the program loaded at memory.ProgramStart.
// A nil rng falls back to an unseeded PCG source.
func New(mem *memory.AddressSpace, display *video.FrameBuffer, keypad Keypad, rng Random, quirks Quirks) *CPU {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &CPU{
		mem:     mem,
		display: display,
		keypad:  keypad,
		rng:     rng,
	}
	c.SetQuirks(quirks)
	c.Reset()
	return c
}

// Reset clears registers, stack, timers and the halted state. Memory and the
// display are left alone.
func (c *CPU) Reset() {
	c.regs.Reset()
	c.stack.Reset()
	c.timers.Reset()
	c.currentOpcode = 0
	c.cycles = 0
	c.waitingForKey = false
	c.halted = false
	c.err = nil
}

// SetQuirks changes the active behaviour profile.
func (c *CPU) SetQuirks(q Quirks) {
	c.quirks = q
	c.display.SetEdgePolicy(q.SpriteEdge)
	c.display.SetOriginWrap(q.SpriteOrigin)
}

// Cycle fetches, decodes and executes one instruction. Any error it returns is
// fatal: the CPU halts and every later call returns ErrHalted.
func (c *CPU) Cycle() error {
	if c.halted {
		return ErrHalted
	}

	pc := c.regs.pc.Get()
	op, err := c.mem.ReadOpcode(pc)
	if err != nil {
		return c.halt(fmt.Errorf("fetch at 0x%04X: %w", pc, err))
	}
	c.currentOpcode = op
	c.regs.pc.Increment()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec", "pc", fmt.Sprintf("0x%04X", pc), "opcode", op.String())
	}

	if err := c.execute(op); err != nil {
		return c.halt(err)
	}
	c.cycles++
	return nil
}

func (c *CPU) halt(err error) error {
	c.halted = true
	c.err = err
	return err
}

// TickTimers decrements the delay and sound timers, call it at TimerFrequency.
func (c *CPU) TickTimers() {
	c.timers.Tick()
}

// Halted reports whether a fatal error stopped the CPU.
func (c *CPU) Halted() bool {
	return c.halted
}

// Err returns the error that halted the CPU, if any.
func (c *CPU) Err() error {
	return c.err
}

// Debug getter methods

func (c *CPU) Registers() *RegisterFile {
	return &c.regs
}

func (c *CPU) Stack() *CallStack {
	return &c.stack
}

func (c *CPU) Timers() *Timers {
	return &c.timers
}

func (c *CPU) Quirks() Quirks {
	return c.quirks
}

func (c *CPU) GetPC() uint16 {
	return c.regs.pc.Get()
}

func (c *CPU) GetIndex() uint16 {
	return c.regs.index
}

func (c *CPU) CurrentOpcode() opcode.Opcode {
	return c.currentOpcode
}

func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// WaitingForKey reports whether the last instruction was an FX0A with no key held.
func (c *CPU) WaitingForKey() bool {
	return c.waitingForKey
}
