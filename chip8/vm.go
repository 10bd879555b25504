// Package chip8 wires the interpreter, its memory, display and keypad into a
// machine that runs frame by frame.
package chip8

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/rom"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// Memory shown around PC in debug data.
const (
	debugWindowBefore = 64
	debugWindowAfter  = 128
)

// ErrNoROM is returned by Reset when no program was ever loaded.
var ErrNoROM = errors.New("no rom loaded")

// Config holds the machine settings chosen by the host.
type Config struct {
	// CPUHz is the instruction rate, timing.DefaultCPUHz when zero.
	CPUHz  int
	Quirks cpu.Quirks
	// Seed makes RND reproducible, zero picks a random seed.
	Seed uint64
}

// VM owns the whole machine. The interpreter runs CyclesPerFrame instructions
// per frame and the timers tick once per frame, so both clocks stay tied to
// the 60Hz frame rate.
type VM struct {
	config Config

	mem     *memory.AddressSpace
	keypad  *memory.Keypad
	display *video.FrameBuffer
	cpu     *cpu.CPU
	rom     *rom.Image

	inputManager   *input.Manager
	debuggerState  debug.DebuggerState
	cyclesPerFrame int
	frameCount     uint64
	running        bool
}

// New creates a machine with an empty program region.
func New(config Config) *VM {
	if config.CPUHz <= 0 {
		config.CPUHz = timing.DefaultCPUHz
	}

	var rng cpu.Random
	if config.Seed != 0 {
		rng = rand.New(rand.NewPCG(config.Seed, config.Seed))
	}

	v := &VM{
		config:         config,
		mem:            memory.New(),
		keypad:         memory.NewKeypad(),
		display:        video.NewFrameBuffer(),
		cyclesPerFrame: timing.CyclesPerFrame(config.CPUHz),
	}
	v.cpu = cpu.New(v.mem, v.display, v.keypad, rng, config.Quirks)
	v.inputManager = input.NewManager(v.keypad)
	v.registerHandlers()

	return v
}

// NewWithFile creates a machine and loads the ROM at path into it.
func NewWithFile(path string, config Config) (*VM, error) {
	image, err := rom.Load(path)
	if err != nil {
		return nil, err
	}

	v := New(config)
	if err := v.LoadROM(image); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadROM resets the machine and copies the program to 0x200.
func (v *VM) LoadROM(image *rom.Image) error {
	v.rom = image
	if err := v.Reset(); err != nil {
		return err
	}

	slog.Info("Loaded ROM",
		"name", image.Name,
		"bytes", len(image.Data),
		"format", image.Format,
		"hash", fmt.Sprintf("%016x", image.Hash))
	return nil
}

// Reset clears memory, display, keypad and interpreter state, then reloads
// the current ROM.
func (v *VM) Reset() error {
	if v.rom == nil {
		return ErrNoROM
	}

	v.mem.Reset()
	v.display.Clear()
	v.keypad.ReleaseAll()
	v.cpu.Reset()
	v.frameCount = 0
	v.debuggerState = debug.DebuggerRunning

	if err := v.mem.LoadROM(v.rom.Data); err != nil {
		return fmt.Errorf("failed to load rom %q: %w", v.rom.Name, err)
	}
	return nil
}

// RunUntilFrame advances the machine by one frame according to the debugger
// state. A fatal interpreter error stops the frame early and is returned.
func (v *VM) RunUntilFrame() error {
	switch v.debuggerState {
	case debug.DebuggerPaused, debug.DebuggerHalted:
		return nil
	case debug.DebuggerStepInstruction:
		v.debuggerState = debug.DebuggerPaused
		return v.step()
	case debug.DebuggerStepFrame:
		v.debuggerState = debug.DebuggerPaused
	}

	for i := 0; i < v.cyclesPerFrame; i++ {
		if err := v.step(); err != nil {
			return err
		}
	}
	v.cpu.TickTimers()
	v.frameCount++

	return nil
}

func (v *VM) step() error {
	if err := v.cpu.Cycle(); err != nil {
		v.debuggerState = debug.DebuggerHalted
		return err
	}
	return nil
}

// Run drives the machine against a backend until the user quits or the
// interpreter halts. The backend must already be initialised.
func (v *VM) Run(b backend.Backend, limiter timing.Limiter) error {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	handler, _ := b.(backend.ActionHandler)

	v.running = true
	for v.running {
		if err := v.RunUntilFrame(); err != nil {
			slog.Error("Interpreter halted", "error", err, "pc", fmt.Sprintf("0x%04X", v.cpu.GetPC()))
			// let the backend show the final frame
			if _, updateErr := b.Update(v.display); updateErr != nil {
				slog.Warn("Backend update failed after halt", "error", updateErr)
			}
			return err
		}

		events, err := b.Update(v.display)
		if err != nil {
			return fmt.Errorf("backend update failed: %w", err)
		}

		for _, evt := range events {
			v.inputManager.Trigger(evt.Action, evt.Type)
			if handler != nil && !evt.Action.IsKeypad() && evt.Type == event.Press {
				handler.HandleAction(evt.Action)
			}
		}

		limiter.WaitForNextFrame()
	}

	return nil
}

func (v *VM) registerHandlers() {
	for _, act := range []action.Action{
		action.EmulatorPauseToggle,
		action.EmulatorStepInstruction,
		action.EmulatorStepFrame,
		action.EmulatorReset,
		action.EmulatorQuit,
	} {
		v.inputManager.On(act, event.Press, func() {
			v.handleEmulatorAction(act)
		})
	}
}

// HandleAction applies an action directly, bypassing debouncing.
func (v *VM) HandleAction(act action.Action, pressed bool) {
	if act.IsKeypad() {
		if pressed {
			v.keypad.Press(memory.Key(act.Key()))
		} else {
			v.keypad.Release(memory.Key(act.Key()))
		}
		return
	}
	if pressed {
		v.handleEmulatorAction(act)
	}
}

func (v *VM) handleEmulatorAction(act action.Action) {
	switch act {
	case action.EmulatorPauseToggle:
		switch v.debuggerState {
		case debug.DebuggerRunning:
			v.debuggerState = debug.DebuggerPaused
			slog.Info("Paused", "pc", fmt.Sprintf("0x%04X", v.cpu.GetPC()))
		case debug.DebuggerPaused, debug.DebuggerStepInstruction, debug.DebuggerStepFrame:
			v.debuggerState = debug.DebuggerRunning
			slog.Info("Resumed")
		}
	case action.EmulatorStepInstruction:
		if v.debuggerState != debug.DebuggerHalted {
			v.debuggerState = debug.DebuggerStepInstruction
		}
	case action.EmulatorStepFrame:
		if v.debuggerState != debug.DebuggerHalted {
			v.debuggerState = debug.DebuggerStepFrame
		}
	case action.EmulatorReset:
		if err := v.Reset(); err != nil {
			slog.Warn("Reset failed", "error", err)
			return
		}
		slog.Info("Reset")
	case action.EmulatorQuit:
		v.running = false
	}
}

// GetCurrentFrame returns the live display.
func (v *VM) GetCurrentFrame() *video.FrameBuffer {
	return v.display
}

// SoundActive reports whether the sound timer is running.
func (v *VM) SoundActive() bool {
	return v.cpu.Timers().SoundActive()
}

func (v *VM) Halted() bool {
	return v.cpu.Halted()
}

// Err returns the error that halted the interpreter, nil while running.
func (v *VM) Err() error {
	return v.cpu.Err()
}

func (v *VM) DebuggerState() debug.DebuggerState {
	return v.debuggerState
}

func (v *VM) FrameCount() uint64 {
	return v.frameCount
}

func (v *VM) CPU() *cpu.CPU {
	return v.cpu
}

func (v *VM) Keypad() *memory.Keypad {
	return v.keypad
}

func (v *VM) ROM() *rom.Image {
	return v.rom
}

// ExtractDebugData snapshots the machine state for debug views.
func (v *VM) ExtractDebugData() *debug.CompleteDebugData {
	if v.cpu == nil || v.mem == nil {
		return nil
	}

	regs := v.cpu.Registers()
	timers := v.cpu.Timers()
	pc := v.cpu.GetPC()

	start := uint16(0)
	if pc > debugWindowBefore {
		start = pc - debugWindowBefore
	}

	data := &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			V:             regs.Snapshot(),
			I:             regs.Index(),
			PC:            pc,
			Stack:         v.cpu.Stack().Snapshot(),
			Delay:         timers.Delay(),
			Sound:         timers.Sound(),
			Opcode:        uint16(v.cpu.CurrentOpcode()),
			Cycles:        v.cpu.Cycles(),
			WaitingForKey: v.cpu.WaitingForKey(),
			Halted:        v.cpu.Halted(),
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: start,
			Bytes:     v.mem.Window(start, debugWindowBefore+debugWindowAfter),
		},
		Keys:          v.keypad.State(),
		DebuggerState: v.debuggerState,
		Quirks:        v.cpu.Quirks().String(),
	}
	if v.rom != nil {
		data.ROMName = v.rom.Name
		data.ROMHash = v.rom.Hash
	}
	if err := v.cpu.Err(); err != nil {
		data.Error = err.Error()
	}
	return data
}
