package chip8

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
	"github.com/valerio/go-chip8/chip8/rom"
	"github.com/valerio/go-chip8/chip8/video"
)

func program(words ...uint16) []byte {
	out := make([]byte, 0, len(words)*opcode.Size)
	for _, w := range words {
		b := opcode.Opcode(w).Bytes()
		out = append(out, b[:]...)
	}
	return out
}

func newTestVM(t *testing.T, config Config, words ...uint16) *VM {
	t.Helper()
	image, err := rom.FromBytes("test.ch8", "raw", program(words...))
	require.NoError(t, err)

	v := New(config)
	require.NoError(t, v.LoadROM(image))
	return v
}

// LD VA, 5; LD DT, VA; JP 0x204
var loopProgram = []uint16{0x6A05, 0xFA15, 0x1204}

type mockBackend struct {
	events      [][]backend.InputEvent
	updateCalls int
	actions     []action.Action
}

func (m *mockBackend) Init(config backend.BackendConfig) error { return nil }

func (m *mockBackend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	m.updateCalls++
	if len(m.events) == 0 {
		return []backend.InputEvent{{Action: action.EmulatorQuit, Type: event.Press}}, nil
	}
	next := m.events[0]
	m.events = m.events[1:]
	return next, nil
}

func (m *mockBackend) Cleanup() error { return nil }

func (m *mockBackend) HandleAction(act action.Action) {
	m.actions = append(m.actions, act)
}

func TestNew_Defaults(t *testing.T) {
	v := New(Config{})
	assert.Equal(t, 700/60, v.cyclesPerFrame)
	assert.Equal(t, debug.DebuggerRunning, v.DebuggerState())
	assert.ErrorIs(t, v.Reset(), ErrNoROM)

	v = New(Config{CPUHz: 30})
	assert.Equal(t, 1, v.cyclesPerFrame)
}

func TestRunUntilFrame(t *testing.T) {
	v := newTestVM(t, Config{}, loopProgram...)

	require.NoError(t, v.RunUntilFrame())

	c := v.CPU()
	assert.Equal(t, uint8(5), c.Registers().Get(0xA))
	assert.Equal(t, uint8(4), c.Timers().Delay(), "timers tick once per frame")
	assert.Equal(t, uint64(v.cyclesPerFrame), c.Cycles())
	assert.Equal(t, uint16(0x204), c.GetPC())
	assert.Equal(t, uint64(1), v.FrameCount())
}

func TestRunUntilFrame_Halts(t *testing.T) {
	v := newTestVM(t, Config{}, 0x6001, 0x0123)

	err := v.RunUntilFrame()
	var unknown *cpu.UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint16(0x202), unknown.Address)

	assert.True(t, v.Halted())
	assert.Equal(t, debug.DebuggerHalted, v.DebuggerState())
	assert.ErrorIs(t, v.Err(), err)
	assert.Equal(t, uint64(0), v.FrameCount())

	// stays halted, state is frozen
	require.NoError(t, v.RunUntilFrame())
	assert.Equal(t, uint64(1), v.CPU().Cycles())

	data := v.ExtractDebugData()
	assert.Contains(t, data.Error, "unknown opcode")
	assert.True(t, data.CPU.Halted)

	// reset brings it back
	require.NoError(t, v.Reset())
	assert.False(t, v.Halted())
	assert.Equal(t, debug.DebuggerRunning, v.DebuggerState())
}

func TestDebuggerStates(t *testing.T) {
	v := newTestVM(t, Config{}, loopProgram...)
	c := v.CPU()

	v.HandleAction(action.EmulatorPauseToggle, true)
	assert.Equal(t, debug.DebuggerPaused, v.DebuggerState())
	require.NoError(t, v.RunUntilFrame())
	assert.Equal(t, uint64(0), c.Cycles())

	v.HandleAction(action.EmulatorStepInstruction, true)
	require.NoError(t, v.RunUntilFrame())
	assert.Equal(t, uint64(1), c.Cycles())
	assert.Equal(t, uint8(5), c.Registers().Get(0xA))
	assert.Equal(t, debug.DebuggerPaused, v.DebuggerState())

	require.NoError(t, v.RunUntilFrame())
	assert.Equal(t, uint64(1), c.Cycles())

	v.HandleAction(action.EmulatorStepFrame, true)
	require.NoError(t, v.RunUntilFrame())
	assert.Equal(t, uint64(1+v.cyclesPerFrame), c.Cycles())
	assert.Equal(t, uint8(4), c.Timers().Delay())
	assert.Equal(t, debug.DebuggerPaused, v.DebuggerState())

	v.HandleAction(action.EmulatorPauseToggle, true)
	assert.Equal(t, debug.DebuggerRunning, v.DebuggerState())

	// releases are ignored for emulator actions
	v.HandleAction(action.EmulatorPauseToggle, false)
	assert.Equal(t, debug.DebuggerRunning, v.DebuggerState())
}

func TestReset(t *testing.T) {
	// LD I, glyph 0; DRW V0, V0, 5; JP 0x204
	v := newTestVM(t, Config{}, 0xA050, 0xD005, 0x1204)
	require.NoError(t, v.RunUntilFrame())
	assert.True(t, v.GetCurrentFrame().GetPixel(0, 0))

	v.HandleAction(action.Key5, true)
	v.HandleAction(action.EmulatorReset, true)

	assert.False(t, v.GetCurrentFrame().GetPixel(0, 0))
	assert.Equal(t, uint16(memory.ProgramStart), v.CPU().GetPC())
	assert.Equal(t, uint64(0), v.CPU().Cycles())
	assert.False(t, v.Keypad().IsPressed(5))
	assert.Equal(t, uint64(0), v.FrameCount())

	op, err := v.mem.ReadOpcode(memory.ProgramStart)
	require.NoError(t, err)
	assert.Equal(t, opcode.Opcode(0xA050), op)
}

func TestHandleAction_Keypad(t *testing.T) {
	v := newTestVM(t, Config{}, loopProgram...)

	v.HandleAction(action.KeyB, true)
	assert.True(t, v.Keypad().IsPressed(0xB))
	v.HandleAction(action.KeyB, false)
	assert.False(t, v.Keypad().IsPressed(0xB))
}

func TestSeedIsReproducible(t *testing.T) {
	// RND V0, $FF; RND V1, $FF; JP 0x204
	words := []uint16{0xC0FF, 0xC1FF, 0x1204}

	a := newTestVM(t, Config{Seed: 42}, words...)
	b := newTestVM(t, Config{Seed: 42}, words...)
	require.NoError(t, a.RunUntilFrame())
	require.NoError(t, b.RunUntilFrame())

	assert.Equal(t, a.CPU().Registers().Snapshot(), b.CPU().Registers().Snapshot())
}

func TestQuirksApplyToDisplay(t *testing.T) {
	v := New(Config{Quirks: cpu.Quirks{SpriteEdge: video.EdgeWrap}})
	assert.Equal(t, video.EdgeWrap, v.GetCurrentFrame().EdgePolicy())
}

func TestExtractDebugData(t *testing.T) {
	v := newTestVM(t, Config{}, loopProgram...)
	v.HandleAction(action.Key3, true)
	require.NoError(t, v.RunUntilFrame())

	data := v.ExtractDebugData()
	require.NotNil(t, data)
	assert.Equal(t, uint16(0x204), data.CPU.PC)
	assert.Equal(t, uint8(5), data.CPU.V[0xA])
	assert.Equal(t, uint8(4), data.CPU.Delay)
	assert.Equal(t, uint16(0x1204), data.CPU.Opcode)
	assert.True(t, data.Keys[3])
	assert.Equal(t, "test.ch8", data.ROMName)
	assert.Equal(t, v.ROM().Hash, data.ROMHash)
	assert.Equal(t, cpu.Quirks{}.String(), data.Quirks)
	assert.Empty(t, data.Error)

	snap := data.Memory
	require.NotNil(t, snap)
	assert.Equal(t, uint16(0x204-debugWindowBefore), snap.StartAddr)
	assert.Len(t, snap.Bytes, debugWindowBefore+debugWindowAfter)
	offset := data.CPU.PC - snap.StartAddr
	assert.Equal(t, []byte{0x12, 0x04}, snap.Bytes[offset:offset+2])
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		events      [][]backend.InputEvent
		wantUpdates int
		wantActions []action.Action
		wantKeys    []uint8
	}{
		{
			name:        "quit stops the loop",
			events:      nil,
			wantUpdates: 1,
			wantActions: []action.Action{action.EmulatorQuit},
		},
		{
			name: "keypad events reach the keypad",
			events: [][]backend.InputEvent{
				{{Action: action.Key1, Type: event.Press}, {Action: action.Key2, Type: event.Press}},
				{{Action: action.Key1, Type: event.Release}},
			},
			wantUpdates: 3,
			wantActions: []action.Action{action.EmulatorQuit},
			wantKeys:    []uint8{2},
		},
		{
			name: "emulator actions are forwarded to the backend",
			events: [][]backend.InputEvent{
				{{Action: action.EmulatorSnapshot, Type: event.Press}, {Action: action.EmulatorSnapshot, Type: event.Release}},
			},
			wantUpdates: 2,
			wantActions: []action.Action{action.EmulatorSnapshot, action.EmulatorQuit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVM(t, Config{}, loopProgram...)
			mock := &mockBackend{events: tt.events}

			require.NoError(t, v.Run(mock, nil))
			assert.Equal(t, tt.wantUpdates, mock.updateCalls)
			assert.Equal(t, tt.wantActions, mock.actions)
			for k := uint8(0); k < memory.KeyCount; k++ {
				assert.Equal(t, contains(tt.wantKeys, k), v.Keypad().IsPressed(k), "key %X", k)
			}
		})
	}
}

func TestRun_ReturnsFatalError(t *testing.T) {
	v := newTestVM(t, Config{}, 0x0123)
	mock := &mockBackend{}

	err := v.Run(mock, nil)
	var unknown *cpu.UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 1, mock.updateCalls, "final frame is still shown")
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.ch8")
	require.NoError(t, os.WriteFile(path, program(loopProgram...), 0o644))

	v, err := NewWithFile(path, Config{})
	require.NoError(t, err)
	assert.Equal(t, "loop.ch8", v.ROM().Name)
	require.NoError(t, v.RunUntilFrame())

	_, err = NewWithFile(filepath.Join(t.TempDir(), "missing.ch8"), Config{})
	assert.Error(t, err)
}

func contains(keys []uint8, k uint8) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
