package integration

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/opcode"
	"github.com/valerio/go-chip8/chip8/rom"
	"github.com/valerio/go-chip8/chip8/video"
)

// Set to a directory to keep a PNG of every final frame.
const snapshotDirEnv = "CHIP8_SNAPSHOT_DIR"

type glyphAt struct {
	digit byte
	x, y  uint8
}

type IntegrationTestCase struct {
	Name    string
	Program []uint16
	Quirks  cpu.Quirks
	Frames  int
	// Expected is drawn on an empty frame with the same edge policy.
	Expected []glyphAt
	// Registers checked after the run, by index.
	Registers map[uint8]uint8
}

func GetIntegrationTests() []IntegrationTestCase {
	return []IntegrationTestCase{
		{
			Name: "digits",
			// draw 0..7 along the top row
			Program: []uint16{
				0x6000, // LD V0, 0
				0x6100, // LD V1, 0
				0x6200, // LD V2, 0
				0xF029, // LD F, V0
				0xD125, // DRW V1, V2, 5
				0x7105, // ADD V1, 5
				0x7001, // ADD V0, 1
				0x3008, // SE V0, 8
				0x1206, // JP 0x206
				0x1212, // JP 0x212
			},
			Frames: 5,
			Expected: []glyphAt{
				{0, 0, 0}, {1, 5, 0}, {2, 10, 0}, {3, 15, 0},
				{4, 20, 0}, {5, 25, 0}, {6, 30, 0}, {7, 35, 0},
			},
			Registers: map[uint8]uint8{0x0: 8, 0x1: 40, 0xF: 0},
		},
		{
			Name: "bcd",
			Program: []uint16{
				0x63EA, // LD V3, 234
				0xA300, // LD I, 0x300
				0xF333, // LD B, V3
				0xF265, // LD V2, [I]
				0x6500, // LD V5, 0
				0x6610, // LD V6, 16
				0xF029, // LD F, V0
				0xD565, // DRW V5, V6, 5
				0x7505, // ADD V5, 5
				0xF129, // LD F, V1
				0xD565, // DRW V5, V6, 5
				0x7505, // ADD V5, 5
				0xF229, // LD F, V2
				0xD565, // DRW V5, V6, 5
				0x121C, // JP 0x21C
			},
			Frames:    3,
			Expected:  []glyphAt{{2, 0, 16}, {3, 5, 16}, {4, 10, 16}},
			Registers: map[uint8]uint8{0x0: 2, 0x1: 3, 0x2: 4},
		},
		{
			Name: "collision erases",
			Program: []uint16{
				0xA050, // LD I, glyph 0
				0xD005, // DRW V0, V0, 5
				0xD005, // DRW V0, V0, 5
				0x1206, // JP 0x206
			},
			Frames:    2,
			Registers: map[uint8]uint8{0xF: 1},
		},
		{
			Name: "wrapping sprite",
			Program: []uint16{
				0x603E, // LD V0, 62
				0x611E, // LD V1, 30
				0xF829, // LD F, V8
				0xD015, // DRW V0, V1, 5
				0x1208, // JP 0x208
			},
			Quirks:    cpu.Quirks{SpriteEdge: video.EdgeWrap},
			Frames:    2,
			Expected:  []glyphAt{{0, 62, 30}},
			Registers: map[uint8]uint8{0xF: 0},
		},
		{
			Name: "clipped sprite",
			Program: []uint16{
				0x603E, // LD V0, 62
				0x611E, // LD V1, 30
				0xF829, // LD F, V8
				0xD015, // DRW V0, V1, 5
				0x1208, // JP 0x208
			},
			Frames:    2,
			Expected:  []glyphAt{{0, 62, 30}},
			Registers: map[uint8]uint8{0xF: 0},
		},
	}
}

func assemble(words []uint16) []byte {
	out := make([]byte, 0, len(words)*opcode.Size)
	for _, w := range words {
		b := opcode.Opcode(w).Bytes()
		out = append(out, b[:]...)
	}
	return out
}

func expectedFrame(testCase IntegrationTestCase) *video.FrameBuffer {
	fb := video.NewFrameBuffer()
	fb.SetEdgePolicy(testCase.Quirks.SpriteEdge)
	for _, g := range testCase.Expected {
		fb.DrawSprite(g.x, g.y, memory.Glyph(g.digit))
	}
	return fb
}

func runIntegrationTest(t *testing.T, testCase IntegrationTestCase) {
	t.Logf("Running integration test: %s", testCase.Name)

	image, err := rom.FromBytes(testCase.Name+".ch8", "raw", assemble(testCase.Program))
	require.NoError(t, err)

	vm := chip8.New(chip8.Config{Quirks: testCase.Quirks, Seed: 1})
	require.NoError(t, vm.LoadROM(image))

	b := headless.New(testCase.Frames, headless.SnapshotConfig{})
	require.NoError(t, b.Init(backend.BackendConfig{Title: testCase.Name}))
	defer b.Cleanup()

	require.NoError(t, vm.Run(b, nil))
	assert.Equal(t, testCase.Frames, b.FrameCount())

	fb := vm.GetCurrentFrame()
	if dir := os.Getenv(snapshotDirEnv); dir != "" {
		path, err := debug.SaveFramePNGToDir(fb, testCase.Name, dir)
		require.NoError(t, err)
		t.Logf("Saved snapshot to %s", path)
	}

	want := expectedFrame(testCase)
	if fb.Checksum() != want.Checksum() {
		path, err := debug.SaveFramePNGToDir(fb, testCase.Name+"_actual", t.TempDir())
		require.NoError(t, err)
		t.Errorf("Test output differs from expected\n  Expected hash: %016x\n  Actual hash:   %016x\n  Saved:         %s",
			want.Checksum(), fb.Checksum(), path)
	}

	regs := vm.CPU().Registers()
	for index, value := range testCase.Registers {
		got, err := regs.Read(index)
		require.NoError(t, err)
		assert.Equal(t, value, got, "V%X", index)
	}
	assert.False(t, vm.Halted(), fmt.Sprintf("halted: %v", vm.Err()))
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	for _, testCase := range GetIntegrationTests() {
		t.Run(testCase.Name, func(t *testing.T) {
			runIntegrationTest(t, testCase)
		})
	}
}
