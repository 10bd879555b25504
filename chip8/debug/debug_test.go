package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestCreateDisassembly(t *testing.T) {
	snapshot := &MemorySnapshot{
		StartAddr: 0x200,
		Bytes:     []byte{0x00, 0xE0, 0x6A, 0x3B, 0xA2, 0x28, 0xD0, 0x05, 0x12, 0x00},
	}

	lines := CreateDisassembly(snapshot, 0x204, 6)

	require.Len(t, lines, 5)
	assert.Equal(t, uint16(0x200), lines[0].Address)
	assert.Equal(t, "CLS", lines[0].Instruction)
	assert.False(t, lines[0].IsCurrent)
	assert.Equal(t, uint16(0x204), lines[2].Address)
	assert.Equal(t, "LD I, $228", lines[2].Instruction)
	assert.True(t, lines[2].IsCurrent)
	assert.Equal(t, "JP $200", lines[4].Instruction)
}

func TestCreateDisassembly_OddPC(t *testing.T) {
	snapshot := &MemorySnapshot{StartAddr: 0x200, Bytes: []byte{0x00, 0xE0, 0x00, 0xEE, 0x00}}

	lines := CreateDisassembly(snapshot, 0x201, 3)

	require.Len(t, lines, 2)
	assert.Equal(t, uint16(0x201), lines[0].Address)
	assert.Equal(t, "DW $E000", lines[0].Instruction)
	assert.True(t, lines[0].IsCurrent)
	assert.Equal(t, "DW $EE00", lines[1].Instruction)
}

func TestCreateDisassembly_OutsideSnapshot(t *testing.T) {
	snapshot := &MemorySnapshot{StartAddr: 0x200, Bytes: []byte{0x00, 0xE0}}

	lines := CreateDisassembly(snapshot, 0x300, 5)

	require.Len(t, lines, 1)
	assert.True(t, lines[0].IsCurrent)
	assert.Nil(t, CreateDisassembly(nil, 0x200, 5))
}

func TestDebuggerState_String(t *testing.T) {
	assert.Equal(t, "running", DebuggerRunning.String())
	assert.Equal(t, "paused", DebuggerPaused.String())
	assert.Equal(t, "halted", DebuggerHalted.String())
}

func TestSaveFramePNGToDir(t *testing.T) {
	dir := t.TempDir()
	fb := video.NewFrameBuffer()
	require.NoError(t, fb.Set(3, 2, true))

	path, err := SaveFramePNGToDir(fb, "test_frame", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_frame_"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, video.FramebufferWidth, img.Bounds().Dx())
	assert.Equal(t, video.FramebufferHeight, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 2).RGBA()
	wantR, wantG, wantB, _ := display.PixelRGBA(true)
	assert.Equal(t, uint32(wantR), r>>8)
	assert.Equal(t, uint32(wantG), g>>8)
	assert.Equal(t, uint32(wantB), b>>8)

	r, _, _, _ = img.At(0, 0).RGBA()
	offR, _, _, _ := display.PixelRGBA(false)
	assert.Equal(t, uint32(offR), r>>8)
}
