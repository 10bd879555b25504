package headless_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		frame := video.NewFrameBuffer()

		for i := 0; i < 3; i++ {
			events, err := h.Update(frame)
			require.NoError(t, err)

			if i < 2 {
				// Should not quit before reaching max frames
				assert.Empty(t, events)
			} else {
				// Should send quit event on last frame
				require.Len(t, events, 1)
				assert.Equal(t, action.EmulatorQuit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}

		assert.Equal(t, 3, h.FrameCount())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("requires frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		assert.Error(t, h.Init(backend.BackendConfig{}))
	})
}

func TestHeadlessBackend_Snapshots(t *testing.T) {
	dir := t.TempDir()
	config, err := headless.CreateSnapshotConfig(2, dir, "/roms/pong.ch8")
	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.Equal(t, "pong", config.ROMName)

	h := headless.New(5, config)
	require.NoError(t, h.Init(backend.BackendConfig{}))

	frame := video.NewFrameBuffer()
	for i := 0; i < 5; i++ {
		_, err := h.Update(frame)
		require.NoError(t, err)
	}

	// frames 2 and 4 on the interval, 5 as the final frame
	saved := h.SavedSnapshots()
	require.Len(t, saved, 3)
	for _, path := range saved {
		assert.Equal(t, dir, filepath.Dir(path))
		assert.True(t, strings.HasPrefix(filepath.Base(path), "pong_frame_"))
	}
	assert.Contains(t, filepath.Base(saved[2]), "pong_frame_5_")
}

func TestHeadlessBackend_FrameChanges(t *testing.T) {
	h := headless.New(4, headless.SnapshotConfig{})
	require.NoError(t, h.Init(backend.BackendConfig{}))

	frame := video.NewFrameBuffer()
	require.NoError(t, frame.Set(0, 0, true))

	// lit, lit, cleared, cleared
	for i := 0; i < 4; i++ {
		if i == 2 {
			frame.Clear()
		}
		_, err := h.Update(frame)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, h.FrameChanges())
	assert.Empty(t, h.SavedSnapshots())
}

func TestCreateSnapshotConfig_Disabled(t *testing.T) {
	config, err := headless.CreateSnapshotConfig(0, "", "pong.ch8")
	require.NoError(t, err)
	assert.False(t, config.Enabled)
	assert.Empty(t, config.Directory)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	// Compile-time check that headless.Backend implements backend.Backend
	var _ backend.Backend = (*headless.Backend)(nil)
}
