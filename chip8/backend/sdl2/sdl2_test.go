//go:build sdl2

package sdl2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestKeyMapping(t *testing.T) {
	mapping := buildKeyMapping()

	tests := []struct {
		key  sdl.Keycode
		want action.Action
	}{
		{sdl.K_1, action.Key1},
		{sdl.K_4, action.KeyC},
		{sdl.K_q, action.Key4},
		{sdl.K_x, action.Key0},
		{sdl.K_v, action.KeyF},
		{sdl.K_SPACE, action.EmulatorPauseToggle},
		{sdl.K_ESCAPE, action.EmulatorQuit},
		{sdl.K_F9, action.EmulatorSnapshot},
	}
	for _, tt := range tests {
		got, ok := mapping[tt.key]
		require.True(t, ok, "missing key %d", tt.key)
		assert.Equal(t, tt.want, got)
	}
}

func TestFramePixels(t *testing.T) {
	frame := video.NewFrameBuffer()
	require.NoError(t, frame.Set(1, 0, true))

	pixels := framePixels(frame)
	require.Len(t, pixels, video.FramebufferWidth*video.FramebufferHeight*display.RGBABytesPerPixel)

	r, g, b, a := display.PixelRGBA(false)
	assert.Equal(t, []byte{a, b, g, r}, pixels[0:4])
	r, g, b, a = display.PixelRGBA(true)
	assert.Equal(t, []byte{a, b, g, r}, pixels[4:8])
}

func TestHandleKeyboardEvents(t *testing.T) {
	s := New()

	s.handleEvent(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_w}})
	s.handleEvent(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_w}})
	s.handleEvent(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_w}})
	// repeats of emulator keys are dropped
	s.handleEvent(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_F5}})
	s.handleEvent(&sdl.QuitEvent{})

	assert.Equal(t, []backend.InputEvent{
		{Action: action.Key5, Type: event.Press},
		{Action: action.Key5, Type: event.Hold},
		{Action: action.Key5, Type: event.Release},
		{Action: action.EmulatorQuit, Type: event.Press},
	}, s.events)
}
