package backend

import (
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend represents a complete emulator platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, browser, etc.)
// - Translating platform-specific input events to InputEvents
// - Handling backend-specific features (snapshots, debug panels)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns the input events collected since
	// the previous call. The caller routes them to the input manager.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// ActionHandler is implemented by backends that react to emulator actions
// themselves, like toggling a debug panel or changing the log filter.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// InputEvent is a platform key event translated to an emulator action.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// DebugDataProvider exposes emulator state to debug views.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// SoundProvider reports whether the sound timer is running, backends show
// a beep indicator while it is.
type SoundProvider interface {
	SoundActive() bool
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title         string
	Scale         int
	ShowDebug     bool              // Backends may ignore unsupported features
	DebugProvider DebugDataProvider // Optional, enables debug views
	Sound         SoundProvider     // Optional, enables the beep indicator
}
