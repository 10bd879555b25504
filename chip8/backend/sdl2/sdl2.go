//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

const beepSuffix = " ♪"

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig

	keyMapping map[sdl.Keycode]action.Action
	events     []backend.InputEvent
	beeping    bool

	// Snapshot state
	currentFrame *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{
		keyMapping: buildKeyMapping(),
	}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	scale := config.Scale
	if scale <= 0 {
		scale = display.DefaultPixelScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture

	s.running = true
	slog.Info("SDL2 backend initialized", "scale", scale)

	return nil
}

// Update renders a frame and returns the keyboard events polled since the
// previous call.
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	if !s.running {
		return nil, nil
	}

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		s.handleEvent(e)
	}

	s.currentFrame = frame
	s.renderFrame(frame)
	s.updateBeep()

	events := s.events
	s.events = nil
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

// HandleAction handles the actions that need the window or the last frame.
func (s *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(s.currentFrame)
	case action.EmulatorQuit:
		s.running = false
	}
}

func (s *Backend) handleEvent(e sdl.Event) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_FOCUS_LOST {
			// keys released while unfocused never reach us
			for k := uint8(0); k < 16; k++ {
				s.events = append(s.events, backend.InputEvent{Action: action.ForKey(k), Type: event.Release})
			}
		}

	case *sdl.KeyboardEvent:
		act, ok := s.keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat != 0:
			if act.IsKeypad() {
				s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		case e.Type == sdl.KEYDOWN:
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP:
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

// buildKeyMapping resolves the shared key names to SDL keycodes.
func buildKeyMapping() map[sdl.Keycode]action.Action {
	mapping := make(map[sdl.Keycode]action.Action, len(input.DefaultKeyMap))
	for name, act := range input.DefaultKeyMap {
		code := sdl.GetKeyFromName(name)
		if code == sdl.K_UNKNOWN {
			slog.Debug("No SDL key for name", "name", name)
			continue
		}
		mapping[code] = act
	}
	return mapping
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) {
	pixels := framePixels(frame)

	s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel)

	r, g, b, a := display.PixelRGBA(false)
	s.renderer.SetDrawColor(r, g, b, a)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

// framePixels converts the frame to ABGR byte order, which is what
// RGBA8888 looks like in memory on little-endian hosts.
func framePixels(frame *video.FrameBuffer) []byte {
	frameData := frame.ToSlice()
	out := make([]byte, len(frameData)*display.RGBABytesPerPixel)

	for i, on := range frameData {
		r, g, b, a := display.PixelRGBA(on)
		dst := i * display.RGBABytesPerPixel
		out[dst] = a
		out[dst+1] = b
		out[dst+2] = g
		out[dst+3] = r
	}
	return out
}

func (s *Backend) updateBeep() {
	if s.config.Sound == nil {
		return
	}
	active := s.config.Sound.SoundActive()
	if active == s.beeping {
		return
	}
	s.beeping = active

	title := s.config.Title
	if active {
		title += beepSuffix
	}
	s.window.SetTitle(title)
}
