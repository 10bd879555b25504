// Package web streams frames to browsers over a websocket and collects
// keypad input from them.
package web

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// Message types, the first byte of every websocket message.
const (
	// MsgFrame is followed by the packed framebuffer, one bit per pixel,
	// row major, MSB first.
	MsgFrame byte = 0x01
	// MsgSound is followed by one byte, 1 while the sound timer runs.
	MsgSound byte = 0x02
	// MsgKey is sent by clients: key index, then 1 for press or 0 for release.
	MsgKey byte = 0x10
	// MsgControl is sent by clients: one of the Control* codes.
	MsgControl byte = 0x11
)

// Control codes carried by MsgControl.
const (
	ControlPause byte = iota
	ControlStepInstruction
	ControlStepFrame
	ControlReset
	ControlSnapshot
)

var controlActions = map[byte]action.Action{
	ControlPause:           action.EmulatorPauseToggle,
	ControlStepInstruction: action.EmulatorStepInstruction,
	ControlStepFrame:       action.EmulatorStepFrame,
	ControlReset:           action.EmulatorReset,
	ControlSnapshot:        action.EmulatorSnapshot,
}

const shutdownTimeout = time.Second

//go:embed index.html
var indexHTML []byte

// Backend serves a small page that draws the display on a canvas.
type Backend struct {
	addr   string
	config backend.BackendConfig

	hub      *hub
	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	pending []backend.InputEvent

	currentFrame *video.FrameBuffer
	haveFrame    bool
	lastChecksum uint64
	haveSound    bool
	lastSound    bool
}

// New creates a web backend listening on addr once initialised. An empty
// addr serves nothing, callers mount Handler themselves.
func New(addr string) *Backend {
	return &Backend{addr: addr}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config
	b.hub = newHub()
	go b.hub.run()

	if b.addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", b.addr)
	if err != nil {
		b.hub.stop()
		return fmt.Errorf("web backend: %w", err)
	}
	b.listener = ln
	server := &http.Server{Handler: b.Handler()}
	b.server = server
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("Web server stopped", "error", err)
		}
	}()

	slog.Info("Web backend listening", "url", "http://"+ln.Addr().String())
	return nil
}

// Addr returns the address the server is bound to, empty when not listening.
func (b *Backend) Addr() string {
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Handler returns the page at "/" and the websocket endpoint at "/ws".
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", b.serveIndex)
	mux.HandleFunc("/ws", b.serveWebsocket)
	return mux
}

func (b *Backend) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (b *Backend) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: b.hub, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case b.hub.register <- c:
	case <-b.hub.done:
		conn.Close()
		return
	}
	slog.Debug("Web client connected", "remote", conn.RemoteAddr().String())

	go c.writePump()
	go c.readPump(b.handleMessage)
}

// handleMessage decodes a client message into an input event. Unknown or
// malformed messages are dropped.
func (b *Backend) handleMessage(msg []byte) {
	if len(msg) == 0 {
		return
	}

	var evt backend.InputEvent
	switch msg[0] {
	case MsgKey:
		if len(msg) < 3 || msg[1] >= memory.KeyCount {
			return
		}
		evt.Action = action.ForKey(msg[1])
		evt.Type = event.Release
		if msg[2] != 0 {
			evt.Type = event.Press
		}
	case MsgControl:
		if len(msg) < 2 {
			return
		}
		act, ok := controlActions[msg[1]]
		if !ok {
			return
		}
		evt = backend.InputEvent{Action: act, Type: event.Press}
	default:
		slog.Debug("Ignoring web message", "type", msg[0])
		return
	}

	b.mu.Lock()
	b.pending = append(b.pending, evt)
	b.mu.Unlock()
}

// Update broadcasts the frame when it changed and returns queued client input.
func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	b.currentFrame = frame

	if sum := frame.Checksum(); !b.haveFrame || sum != b.lastChecksum {
		b.haveFrame = true
		b.lastChecksum = sum
		b.hub.send(append([]byte{MsgFrame}, frame.Pack()...))
	}

	if b.config.Sound != nil {
		active := b.config.Sound.SoundActive()
		if !b.haveSound || active != b.lastSound {
			b.haveSound = true
			b.lastSound = active
			state := byte(0)
			if active {
				state = 1
			}
			b.hub.send([]byte{MsgSound, state})
		}
	}

	b.mu.Lock()
	events := b.pending
	b.pending = nil
	b.mu.Unlock()

	return events, nil
}

// HandleAction saves a PNG of the last frame on request.
func (b *Backend) HandleAction(act action.Action) {
	if act == action.EmulatorSnapshot && b.currentFrame != nil {
		debug.TakeSnapshot(b.currentFrame)
	}
}

func (b *Backend) Cleanup() error {
	if b.hub == nil {
		return nil
	}
	b.hub.stop()

	if b.server != nil {
		server := b.server
		b.server = nil
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(ctx)
	}
	return nil
}
