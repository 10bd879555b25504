package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	gameAreaHeight = height / 2 // two pixels per cell
	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = width + 2
	minTermHeight  = gameAreaHeight + 3
)

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals only report key presses, a key counts as held until it stops
// repeating for this long.
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	running   bool
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	config    backend.BackendConfig

	queueMu    sync.Mutex
	eventQueue []backend.InputEvent // Collect events to return

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame
	now        func() time.Time

	// For accessing emulator state
	debugProvider backend.DebugDataProvider
	sound         backend.SoundProvider

	// Snapshot state
	currentFrame *video.FrameBuffer

	stopSignals chan struct{}
	signalsDone chan struct{}
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		now: time.Now,
	}
}

// NewWithScreen creates a terminal backend drawing to an existing screen,
// such as a tcell simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.screen = screen
	return b
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.sound = config.Sound
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Create log buffer and route logging into the log panel
	t.logBuffer = render.NewLogBuffer(100)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	slog.Info("Terminal backend initialized")
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Set up signal handling for graceful shutdown
	t.stopSignals = make(chan struct{})
	t.signalsDone = make(chan struct{})
	go t.handleSignals(t.stopSignals, t.signalsDone)

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := t.now()

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keys are currently active this frame
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) < keyTimeout {
			currentlyActive[act] = true

			if !t.activeKeys[act] {
				slog.Debug("Key press", "key", fmt.Sprintf("%X", act.Key()))
				events = append(events, backend.InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			delete(t.keyStates, act)
		}
	}

	// Check for released keys (were active last frame but not this frame)
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "key", fmt.Sprintf("%X", act.Key()))
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	// Add emulator control events (pause, debug, etc)
	t.queueMu.Lock()
	events = append(events, t.eventQueue...)
	t.eventQueue = nil
	t.queueMu.Unlock()

	if !t.running {
		return events, nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.stopSignals == nil {
		return nil
	}
	close(t.stopSignals)
	<-t.signalsDone
	t.stopSignals = nil
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	case action.EmulatorQuit:
		t.running = false
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

// ShowDebug reports whether the debug panel is visible.
func (t *Backend) ShowDebug() bool {
	return t.config.ShowDebug
}

// LogLevel returns the current log panel filter.
func (t *Backend) LogLevel() slog.Level {
	return t.logLevel.Level()
}

func (t *Backend) queueEvent(evt backend.InputEvent) {
	t.queueMu.Lock()
	t.eventQueue = append(t.eventQueue, evt)
	t.queueMu.Unlock()
}

// handleSignals owns only its arguments; Cleanup waits on done before
// touching the backend again.
func (t *Backend) handleSignals(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer signal.Stop(signals)

	select {
	case <-signals:
		// Signal quit via event queue
		t.queueEvent(backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	case <-stop:
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, exists := keyMapping[ev.Key()]
	if !exists && ev.Key() == tcell.KeyRune {
		act, exists = runeMapping[unicode.ToLower(ev.Rune())]
	}
	if !exists {
		return
	}

	if act.IsKeypad() {
		t.keyStates[act] = now
		return
	}
	t.queueEvent(backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings, every
// single character key name maps to its rune
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	if act, ok := input.GetDefaultMapping("Space"); ok {
		mapping[' '] = act
	}

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

var logLevels = []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug}

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel.Level()
	idx := 0
	for i, level := range logLevels {
		if level == oldLevel {
			idx = i
		}
	}
	idx += direction
	if idx < 0 || idx >= len(logLevels) {
		return
	}
	t.logLevel.Set(logLevels[idx])
	slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel.Level())
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	t.screen.Clear()

	dividerX := width + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawScreen(frame)

	logsY := 1
	if t.config.ShowDebug && t.debugProvider != nil {
		if data := t.debugProvider.ExtractDebugData(); data != nil {
			t.drawRegisters(data, rightPanelX, 1, rightPanelWidth, termHeight)
			t.drawDisassembly(data, rightPanelX, registerHeight+2, rightPanelWidth, termHeight)
		}
		logsY = registerHeight + disasmHeight + 3
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= maxWidth {
			return
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = fmt.Sprintf(" %s ", t.config.Title)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	if t.sound != nil && t.sound.SoundActive() {
		beep := " ♪ BEEP "
		t.drawText(dividerX-len([]rune(beep)), 0, len(beep), beep, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}

	panelX := dividerX + 2
	panelWidth := termWidth - panelX
	if t.config.ShowDebug {
		t.drawText(panelX, 0, panelWidth, " Registers ", titleStyle)
		t.drawText(panelX, registerHeight+1, panelWidth, " Disassembly ", titleStyle)
		t.drawText(panelX, registerHeight+disasmHeight+2, panelWidth, fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level()), titleStyle)
	}

	helpText := " 1234/QWER/ASDF/ZXCV=keypad SPACE=pause N=step O=frame F5=reset F9=snapshot F10=debug ESC=quit "
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.GetPixel(uint(x), uint(y))
			bottom := frame.GetPixel(uint(x), uint(y+1))
			t.screen.SetContent(x, y/2+1, render.GetHalfBlockChar(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, panelWidth, termHeight int) {
	cpu := data.CPU
	if cpu == nil || panelWidth <= 0 {
		return
	}

	lines := []string{
		fmt.Sprintf("Status: %s", strings.ToUpper(data.DebuggerState.String())),
		fmt.Sprintf("PC: 0x%04X  I: 0x%04X", cpu.PC, cpu.I),
	}
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			reg := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", reg, cpu.V[reg])
		}
		lines = append(lines, strings.TrimSpace(sb.String()))
	}
	lines = append(lines,
		fmt.Sprintf("DT: %02X  ST: %02X  SP: %d", cpu.Delay, cpu.Sound, len(cpu.Stack)),
		fmt.Sprintf("Stack: %s", formatStack(cpu.Stack)),
		fmt.Sprintf("Keys: %s", formatKeys(data.Keys)),
		fmt.Sprintf("Cycles: %d", cpu.Cycles),
		fmt.Sprintf("Quirks: %s", data.Quirks),
		fmt.Sprintf("ROM: %s %016x", data.ROMName, data.ROMHash),
	)

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		y := startY + i
		if y >= termHeight-1 || i >= registerHeight {
			break
		}
		t.drawText(startX, y, panelWidth, line, style)
	}
}

func formatStack(stack []uint16) string {
	if len(stack) == 0 {
		return "-"
	}
	parts := make([]string, len(stack))
	for i, addr := range stack {
		parts[i] = fmt.Sprintf("%04X", addr)
	}
	return strings.Join(parts, " ")
}

func formatKeys(keys [16]bool) string {
	var sb strings.Builder
	for i, held := range keys {
		if held {
			fmt.Fprintf(&sb, "%X", i)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, panelWidth, termHeight int) {
	if data.CPU == nil || data.Memory == nil || panelWidth <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		y := startY + i
		if y >= termHeight-1 {
			break
		}
		text := fmt.Sprintf("  0x%04X: %s", line.Address, line.Instruction)
		useStyle := style
		if line.IsCurrent {
			text = "→" + text[1:]
			useStyle = currentStyle
		}
		t.drawText(startX, y, panelWidth, text, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, panelWidth, termHeight int) {
	availableHeight := termHeight - startY - 1
	if panelWidth <= 0 || availableHeight <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, logEntry := range t.logBuffer.GetRecent(availableHeight) {
		style := infoStyle
		switch logEntry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		logText := render.FormatLogEntry(logEntry)
		if runes := []rune(logText); len(runes) > panelWidth && panelWidth > 3 {
			logText = string(runes[:panelWidth-3]) + "..."
		}
		t.drawText(startX, startY+i, panelWidth, logText, style)
	}
}
