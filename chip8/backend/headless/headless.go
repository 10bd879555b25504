package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// progressEvery is one emulated second at the default frame rate.
const progressEvery = 60

var quitEvent = backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press}

// Backend runs the VM for a fixed number of frames without any display,
// optionally writing PNG snapshots along the way.
type Backend struct {
	maxFrames int
	snapshots SnapshotConfig

	frameCount   int
	frameChanges int
	lastChecksum uint64
	savedPaths   []string
}

// SnapshotConfig controls which frames are written to disk as PNGs.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // every Interval-th frame, plus the last one
	Directory string
	ROMName   string // filename prefix
}

func New(maxFrames int, snapshots SnapshotConfig) *Backend {
	return &Backend{maxFrames: maxFrames, snapshots: snapshots}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless mode requires a positive frame count, got %d", h.maxFrames)
	}

	level := slog.LevelInfo
	if config.ShowDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	attrs := []any{"frames", h.maxFrames}
	if h.snapshots.Enabled {
		attrs = append(attrs, "snapshot_every", h.snapshots.Interval, "snapshot_dir", h.snapshots.Directory)
	}
	slog.Info("Headless run starting", attrs...)
	return nil
}

// Update counts the frame, snapshots it when due and asks to quit once the
// frame budget is spent.
func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++
	h.trackChanges(frame)

	last := h.frameCount >= h.maxFrames
	if h.snapshotDue(last) {
		h.saveSnapshot(frame)
	}

	if !last {
		if h.frameCount%progressEvery == 0 {
			slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
		}
		return nil, nil
	}

	slog.Info("Headless run finished",
		"frames", h.frameCount,
		"frame_changes", h.frameChanges,
		"snapshots", len(h.savedPaths))
	return []backend.InputEvent{quitEvent}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// FrameCount returns the number of frames processed so far.
func (h *Backend) FrameCount() int {
	return h.frameCount
}

// FrameChanges returns how many processed frames differed from the one before.
func (h *Backend) FrameChanges() int {
	return h.frameChanges
}

// SavedSnapshots returns the paths of the PNG files written so far.
func (h *Backend) SavedSnapshots() []string {
	return h.savedPaths
}

func (h *Backend) trackChanges(frame *video.FrameBuffer) {
	checksum := frame.Checksum()
	if checksum == h.lastChecksum {
		return
	}
	h.lastChecksum = checksum
	h.frameChanges++
	slog.Debug("Frame changed", "frame", h.frameCount, "checksum", fmt.Sprintf("%016x", checksum))
}

func (h *Backend) snapshotDue(last bool) bool {
	if !h.snapshots.Enabled {
		return false
	}
	return last || h.frameCount%h.snapshots.Interval == 0
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_frame_%d", h.snapshots.ROMName, h.frameCount)
	path, err := debug.SaveFramePNGToDir(frame, name, h.snapshots.Directory)
	if err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.savedPaths = append(h.savedPaths, path)
}

// CreateSnapshotConfig builds a SnapshotConfig from CLI flags. A zero
// interval disables snapshots; an empty directory means a fresh temp dir.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	if interval <= 0 {
		return SnapshotConfig{Interval: interval}, nil
	}

	dir, err := snapshotDir(directory)
	if err != nil {
		return SnapshotConfig{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	base := filepath.Base(romPath)
	return SnapshotConfig{
		Enabled:   true,
		Interval:  interval,
		Directory: dir,
		ROMName:   strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

func snapshotDir(directory string) (string, error) {
	if directory == "" {
		return os.MkdirTemp("", "chip8-snapshots-*")
	}
	return directory, os.MkdirAll(directory, 0o755)
}
