package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/backend/web"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/disasm"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/rom"
	"github.com/valerio/go-chip8/chip8/statsview"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

const defaultWebAddr = "localhost:8080"

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file, may be a .zip, .7z, .gz, .xz, .zst, .lz4 or .br archive",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Frontend to run: terminal, headless, web or sdl2",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "cpu-hz",
			Usage: "Instructions executed per second",
			Value: timing.DefaultCPUHz,
		},
		cli.StringFlag{
			Name:  "quirks",
			Usage: "Quirk profile: " + strings.Join(cpu.ProfileNames(), ", "),
			Value: cpu.DefaultProfile,
		},
		cli.BoolFlag{
			Name:  "shift-vy",
			Usage: "8XY6/8XYE shift VY into VX",
		},
		cli.BoolFlag{
			Name:  "jump-vx",
			Usage: "BNNN jumps to NNN + VX, X being the high nibble of NNN",
		},
		cli.BoolFlag{
			Name:  "wrap-sprites",
			Usage: "Wrap sprites around the screen edges instead of clipping them",
		},
		cli.BoolFlag{
			Name:  "wrap-origin",
			Usage: "Reduce the DXYN start row mod 32 instead of mod 64",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for RND, 0 picks a random one",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "web-addr",
			Usage: "Listen address of the web backend",
			Value: defaultWebAddr,
		},
		cli.BoolFlag{
			Name:  "statsview",
			Usage: "Serve runtime statistics (requires the statsview build tag)",
		},
		cli.StringFlag{
			Name:  "statsview-addr",
			Usage: "Listen address of the statistics server",
			Value: statsview.DefaultAddress,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the debug panel and trace instructions",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "Print the disassembly of a ROM",
			ArgsUsage: "<ROM file>",
			Action:    runDisasm,
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	level, err := parseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	quirks, err := quirksFromFlags(c.String("quirks"), c.Bool("shift-vy"), c.Bool("jump-vx"), c.Bool("wrap-sprites"), c.Bool("wrap-origin"))
	if err != nil {
		return err
	}

	vm, err := chip8.NewWithFile(romPath, chip8.Config{
		CPUHz:  c.Int("cpu-hz"),
		Quirks: quirks,
		Seed:   c.Uint64("seed"),
	})
	if err != nil {
		return err
	}

	if c.Bool("statsview") {
		if err := statsview.Launch(c.String("statsview-addr")); err != nil {
			slog.Warn("Stats server not started", "error", err)
		}
	}

	b, limiter, err := newBackend(c, romPath)
	if err != nil {
		return err
	}

	config := backend.BackendConfig{
		Title:         "CHIP-8 - " + vm.ROM().Name,
		Scale:         display.DefaultPixelScale,
		ShowDebug:     c.Bool("debug"),
		DebugProvider: vm,
		Sound:         vm,
	}
	if err := b.Init(config); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}()
	if stopper, ok := limiter.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	slog.Info("Starting emulation", "backend", c.String("backend"), "quirks", quirks.String(), "cpu_hz", c.Int("cpu-hz"))
	return vm.Run(b, limiter)
}

func newBackend(c *cli.Context, romPath string) (backend.Backend, timing.Limiter, error) {
	switch name := c.String("backend"); name {
	case "terminal":
		return terminal.New(), timing.NewAdaptiveLimiter(), nil
	case "headless":
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshots), timing.NewNoOpLimiter(), nil
	case "web":
		return web.New(c.String("web-addr")), timing.NewTickerLimiter(), nil
	case "sdl2":
		return sdl2.New(), timing.NewAdaptiveLimiter(), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runDisasm(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "disasm")
		return errors.New("no ROM path provided")
	}

	image, err := rom.Load(c.Args().Get(0))
	if err != nil {
		return err
	}

	for _, line := range disasm.DisassembleROM(image.Data, memory.ProgramStart) {
		fmt.Fprintln(c.App.Writer, line.String())
	}
	return nil
}

// quirksFromFlags starts from a named profile and turns on any quirk
// requested individually.
func quirksFromFlags(profile string, shiftVY, jumpVX, wrap, wrapOrigin bool) (cpu.Quirks, error) {
	quirks, err := cpu.QuirksByName(profile)
	if err != nil {
		return quirks, err
	}
	if shiftVY {
		quirks.ShiftUsesVY = true
	}
	if jumpVX {
		quirks.JumpUsesVX = true
	}
	if wrap {
		quirks.SpriteEdge = video.EdgeWrap
	}
	if wrapOrigin {
		quirks.SpriteOrigin = video.OriginModScreen
	}
	return quirks, nil
}

func parseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
