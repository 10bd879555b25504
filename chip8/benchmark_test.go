package chip8

import (
	"testing"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/rom"
)

// Redraws a glyph forever, so every frame hits the sprite path.
var drawLoop = []uint16{
	0xA050, // LD I, glyph 0
	0xD015, // DRW V0, V1, 5
	0x7001, // ADD V0, 1
	0x7101, // ADD V1, 1
	0x1202, // JP 0x202
}

func BenchmarkVMHeadless(b *testing.B) {
	benchmarks := []struct {
		name   string
		cpuHz  int
		frames int
	}{
		{"700hz_100", 700, 100},
		{"700hz_1000", 700, 1000},
		{"6000hz_100", 6000, 100},
	}

	for _, bc := range benchmarks {
		b.Run(bc.name, func(b *testing.B) {
			image, err := rom.FromBytes("bench.ch8", "raw", program(drawLoop...))
			if err != nil {
				b.Fatalf("Failed to build rom: %v", err)
			}
			vm := New(Config{CPUHz: bc.cpuHz, Seed: 1})
			if err := vm.LoadROM(image); err != nil {
				b.Fatalf("Failed to load rom: %v", err)
			}

			// Use large frame count to avoid the quit event
			hBackend := headless.New(bc.frames*(b.N+1), headless.SnapshotConfig{})
			if err := hBackend.Init(backend.BackendConfig{Title: "Benchmark"}); err != nil {
				b.Fatalf("Failed to initialize backend: %v", err)
			}
			defer hBackend.Cleanup()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				for frameCount := 0; frameCount < bc.frames; frameCount++ {
					if err := vm.RunUntilFrame(); err != nil {
						b.Fatalf("Frame failed: %v", err)
					}
					if _, err := hBackend.Update(vm.GetCurrentFrame()); err != nil {
						b.Fatalf("Backend update failed: %v", err)
					}
				}
			}
		})
	}
}
