package timing

import "time"

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// Constants for CHIP-8 timing. The timers and the display share one 60Hz
// clock, the instruction rate is a host choice.
const (
	FrameRate    = 60
	DefaultCPUHz = 700
)

// CyclesPerFrame returns how many instructions run between two 60Hz ticks
// at the given instruction rate. Never less than one.
func CyclesPerFrame(cpuHz int) int {
	n := cpuHz / FrameRate
	if n < 1 {
		return 1
	}
	return n
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Second / FrameRate
}
