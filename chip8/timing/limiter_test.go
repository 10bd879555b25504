package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCyclesPerFrame(t *testing.T) {
	assert.Equal(t, 11, CyclesPerFrame(DefaultCPUHz))
	assert.Equal(t, 1, CyclesPerFrame(60))
	assert.Equal(t, 1, CyclesPerFrame(10))
	assert.Equal(t, 1, CyclesPerFrame(0))
	assert.Equal(t, 16, CyclesPerFrame(1000))
}

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, time.Second/60, FrameDuration())
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	l.Reset()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAdaptiveLimiter_Paces(t *testing.T) {
	l := NewAdaptiveLimiter()
	start := time.Now()
	for i := 0; i < 4; i++ {
		l.WaitForNextFrame()
	}
	// first frame is immediate, the next three wait a frame each
	assert.GreaterOrEqual(t, time.Since(start), 3*FrameDuration()-time.Millisecond)
}

func TestTickerLimiter(t *testing.T) {
	l := NewTickerLimiter()
	defer l.Stop()

	start := time.Now()
	l.WaitForNextFrame()
	l.Reset()
	assert.GreaterOrEqual(t, time.Since(start), FrameDuration()/2)
}
