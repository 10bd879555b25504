package cpu

// TimerFrequency is the rate, in Hz, at which the host must call Timers.Tick.
const TimerFrequency = 60

// Timers holds the delay and sound countdown registers. They decrement at a
// fixed 60Hz, independently of how many instructions run in between.
type Timers struct {
	delay uint8
	sound uint8
}

// Delay returns the delay timer.
func (t *Timers) Delay() uint8 {
	return t.delay
}

// SetDelay sets the delay timer.
func (t *Timers) SetDelay(value uint8) {
	t.delay = value
}

// Sound returns the sound timer.
func (t *Timers) Sound() uint8 {
	return t.sound
}

// SetSound sets the sound timer.
func (t *Timers) SetSound(value uint8) {
	t.sound = value
}

// SoundActive reports whether the host should be beeping.
func (t *Timers) SoundActive() bool {
	return t.sound > 0
}

// Tick decrements both timers, stopping at zero.
func (t *Timers) Tick() {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}

// Reset zeroes both timers.
func (t *Timers) Reset() {
	t.delay = 0
	t.sound = 0
}
