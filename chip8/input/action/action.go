package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 hex keypad, in key order so Key0+n is key n
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorReset
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// IsKeypad reports whether a maps to one of the 16 keypad keys.
func (a Action) IsKeypad() bool {
	return a >= Key0 && a <= KeyF
}

// Key returns the keypad index for a keypad action.
func (a Action) Key() uint8 {
	return uint8(a - Key0)
}

// ForKey returns the keypad action for key index k (low nibble).
func ForKey(k uint8) Action {
	return Key0 + Action(k&0x0F)
}
