package memory

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Key identifies one of the 16 keypad keys, 0x0-0xF.
type Key uint8

// Keypad holds the logical pressed state of the hex keypad.
// The host writes it, the interpreter only reads.
type Keypad struct {
	pressed [KeyCount]bool
}

// NewKeypad creates a keypad with every key released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks key as held. Values above 0xF are ignored.
func (k *Keypad) Press(key Key) {
	if key < KeyCount {
		k.pressed[key] = true
	}
}

// Release marks key as not held.
func (k *Keypad) Release(key Key) {
	if key < KeyCount {
		k.pressed[key] = false
	}
}

// ReleaseAll releases every key.
func (k *Keypad) ReleaseAll() {
	k.pressed = [KeyCount]bool{}
}

// IsPressed reports whether key is currently held. Keys above 0xF are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	return key < KeyCount && k.pressed[key]
}

// FirstPressed returns the lowest-indexed held key, if any.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, p := range k.pressed {
		if p {
			return uint8(i), true
		}
	}
	return 0, false
}

// State returns a copy of all key states, for debug views.
func (k *Keypad) State() [KeyCount]bool {
	return k.pressed
}
