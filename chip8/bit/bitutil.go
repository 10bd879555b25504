package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// CheckedAdd adds two 8 bit unsigned values and detects if an overflow happened.
func CheckedAdd(a, b uint8) (result uint8, overflow bool) {
	sum := uint16(a) + uint16(b)
	return uint8(sum), sum > 0xFF
}

// CheckedSub subtracts two 8 bit unsigned values and detects if a borrow happened.
func CheckedSub(a, b uint8) (result uint8, borrow bool) {
	return a - b, b > a
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// IsSetMSB checks bits counting from the most significant one, so index 0 is bit 7.
// Sprite rows are laid out this way, leftmost pixel first.
func IsSetMSB(index, value uint8) bool {
	if index > 7 {
		return false
	}
	return value&(0x80>>index) != 0
}

// Lsb returns the least significant bit of value, as 0 or 1.
func Lsb(value uint8) uint8 {
	return value & 1
}

// Msb returns the most significant bit of value, as 0 or 1.
func Msb(value uint8) uint8 {
	return value >> 7
}

// BoolToBit returns 1 for true, 0 otherwise.
func BoolToBit(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}

// BCD splits a byte into its decimal hundreds, tens and units digits.
func BCD(value uint8) (hundreds, tens, units uint8) {
	return value / 100, (value / 10) % 10, value % 10
}
