package memory

const (
	// FontStart is the address of the first glyph of the built-in font.
	FontStart uint16 = 0x050
	// GlyphSize is the number of bytes (rows) per glyph.
	GlyphSize = 5
)

// font holds the hex digits 0-F, 4 pixels wide, stored in the high nibble of each row.
var font = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontGlyphAddress returns the address of the glyph for the low nibble of digit.
func FontGlyphAddress(digit uint8) uint16 {
	return FontStart + uint16(digit&0x0F)*GlyphSize
}

// Glyph returns a copy of the rows for the low nibble of digit.
func Glyph(digit uint8) []byte {
	start := int(digit&0x0F) * GlyphSize
	out := make([]byte, GlyphSize)
	copy(out, font[start:start+GlyphSize])
	return out
}
