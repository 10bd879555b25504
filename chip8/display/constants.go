package display

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// FullAlpha is the alpha value for fully opaque pixels
	FullAlpha = 255
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for CHIP-8 pixels
	DefaultPixelScale = 10
	// DefaultWindowWidth is the default window width (CHIP-8 width * scale)
	DefaultWindowWidth = 64 * DefaultPixelScale // 640
	// DefaultWindowHeight is the default window height (CHIP-8 height * scale)
	DefaultWindowHeight = 32 * DefaultPixelScale // 320
)

// Color mapping constants. The display is monochrome, lit pixels use the
// foreground color.
const (
	ForegroundR = 0xE0
	ForegroundG = 0xF8
	ForegroundB = 0xD0
	BackgroundR = 0x08
	BackgroundG = 0x18
	BackgroundB = 0x20
)

// PixelRGBA returns the color of a lit or unlit pixel.
func PixelRGBA(on bool) (r, g, b, a uint8) {
	if on {
		return ForegroundR, ForegroundG, ForegroundB, FullAlpha
	}
	return BackgroundR, BackgroundG, BackgroundB, FullAlpha
}
