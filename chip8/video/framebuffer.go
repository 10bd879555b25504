package video

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/valerio/go-chip8/chip8/bit"
)

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
	// SpriteWidth is the number of pixels in one sprite row (one byte).
	SpriteWidth = 8
	// MaxSpriteHeight is the largest row count a draw instruction can encode.
	MaxSpriteHeight = 15
)

// ErrOutOfBounds is returned for coordinates outside the 64x32 grid.
var ErrOutOfBounds = errors.New("pixel out of bounds")

// SpriteEdge selects what happens to sprite pixels that cross the screen edge.
type SpriteEdge uint8

const (
	// EdgeClip drops pixels past the right/bottom edge. Only the starting
	// coordinate is wrapped, see OriginWrap.
	EdgeClip SpriteEdge = iota
	// EdgeWrap wraps every pixel around to the opposite edge.
	EdgeWrap
)

func (e SpriteEdge) String() string {
	switch e {
	case EdgeClip:
		return "clip"
	case EdgeWrap:
		return "wrap"
	default:
		return fmt.Sprintf("SpriteEdge(%d)", uint8(e))
	}
}

// OriginWrap selects the modulus applied to a sprite's starting coordinate.
type OriginWrap uint8

const (
	// OriginMod64 reduces both coordinates mod 64. A y origin of 32..63 lies
	// below the screen, so with EdgeClip nothing is drawn.
	OriginMod64 OriginWrap = iota
	// OriginModScreen reduces x mod 64 and y mod 32, so the origin always
	// lands on the grid.
	OriginModScreen
)

func (o OriginWrap) String() string {
	switch o {
	case OriginMod64:
		return "mod64"
	case OriginModScreen:
		return "screen"
	default:
		return fmt.Sprintf("OriginWrap(%d)", uint8(o))
	}
}

// FrameBuffer is the 64x32 monochrome display.
type FrameBuffer struct {
	pixels [FramebufferWidth * FramebufferHeight]bool
	edge   SpriteEdge
	origin OriginWrap
}

// NewFrameBuffer creates a cleared frame buffer that clips sprites at the edges.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// SetEdgePolicy changes how DrawSprite treats the screen edges.
func (fb *FrameBuffer) SetEdgePolicy(edge SpriteEdge) {
	fb.edge = edge
}

// EdgePolicy returns the current sprite edge policy.
func (fb *FrameBuffer) EdgePolicy() SpriteEdge {
	return fb.edge
}

// SetOriginWrap changes how DrawSprite reduces the starting coordinate.
func (fb *FrameBuffer) SetOriginWrap(origin OriginWrap) {
	fb.origin = origin
}

// OriginWrap returns the current origin wrap mode.
func (fb *FrameBuffer) OriginWrap() OriginWrap {
	return fb.origin
}

// Clear turns every pixel off.
func (fb *FrameBuffer) Clear() {
	fb.pixels = [FramebufferWidth * FramebufferHeight]bool{}
}

func checkBounds(x, y uint) error {
	if x >= FramebufferWidth || y >= FramebufferHeight {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	return nil
}

// IsOn reports whether the pixel at (x, y) is lit.
func (fb *FrameBuffer) IsOn(x, y uint) (bool, error) {
	if err := checkBounds(x, y); err != nil {
		return false, err
	}
	return fb.pixels[y*FramebufferWidth+x], nil
}

// Set forces the pixel at (x, y) to on.
func (fb *FrameBuffer) Set(x, y uint, on bool) error {
	if err := checkBounds(x, y); err != nil {
		return err
	}
	fb.pixels[y*FramebufferWidth+x] = on
	return nil
}

// GetPixel returns the pixel at (x, y) without bounds errors, out of range is off.
func (fb *FrameBuffer) GetPixel(x, y uint) bool {
	if x >= FramebufferWidth || y >= FramebufferHeight {
		return false
	}
	return fb.pixels[y*FramebufferWidth+x]
}

// DrawSprite XORs rows onto the screen at (x, y), one byte per row with the
// most significant bit leftmost. It returns true if any lit pixel was turned off.
func (fb *FrameBuffer) DrawSprite(x, y uint8, rows []byte) bool {
	if len(rows) > MaxSpriteHeight {
		rows = rows[:MaxSpriteHeight]
	}

	originX := uint(x) % FramebufferWidth
	originY := uint(y) % FramebufferWidth
	if fb.origin == OriginModScreen {
		originY = uint(y) % FramebufferHeight
	}
	collision := false

	for row, data := range rows {
		py := originY + uint(row)
		if py >= FramebufferHeight {
			if fb.edge == EdgeClip {
				break
			}
			py %= FramebufferHeight
		}

		for col := uint8(0); col < SpriteWidth; col++ {
			px := originX + uint(col)
			if px >= FramebufferWidth {
				if fb.edge == EdgeClip {
					break
				}
				px %= FramebufferWidth
			}

			if !bit.IsSetMSB(col, data) {
				continue
			}

			idx := py*FramebufferWidth + px
			if fb.pixels[idx] {
				collision = true
			}
			fb.pixels[idx] = !fb.pixels[idx]
		}
	}

	return collision
}

// ToSlice returns the pixels in row-major order. The slice is a copy.
func (fb *FrameBuffer) ToSlice() []bool {
	out := make([]bool, len(fb.pixels))
	copy(out, fb.pixels[:])
	return out
}

// Pack returns the frame as one bit per pixel, row-major, MSB first (256 bytes).
func (fb *FrameBuffer) Pack() []byte {
	out := make([]byte, len(fb.pixels)/8)
	for i, on := range fb.pixels {
		if on {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Checksum returns a hash of the pixel state. Two frames with equal pixels
// have equal checksums, backends use it to skip redundant redraws.
func (fb *FrameBuffer) Checksum() uint64 {
	return xxhash.Sum64(fb.Pack())
}

// CopyFrom overwrites this frame buffer's pixels with those of other.
func (fb *FrameBuffer) CopyFrom(other *FrameBuffer) {
	fb.pixels = other.pixels
}
