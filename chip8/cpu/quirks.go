package cpu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valerio/go-chip8/chip8/video"
)

// Quirks selects between the behaviours that differ across CHIP-8 interpreters.
// The zero value is the default profile.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX instead of shifting VX in place.
	ShiftUsesVY bool
	// JumpUsesVX makes BNNN jump to NNN + VX instead of NNN + V0.
	JumpUsesVX bool
	// SpriteEdge decides whether sprites clip or wrap at the screen edges.
	SpriteEdge video.SpriteEdge
	// SpriteOrigin decides how DXYN reduces its starting coordinate.
	SpriteOrigin video.OriginWrap
}

const DefaultProfile = "chip8"

var profiles = map[string]Quirks{
	"chip8":  {},
	"cosmac": {ShiftUsesVY: true},
	"schip":  {JumpUsesVX: true},
}

// QuirksByName returns the named quirk profile.
func QuirksByName(name string) (Quirks, error) {
	q, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Quirks{}, fmt.Errorf("unknown quirks profile %q (available: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return q, nil
}

// ProfileNames lists the available profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (q Quirks) String() string {
	return fmt.Sprintf("shift-vy=%t jump-vx=%t sprites=%s origin=%s", q.ShiftUsesVY, q.JumpUsesVX, q.SpriteEdge, q.SpriteOrigin)
}
