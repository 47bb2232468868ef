package hardware

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one 24-bit RGB value. The zero value is black.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// NewColor builds a Color from arbitrary ints, clamping each channel
// to [0, 255]. Out-of-range input is never an error.
func NewColor(r, g, b int) Color {
	return Color{clampChannel(r), clampChannel(g), clampChannel(b)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// FromHSV converts hue/saturation/value to a Color. Hue is normalized
// [0, 1) and wraps; saturation and value are [0, 1].
func FromHSV(h, s, v float64) Color {
	h = math.Mod(h, 1.0)
	if h < 0 {
		h += 1.0
	}
	r, g, b := colorful.Hsv(h*360.0, s, v).Clamped().RGB255()
	return Color{r, g, b}
}

// HSV returns the hue (normalized [0, 1)), saturation and value of the color.
func (c Color) HSV() (h, s, v float64) {
	h, s, v = colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsv()
	return h / 360.0, s, v
}

// WithBrightness scales every channel by factor, clamped to [0, 1].
func (c Color) WithBrightness(factor float64) Color {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return Color{
		uint8(float64(c.R) * factor),
		uint8(float64(c.G) * factor),
		uint8(float64(c.B) * factor),
	}
}

// Interpolate returns the linear per-channel blend between c and other.
// t=0 yields c, t=1 yields other.
func (c Color) Interpolate(other Color, t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Color{
		uint8(float64(c.R)*(1-t) + float64(other.R)*t),
		uint8(float64(c.G)*(1-t) + float64(other.G)*t),
		uint8(float64(c.B)*(1-t) + float64(other.B)*t),
	}
}

// Packed returns the color as a 24-bit 0xRRGGBB value, the format the
// ectool rgbkbd subcommand expects.
func (c Color) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex returns the color as an uppercase #RRGGBB string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses "#RRGGBB" or "RRGGBB" into a Color.
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: hex color must be 6 digits, got %q", ErrValidation, s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("%w: invalid hex color %q", ErrValidation, s)
	}
	return Color{r, g, b}, nil
}
