package hardware

import (
	"errors"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Color
		wantErr bool
	}{
		{name: "with hash", input: "#FF8800", want: Color{0xFF, 0x88, 0x00}},
		{name: "without hash", input: "00bfff", want: Color{0x00, 0xBF, 0xFF}},
		{name: "black", input: "#000000", want: Color{}},
		{name: "white", input: "FFFFFF", want: Color{0xFF, 0xFF, 0xFF}},
		{name: "too short", input: "#FFF", wantErr: true},
		{name: "too long", input: "#FF8800FF", wantErr: true},
		{name: "not hex", input: "#GGHHII", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := Color{0x12, 0xAB, 0xEF}
	parsed, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != c {
		t.Errorf("round trip changed color: %v -> %v", c, parsed)
	}
}

func TestNewColorClamps(t *testing.T) {
	c := NewColor(-20, 300, 128)
	want := Color{0, 255, 128}
	if c != want {
		t.Errorf("expected %v, got %v", want, c)
	}
}

func TestPacked(t *testing.T) {
	c := Color{0xAB, 0xCD, 0xEF}
	if got := c.Packed(); got != 0xABCDEF {
		t.Errorf("expected 0xABCDEF, got 0x%06X", got)
	}
	if got := (Color{}).Packed(); got != 0 {
		t.Errorf("expected 0 for black, got 0x%06X", got)
	}
}

func TestWithBrightness(t *testing.T) {
	c := Color{200, 100, 50}

	half := c.WithBrightness(0.5)
	want := Color{100, 50, 25}
	if half != want {
		t.Errorf("expected %v, got %v", want, half)
	}

	if got := c.WithBrightness(0); got != (Color{}) {
		t.Errorf("factor 0 should give black, got %v", got)
	}
	if got := c.WithBrightness(2.0); got != c {
		t.Errorf("factor above 1 should clamp to identity, got %v", got)
	}
	if got := c.WithBrightness(-1.0); got != (Color{}) {
		t.Errorf("negative factor should clamp to black, got %v", got)
	}
}

func TestInterpolate(t *testing.T) {
	a := Color{0, 0, 0}
	b := Color{200, 100, 50}

	if got := a.Interpolate(b, 0); got != a {
		t.Errorf("t=0 should yield start, got %v", got)
	}
	if got := a.Interpolate(b, 1); got != b {
		t.Errorf("t=1 should yield end, got %v", got)
	}

	mid := a.Interpolate(b, 0.5)
	want := Color{100, 50, 25}
	if mid != want {
		t.Errorf("expected %v at midpoint, got %v", want, mid)
	}

	// t outside [0, 1] clamps
	if got := a.Interpolate(b, 2.0); got != b {
		t.Errorf("t>1 should clamp to end, got %v", got)
	}
}

func TestFromHSVWraps(t *testing.T) {
	// Hue wraps modulo 1.0; the same angle must give the same color.
	base := FromHSV(0.25, 1, 1)
	wrapped := FromHSV(1.25, 1, 1)
	if base != wrapped {
		t.Errorf("hue 0.25 and 1.25 should match: %v vs %v", base, wrapped)
	}

	negative := FromHSV(-0.75, 1, 1)
	if base != negative {
		t.Errorf("hue -0.75 should wrap to 0.25: %v vs %v", base, negative)
	}
}

func TestFromHSVPrimaries(t *testing.T) {
	tests := []struct {
		hue  float64
		want Color
	}{
		{0, Color{255, 0, 0}},
		{1.0 / 3.0, Color{0, 255, 0}},
		{2.0 / 3.0, Color{0, 0, 255}},
	}

	for _, tt := range tests {
		got := FromHSV(tt.hue, 1, 1)
		if got != tt.want {
			t.Errorf("hue %.3f: expected %v, got %v", tt.hue, tt.want, got)
		}
	}
}
