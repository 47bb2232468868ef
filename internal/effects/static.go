package effects

import (
	"context"

	"github.com/smazurov/kbglow/internal/hardware"
)

// Static appliers: one push, no session, no goroutine. The boolean is
// the hardware's acceptance.

// StaticColor sets every zone to one color.
func StaticColor(ctx context.Context, hw Hardware, p Params) bool {
	return hw.SetAllColor(ctx, p.Color)
}

// StaticZoneColors sets each zone to its own color. Rejects a slice
// of the wrong length.
func StaticZoneColors(ctx context.Context, hw Hardware, p Params) bool {
	if len(p.ZoneColors) != hardware.NumZones {
		return false
	}
	return hw.SetZoneColors(ctx, p.ZoneColors)
}

// StaticRainbow spreads the hue circle evenly across the zones.
func StaticRainbow(ctx context.Context, hw Hardware, p Params) bool {
	colors := make([]hardware.Color, hardware.NumZones)
	for zone := range colors {
		hue := float64(zone) / float64(hardware.NumZones)
		colors[zone] = hardware.FromHSV(hue, 1, 1)
	}
	return hw.SetZoneColors(ctx, colors)
}

// StaticGradient lerps linearly between the start and end colors
// across the zones.
func StaticGradient(ctx context.Context, hw Hardware, p Params) bool {
	colors := make([]hardware.Color, hardware.NumZones)
	for zone := range colors {
		ratio := 0.0
		if hardware.NumZones > 1 {
			ratio = float64(zone) / float64(hardware.NumZones-1)
		}
		colors[zone] = p.StartColor.Interpolate(p.EndColor, ratio)
	}
	return hw.SetZoneColors(ctx, colors)
}
