package effects

import "context"

// RunFunc is a dynamic effect loop; it returns when its context is
// cancelled or the effect aborts itself.
type RunFunc func(ctx context.Context, hw Hardware, p Params)

// ApplyFunc is a one-shot static applier.
type ApplyFunc func(ctx context.Context, hw Hardware, p Params) bool

// Descriptor describes one registry entry. Exactly one of Run and
// Apply is set.
type Descriptor struct {
	Name            string
	Run             RunFunc
	Apply           ApplyFunc
	NeedsColor      bool
	SupportsRainbow bool
}

// registry is ordered; Names() feeds the API listing in this order.
var registry = []Descriptor{
	{Name: "breathing", Run: Breathing, NeedsColor: true, SupportsRainbow: true},
	{Name: "color_cycle", Run: ColorCycle},
	{Name: "wave", Run: Wave, NeedsColor: true, SupportsRainbow: true},
	{Name: "rainbow_wave", Run: RainbowWave},
	{Name: "pulse", Run: Pulse, NeedsColor: true, SupportsRainbow: true},
	{Name: "zone_chase", Run: ZoneChase, NeedsColor: true, SupportsRainbow: true},
	{Name: "starlight", Run: Starlight, NeedsColor: true, SupportsRainbow: true},
	{Name: "raindrop", Run: Raindrop},
	{Name: "scanner", Run: Scanner, NeedsColor: true, SupportsRainbow: true},
	{Name: "strobe", Run: Strobe, NeedsColor: true, SupportsRainbow: true},
	{Name: "ripple", Run: Ripple, NeedsColor: true, SupportsRainbow: true},
	{Name: "rainbow_breathing", Run: RainbowBreathing},
	{Name: "rainbow_zones_cycle", Run: RainbowZonesCycle},
	{Name: "static_color", Apply: StaticColor, NeedsColor: true},
	{Name: "static_zones", Apply: StaticZoneColors},
	{Name: "static_rainbow", Apply: StaticRainbow},
	{Name: "static_gradient", Apply: StaticGradient},
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names lists every registered effect in registry order.
func Names() []string {
	out := make([]string, len(registry))
	for i, d := range registry {
		out[i] = d.Name
	}
	return out
}

// Descriptors returns a copy of the registry for capability listings.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}
