package effects

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/smazurov/kbglow/internal/hardware"
)

// Dynamic effects. Each runs until its context is cancelled or it
// accumulates maxPushFailures consecutive rejected pushes. The frame
// contract is the same everywhere: compute, push, account, wait,
// advance.

// Breathing dims every zone with a sine intensity that never drops
// below a 10% floor, so the keyboard stays faintly lit at the bottom
// of the breath.
func Breathing(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := frameDelay(p.Speed)
	failures := 0
	for ctx.Err() == nil {
		base := p.Color
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.002*float64(p.Speed), 1)
			base = hardware.FromHSV(st.hueOffset, 1, 1)
		}
		sine := (math.Sin(float64(st.frame)*0.05*float64(p.Speed)*0.2) + 1) / 2
		factor := 0.1 + 0.9*sine
		if !hw.SetAllColor(ctx, base.WithBrightness(factor)) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		if !wait(ctx, delay/2) {
			return
		}
		st.frame++
	}
}

// ColorCycle sweeps the whole keyboard through the hue circle.
func ColorCycle(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := scaledDelay(p.Speed, 2)
	failures := 0
	for ctx.Err() == nil {
		c := hardware.FromHSV(st.hueOffset, 1, 1)
		if !hw.SetAllColor(ctx, c) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		st.hueOffset = math.Mod(st.hueOffset+0.001*float64(p.Speed), 1)
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// waveWidthZones is the half-width of the travelling crest, in zones.
const waveWidthZones = 1.5

// Wave moves a cosine-squared crest across the zones, wrapping from a
// position off the left edge to off the right edge.
func Wave(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	st.wavePosition = -waveWidthZones
	delay := frameDelay(p.Speed)
	failures := 0
	n := float64(hardware.NumZones)
	normWidth := waveWidthZones / n
	for ctx.Err() == nil {
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.0005*float64(p.Speed), 1)
		}
		colors := make([]hardware.Color, hardware.NumZones)
		peak := st.wavePosition / n
		for zone := range colors {
			center := (float64(zone) + 0.5) / n
			distance := math.Abs(center - peak)
			intensity := 0.0
			if distance < normWidth {
				cos := math.Cos((distance / normWidth) * (math.Pi / 2))
				intensity = cos * cos
			}
			base := p.Color
			if p.Rainbow {
				hue := math.Mod(st.hueOffset+(float64(zone)/n)*0.2, 1)
				base = hardware.FromHSV(hue, 1, 1)
			}
			colors[zone] = base.WithBrightness(intensity)
		}
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		st.wavePosition += 0.05 * float64(p.Speed)
		if st.wavePosition > n+waveWidthZones {
			st.wavePosition = -waveWidthZones
		}
		if !wait(ctx, delay/2) {
			return
		}
		st.frame++
	}
}

// Pulse toggles the whole keyboard on and off in blocks of frames.
func Pulse(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := scaledDelay(p.Speed, 10)
	failures := 0
	framesPerState := 10 / p.Speed
	if framesPerState < 2 {
		framesPerState = 2
	}
	for ctx.Err() == nil {
		base := p.Color
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.005*float64(p.Speed), 1)
			base = hardware.FromHSV(st.hueOffset, 1, 1)
		}
		on := (st.frame/framesPerState)%2 == 0
		c := hardware.Color{}
		if on {
			c = base
		}
		if !hw.SetAllColor(ctx, c) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// ZoneChase lights one zone at a time, advancing left to right.
func ZoneChase(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := frameDelay(p.Speed)
	failures := 0
	for ctx.Err() == nil {
		base := p.Color
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.001*float64(p.Speed), 1)
			hue := math.Mod(st.hueOffset+float64(st.position)/float64(hardware.NumZones), 1)
			base = hardware.FromHSV(hue, 1, 1)
		}
		colors := make([]hardware.Color, hardware.NumZones)
		colors[st.position] = base
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		st.position = (st.position + 1) % hardware.NumZones
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// starlightMaxFailures is looser than the default: the random frame
// content makes transient failures harder to distinguish from real
// outage.
const starlightMaxFailures = 10

// Starlight twinkles random zones at random brightness each frame.
func Starlight(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	delay := frameDelay(p.Speed)
	failures := 0
	for ctx.Err() == nil {
		colors := make([]hardware.Color, hardware.NumZones)
		maxStars := hardware.NumZones/2 + p.Speed/3
		if maxStars < 1 {
			maxStars = 1
		}
		stars := 1 + rand.IntN(maxStars)
		for range stars {
			zone := rand.IntN(hardware.NumZones)
			brightness := 0.3 + rand.Float64()*0.7
			star := p.Color
			if p.Rainbow {
				star = hardware.FromHSV(rand.Float64(), 1, 1)
			}
			colors[zone] = star.WithBrightness(brightness)
		}
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= starlightMaxFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		if !wait(ctx, delay*2) {
			return
		}
	}
}

// raindropPalette is the default set of blues a drop starts from.
var raindropPalette = []hardware.Color{
	{R: 0x00, G: 0x77, B: 0xFF},
	{R: 0x00, G: 0xBF, B: 0xFF},
	{R: 0x87, G: 0xCE, B: 0xFA},
	{R: 0x46, G: 0x82, B: 0xB4},
}

// Raindrop fades the cached frame per channel each tick and splashes
// random palette drops onto random zones. Blue fades slowest, so
// drops trail toward blue as they die out.
func Raindrop(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	delay := scaledDelay(p.Speed, 1.5)
	failures := 0
	palette := raindropPalette
	if p.Color != (hardware.Color{}) {
		palette = []hardware.Color{
			p.Color.Interpolate(hardware.NewColor(0, 0, 50), 0.5),
			p.Color,
			p.Color.Interpolate(hardware.NewColor(200, 200, 255), 0.5),
		}
	}
	for ctx.Err() == nil {
		current := hw.ZoneColors()
		fade := 15 + p.Speed
		colors := make([]hardware.Color, hardware.NumZones)
		for i, c := range current {
			colors[i] = hardware.NewColor(
				int(c.R)-fade/3,
				int(c.G)-fade/2,
				int(c.B)-fade,
			)
		}
		if rand.Float64() < 0.05+0.05*float64(p.Speed) {
			zone := rand.IntN(hardware.NumZones)
			colors[zone] = palette[rand.IntN(len(palette))]
		}
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		if !wait(ctx, delay) {
			return
		}
	}
}

// Scanner bounces a bright head with a fading tail between the edges,
// Cylon style.
func Scanner(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	st := effectState{direction: 1}
	delay := scaledDelay(p.Speed, 1.5)
	failures := 0
	tail := hardware.NumZones/3 - 1
	if tail < 0 {
		tail = 0
	}
	for ctx.Err() == nil {
		base := p.Color
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.002*float64(p.Speed), 1)
			base = hardware.FromHSV(st.hueOffset, 1, 1)
		}
		colors := make([]hardware.Color, hardware.NumZones)
		for i := 0; i <= tail; i++ {
			pos := st.position - i*st.direction
			if pos >= 0 && pos < hardware.NumZones {
				brightness := 1.0 - float64(i)/float64(tail+2)
				colors[pos] = base.WithBrightness(brightness)
			}
		}
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		st.position += st.direction
		if st.position >= hardware.NumZones {
			st.position = hardware.NumZones - 1
			st.direction = -1
		} else if st.position < 0 {
			st.position = 0
			st.direction = 1
		}
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// Strobe toggles the whole keyboard between the color and black every
// frame.
func Strobe(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := scaledDelay(p.Speed, 5)
	failures := 0
	on := true
	for ctx.Err() == nil {
		base := p.Color
		if p.Rainbow {
			st.hueOffset = math.Mod(st.hueOffset+0.02*float64(p.Speed), 1)
			base = hardware.FromHSV(st.hueOffset, 1, 1)
		}
		c := hardware.Color{}
		if on {
			c = base
		}
		if !hw.SetAllColor(ctx, c) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		on = !on
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// Ripple spawns expanding rings at random zones that blend additively
// where they overlap and decay until they vanish.
func Ripple(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := scaledDelay(p.Speed, 2)
	failures := 0
	const rippleWidth = 1.0
	baseHue, _, _ := p.Color.HSV()
	for ctx.Err() == nil {
		colors := make([]hardware.Color, hardware.NumZones)
		if rand.Float64() < 0.01+0.02*float64(p.Speed) {
			hue := baseHue
			if p.Rainbow {
				hue = rand.Float64()
			}
			st.ripples = append(st.ripples, rippleSource{
				center:    rand.IntN(hardware.NumZones),
				maxRadius: float64(hardware.NumZones) * 0.75,
				hue:       hue,
				intensity: 1.0,
			})
		}
		alive := st.ripples[:0]
		for _, rip := range st.ripples {
			for zone := range colors {
				distance := math.Abs(float64(zone - rip.center))
				if distance <= rip.radius-rippleWidth || distance >= rip.radius+rippleWidth {
					continue
				}
				fromPeak := math.Abs(distance - rip.radius)
				falloff := math.Max(0, 1.0-fromPeak/rippleWidth)
				brightness := rip.intensity * falloff * falloff
				base := p.Color
				if p.Rainbow {
					base = hardware.FromHSV(rip.hue, 1, 1)
				}
				eff := base.WithBrightness(brightness)
				colors[zone] = hardware.NewColor(
					int(colors[zone].R)+int(eff.R),
					int(colors[zone].G)+int(eff.G),
					int(colors[zone].B)+int(eff.B),
				)
			}
			rip.radius += 0.1 * float64(p.Speed)
			rip.intensity *= 0.96 - float64(p.Speed)*0.002
			if rip.intensity > 0.05 && rip.radius < rip.maxRadius+rippleWidth {
				alive = append(alive, rip)
			}
		}
		st.ripples = alive
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}

// RainbowWave is Wave with rainbow coloring forced on.
func RainbowWave(ctx context.Context, hw Hardware, p Params) {
	p.Rainbow = true
	Wave(ctx, hw, p)
}

// RainbowBreathing is Breathing with rainbow coloring forced on.
func RainbowBreathing(ctx context.Context, hw Hardware, p Params) {
	p.Rainbow = true
	Breathing(ctx, hw, p)
}

// RainbowZonesCycle spreads the hue circle across the zones and
// rotates it.
func RainbowZonesCycle(ctx context.Context, hw Hardware, p Params) {
	p = p.normalized()
	var st effectState
	delay := frameDelay(p.Speed)
	failures := 0
	for ctx.Err() == nil {
		colors := make([]hardware.Color, hardware.NumZones)
		for zone := range colors {
			hue := math.Mod(st.hueOffset+float64(zone)/float64(hardware.NumZones), 1)
			colors[zone] = hardware.FromHSV(hue, 1, 1)
		}
		if !hw.SetZoneColors(ctx, colors) {
			failures++
			if failures >= maxPushFailures {
				return
			}
			if !wait(ctx, failureBackoff) {
				return
			}
		} else {
			failures = 0
		}
		st.hueOffset = math.Mod(st.hueOffset+0.002*float64(p.Speed), 1)
		if !wait(ctx, delay) {
			return
		}
		st.frame++
	}
}
