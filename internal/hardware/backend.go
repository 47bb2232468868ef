package hardware

import "context"

// Zone layout of the keyboard. The backlight is divided into NumZones
// equally sized, non-overlapping partitions of LedsPerZone LEDs each,
// addressed by 0-based zone index.
const (
	NumZones    = 4
	LedsPerZone = 3
	TotalLEDs   = NumZones * LedsPerZone
)

// Operation identifies one backend capability slot.
type Operation string

// Probed operations.
const (
	OpSetZone    Operation = "set_zone"
	OpSetAll     Operation = "set_all"
	OpClear      Operation = "clear"
	OpDemo       Operation = "demo"
	OpBrightness Operation = "brightness"
	OpGetBright  Operation = "get_brightness"
)

// Capabilities maps operations to whether the backend can perform
// them, as established by probing.
type Capabilities map[Operation]bool

// Any reports whether at least one operation is usable.
func (c Capabilities) Any() bool {
	for _, ok := range c {
		if ok {
			return true
		}
	}
	return false
}

// Backend is one control path to the keyboard hardware. Implementations
// return typed errors from the hardware package taxonomy; they never
// panic across this boundary.
type Backend interface {
	// Name is a stable identifier used for configuration and logging.
	Name() string

	// Probe exercises the backend with cheap idempotent calls and
	// reports what works. It must tolerate total hardware absence.
	Probe(ctx context.Context) Capabilities

	// SetZone writes one zone's color.
	SetZone(ctx context.Context, zone int, c Color) error

	// SetAll writes the same color to every zone.
	SetAll(ctx context.Context, c Color) error

	// SetBrightness sets backlight brightness as a percentage [0, 100].
	SetBrightness(ctx context.Context, pct int) error
}

// BatchClearer is implemented by backends with a dedicated single
// command that sets every LED at once.
type BatchClearer interface {
	Clear(ctx context.Context, c Color) error
}

// DemoStopper is implemented by backends that can ask the hardware to
// stop any built-in demo pattern.
type DemoStopper interface {
	StopDemo(ctx context.Context) error
}

// BrightnessReader is implemented by backends that can read the
// current brightness back from the hardware.
type BrightnessReader interface {
	Brightness(ctx context.Context) (int, error)
}
