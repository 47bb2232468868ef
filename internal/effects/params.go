// Package effects implements the animation library and the manager
// that enforces one running effect at a time.
package effects

import (
	"context"

	"github.com/smazurov/kbglow/internal/hardware"
)

// Speed bounds. Speed scales animation rate, not frame cost.
const (
	MinSpeed     = 1
	MaxSpeed     = 10
	DefaultSpeed = 5
)

// Params carries everything an effect needs for one run. Static
// appliers ignore Speed.
type Params struct {
	Speed      int
	Color      hardware.Color
	Rainbow    bool
	StartColor hardware.Color
	EndColor   hardware.Color
	ZoneColors []hardware.Color
}

// normalized clamps Speed into [MinSpeed, MaxSpeed]; zero selects the
// default.
func (p Params) normalized() Params {
	if p.Speed == 0 {
		p.Speed = DefaultSpeed
	}
	if p.Speed < MinSpeed {
		p.Speed = MinSpeed
	}
	if p.Speed > MaxSpeed {
		p.Speed = MaxSpeed
	}
	return p
}

// Hardware is the slice of the hardware controller the animation
// loops push frames through. Booleans report acceptance; effects never
// see errors, only push failures.
type Hardware interface {
	SetAllColor(ctx context.Context, c hardware.Color) bool
	SetZoneColors(ctx context.Context, colors []hardware.Color) bool
	ZoneColors() []hardware.Color
}
