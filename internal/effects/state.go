package effects

// rippleSource is one expanding ring in the ripple effect.
type rippleSource struct {
	center    int
	radius    float64
	maxRadius float64
	hue       float64
	intensity float64
}

// effectState is per-run animation state. Each run gets a fresh value;
// state is never shared between sessions.
type effectState struct {
	frame        int
	hueOffset    float64
	position     int
	direction    int
	wavePosition float64
	ripples      []rippleSource
}
