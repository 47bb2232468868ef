package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BackendEctool is the name of the ectool CLI backend.
const BackendEctool = "ectool"

const (
	ectoolCommandTimeout = 3 * time.Second
	ectoolProbeTimeout   = 5 * time.Second
)

// brightnessPatterns matches the known output shapes of pwmgetkblight
// across ectool versions.
var brightnessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Current keyboard backlight:\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*%`),
	regexp.MustCompile(`brightness:\s*(\d+)`),
	regexp.MustCompile(`(\d+)`),
}

// Ectool drives the keyboard through the privileged ectool CLI. Zone
// colors go through `ectool rgbkbd`, brightness through
// `ectool pwmsetkblight` / `pwmgetkblight`.
type Ectool struct {
	exec   *Executor
	binary string
	logger *slog.Logger
}

// NewEctool creates the ectool backend. binary defaults to "ectool"
// when empty, letting tests substitute a stub.
func NewEctool(exec *Executor, binary string, logger *slog.Logger) *Ectool {
	if binary == "" {
		binary = "ectool"
	}
	return &Ectool{exec: exec, binary: binary, logger: logger}
}

// Name implements Backend.
func (e *Ectool) Name() string { return BackendEctool }

// Probe checks that the binary exists and responds, then tests each
// rgbkbd subcommand individually. The test commands are harmless: demo
// 0 stops any pattern, clear 0 and zone 0 black writes are reversible.
func (e *Ectool) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{}

	res, err := e.exec.Run(ctx, []string{e.binary, "version"}, ectoolProbeTimeout)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.logger.Info("ectool not found in PATH")
		} else {
			e.logger.Warn("ectool version probe failed", "error", err)
		}
		return caps
	}
	if res.ExitCode != 0 {
		e.logger.Warn("ectool present but version command failed", "stderr", firstLine(res.Stderr))
		return caps
	}
	e.logger.Info("ectool available", "version", firstLine(res.Stdout))

	tests := []struct {
		op   Operation
		args []string
	}{
		{OpDemo, []string{"rgbkbd", "demo", "0"}},
		{OpClear, []string{"rgbkbd", "clear", "0"}},
		{OpSetZone, []string{"rgbkbd", "0", "0", "0", "0"}},
		{OpBrightness, []string{"pwmgetkblight"}},
	}
	for _, t := range tests {
		res, err := e.exec.Run(ctx, append([]string{e.binary}, t.args...), ectoolCommandTimeout)
		ok := err == nil && res.ExitCode == 0
		caps[t.op] = ok
		if !ok {
			e.logger.Debug("ectool capability test failed", "operation", string(t.op))
		}
	}
	// rgbkbd writes cover both granularities; brightness read implies write.
	caps[OpSetAll] = caps[OpSetZone]
	caps[OpGetBright] = caps[OpBrightness]
	return caps
}

// SetZone implements Backend. One rgbkbd invocation sets the zone's
// LEDs to the same packed 24-bit color.
func (e *Ectool) SetZone(ctx context.Context, zone int, c Color) error {
	if zone < 0 || zone >= NumZones {
		return fmt.Errorf("%w: zone %d out of range", ErrValidation, zone)
	}
	packed := strconv.FormatUint(uint64(c.Packed()), 10)
	args := []string{e.binary, "rgbkbd", strconv.Itoa(zone * LedsPerZone)}
	for i := 0; i < LedsPerZone; i++ {
		args = append(args, packed)
	}
	return e.run(ctx, args)
}

// SetAll implements Backend by writing each zone in turn.
func (e *Ectool) SetAll(ctx context.Context, c Color) error {
	for zone := 0; zone < NumZones; zone++ {
		if err := e.SetZone(ctx, zone, c); err != nil {
			return fmt.Errorf("zone %d: %w", zone, err)
		}
	}
	return nil
}

// Clear implements BatchClearer with the single-command rgbkbd clear,
// which sets every LED at once.
func (e *Ectool) Clear(ctx context.Context, c Color) error {
	packed := strconv.FormatUint(uint64(c.Packed()), 10)
	return e.run(ctx, []string{e.binary, "rgbkbd", "clear", packed})
}

// StopDemo implements DemoStopper. Demo mode 0 asks the EC to stop any
// built-in pattern so manual zone writes take effect.
func (e *Ectool) StopDemo(ctx context.Context) error {
	return e.run(ctx, []string{e.binary, "rgbkbd", "demo", "0"})
}

// SetBrightness implements Backend.
func (e *Ectool) SetBrightness(ctx context.Context, pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: brightness %d out of range", ErrValidation, pct)
	}
	return e.run(ctx, []string{e.binary, "pwmsetkblight", strconv.Itoa(pct)})
}

// Brightness implements BrightnessReader, parsing whichever output
// format this ectool build produces.
func (e *Ectool) Brightness(ctx context.Context) (int, error) {
	res, err := e.exec.Run(ctx, []string{e.binary, "pwmgetkblight"}, ectoolCommandTimeout)
	if err != nil {
		return 0, err
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("pwmgetkblight exit %d: %s", res.ExitCode, firstLine(res.Stderr))
	}
	for _, pat := range brightnessPatterns {
		if m := pat.FindStringSubmatch(res.Stdout); m != nil {
			pct, convErr := strconv.Atoi(m[1])
			if convErr != nil || pct < 0 || pct > 100 {
				continue
			}
			return pct, nil
		}
	}
	return 0, fmt.Errorf("unparseable pwmgetkblight output: %q", firstLine(res.Stdout))
}

func (e *Ectool) run(ctx context.Context, args []string) error {
	res, err := e.exec.Run(ctx, args, ectoolCommandTimeout)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s exit %d: %s", strings.Join(args[1:3], " "), res.ExitCode, firstLine(res.Stderr))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
