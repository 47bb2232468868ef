package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// BackendECDirect is the name of the direct EC register backend.
const BackendECDirect = "ec-direct"

// DefaultECPath is the byte-addressable EC control file exposed by the
// ec_sys kernel module (loaded with write_support=1, debugfs mounted).
const DefaultECPath = "/sys/kernel/debug/ec/ec0/io"

// EC register map for the RGB keyboard controller. Writing regECMode=0
// enters manual RGB mode, regECMode=1 activates the staged per-zone
// values.
const (
	regECMode       = 160
	regECSubMode    = 161
	regECBrightness = 163
	regECZoneBase   = 165 // r,g,b consecutive per zone
)

const (
	ecWriteTimeout = 3 * time.Second
	ecWriteSettle  = 20 * time.Millisecond
)

// ECDirect drives the keyboard by writing EC registers one byte at a
// time. Each byte write is its own dd invocation through the command
// executor, carrying its own timeout; there is no color read-back.
type ECDirect struct {
	exec   *Executor
	path   string
	settle time.Duration
	logger *slog.Logger
}

// NewECDirect creates the EC register backend. path defaults to
// DefaultECPath when empty.
func NewECDirect(exec *Executor, path string, logger *slog.Logger) *ECDirect {
	if path == "" {
		path = DefaultECPath
	}
	return &ECDirect{exec: exec, path: path, settle: ecWriteSettle, logger: logger}
}

// Name implements Backend.
func (b *ECDirect) Name() string { return BackendECDirect }

// Probe checks that the EC control file exists and is readable. No
// registers are written during probing; a bad write sequence could
// leave the EC in an undefined mode.
func (b *ECDirect) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{}

	f, err := os.Open(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("EC control file not present", "path", b.path)
		} else {
			b.logger.Info("EC control file not accessible", "path", b.path, "error", err)
		}
		return caps
	}
	defer f.Close()

	one := make([]byte, 1)
	if _, err := f.Read(one); err != nil {
		b.logger.Warn("EC control file test read failed", "error", err)
		return caps
	}

	b.logger.Info("EC direct access available", "path", b.path)
	caps[OpSetZone] = true
	caps[OpSetAll] = true
	caps[OpBrightness] = true
	return caps
}

// SetZone implements Backend: enter manual mode, stage the zone's RGB
// registers, activate.
func (b *ECDirect) SetZone(ctx context.Context, zone int, c Color) error {
	if zone < 0 || zone >= NumZones {
		return fmt.Errorf("%w: zone %d out of range", ErrValidation, zone)
	}
	if err := b.enterManualMode(ctx); err != nil {
		return err
	}
	if err := b.stageZone(ctx, zone, c); err != nil {
		return err
	}
	return b.activate(ctx)
}

// SetAll implements Backend, staging every zone before one activate.
func (b *ECDirect) SetAll(ctx context.Context, c Color) error {
	if err := b.enterManualMode(ctx); err != nil {
		return err
	}
	for zone := 0; zone < NumZones; zone++ {
		if err := b.stageZone(ctx, zone, c); err != nil {
			return err
		}
	}
	return b.activate(ctx)
}

// SetBrightness implements Backend, scaling the percentage into the
// EC's 0..255 brightness register.
func (b *ECDirect) SetBrightness(ctx context.Context, pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: brightness %d out of range", ErrValidation, pct)
	}
	return b.writeRegister(ctx, regECBrightness, uint8(pct*255/100))
}

func (b *ECDirect) enterManualMode(ctx context.Context) error {
	if err := b.writeRegister(ctx, regECMode, 0); err != nil {
		return fmt.Errorf("mode register: %w", err)
	}
	if err := b.writeRegister(ctx, regECSubMode, 0); err != nil {
		return fmt.Errorf("sub-mode register: %w", err)
	}
	return nil
}

func (b *ECDirect) stageZone(ctx context.Context, zone int, c Color) error {
	base := uint8(regECZoneBase + zone*3)
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		if err := b.writeRegister(ctx, base+uint8(i), v); err != nil {
			return fmt.Errorf("zone %d register %d: %w", zone, int(base)+i, err)
		}
	}
	return nil
}

func (b *ECDirect) activate(ctx context.Context) error {
	if err := b.writeRegister(ctx, regECMode, 1); err != nil {
		return fmt.Errorf("activate register: %w", err)
	}
	return nil
}

// writeRegister writes one byte at the register offset via dd, which
// gives an atomic single-byte write with root privileges.
func (b *ECDirect) writeRegister(ctx context.Context, reg, value uint8) error {
	argv := []string{
		"dd",
		"of=" + b.path,
		"bs=1",
		"seek=" + strconv.Itoa(int(reg)),
		"count=1",
		"conv=notrunc",
		"status=none",
	}
	res, err := b.exec.RunInput(ctx, argv, []byte{value}, ecWriteTimeout)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("dd exit %d: %s", res.ExitCode, firstLine(res.Stderr))
	}
	// The EC needs a moment to latch each write.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.settle):
	}
	return nil
}
