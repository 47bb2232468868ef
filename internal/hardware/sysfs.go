package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BackendSysfs is the name of the sysfs brightness backend.
const BackendSysfs = "sysfs"

// defaultSysfsDirs are the backlight sysfs directories tried in order.
// Each must contain a brightness / max_brightness file pair.
var defaultSysfsDirs = []string{
	"/sys/class/leds/chromeos::kbd_backlight",
	"/sys/class/backlight/intel_backlight",
}

// Sysfs is the brightness-only fallback backend over the plain-text
// sysfs file pair. It cannot address zones.
type Sysfs struct {
	dirs   []string
	logger *slog.Logger
}

// NewSysfs creates the sysfs backend. dirs defaults to the known
// Chromebook backlight paths when nil.
func NewSysfs(dirs []string, logger *slog.Logger) *Sysfs {
	if dirs == nil {
		dirs = defaultSysfsDirs
	}
	return &Sysfs{dirs: dirs, logger: logger}
}

// Name implements Backend.
func (s *Sysfs) Name() string { return BackendSysfs }

// Probe reports brightness read capability when a file pair is
// readable, and write capability when the brightness file opens for
// writing.
func (s *Sysfs) Probe(ctx context.Context) Capabilities {
	caps := Capabilities{}
	dir := s.findDir()
	if dir == "" {
		s.logger.Debug("No sysfs backlight interface found")
		return caps
	}
	caps[OpGetBright] = true

	f, err := os.OpenFile(filepath.Join(dir, "brightness"), os.O_WRONLY, 0)
	if err == nil {
		f.Close()
		caps[OpBrightness] = true
	}
	s.logger.Info("Sysfs backlight available", "path", dir, "writable", caps[OpBrightness])
	return caps
}

// SetZone implements Backend; sysfs has no zone control.
func (s *Sysfs) SetZone(ctx context.Context, zone int, c Color) error {
	return fmt.Errorf("%w: sysfs backend has no zone control", ErrBackendUnavailable)
}

// SetAll implements Backend; sysfs has no color control.
func (s *Sysfs) SetAll(ctx context.Context, c Color) error {
	return fmt.Errorf("%w: sysfs backend has no color control", ErrBackendUnavailable)
}

// SetBrightness implements Backend, scaling the percentage into the
// interface's own maximum.
func (s *Sysfs) SetBrightness(ctx context.Context, pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: brightness %d out of range", ErrValidation, pct)
	}
	dir := s.findDir()
	if dir == "" {
		return fmt.Errorf("%w: no sysfs backlight interface", ErrBackendUnavailable)
	}
	max, err := readSysfsInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return err
	}
	if max <= 0 {
		return fmt.Errorf("invalid max_brightness %d in %s", max, dir)
	}
	value := pct * max / 100
	path := filepath.Join(dir, "brightness")
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Brightness implements BrightnessReader.
func (s *Sysfs) Brightness(ctx context.Context) (int, error) {
	dir := s.findDir()
	if dir == "" {
		return 0, fmt.Errorf("%w: no sysfs backlight interface", ErrBackendUnavailable)
	}
	current, err := readSysfsInt(filepath.Join(dir, "brightness"))
	if err != nil {
		return 0, err
	}
	max, err := readSysfsInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return 0, err
	}
	if max <= 0 {
		return 0, fmt.Errorf("invalid max_brightness %d in %s", max, dir)
	}
	return current * 100 / max, nil
}

func (s *Sysfs) findDir() string {
	for _, dir := range s.dirs {
		if _, err := os.Stat(filepath.Join(dir, "brightness")); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "max_brightness")); err != nil {
			continue
		}
		return dir
	}
	return ""
}

func readSysfsInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
