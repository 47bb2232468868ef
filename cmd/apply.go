package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/smazurov/kbglow/internal/hardware"
	"github.com/smazurov/kbglow/internal/logging"
	"github.com/spf13/cobra"
)

// CreateApplyCmd creates the apply command for one-shot lighting
// changes without running the daemon.
func CreateApplyCmd() *cobra.Command {
	var color string
	var zones []string
	var brightness int
	var clear bool
	var backend string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a static lighting change and exit",
		Long: `Detects the keyboard backlight hardware, applies the requested static ` +
			`color, per-zone colors, brightness, or clear, then exits.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "warn",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("apply")

			controller := newController(backend, logger)
			if !controller.WaitForDetection(20 * time.Second) {
				fmt.Fprintln(os.Stderr, "no usable backlight hardware detected")
				os.Exit(1)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			controller.StopDemo(ctx)

			ok := true
			switch {
			case clear:
				ok = controller.ClearAll(ctx)
			case len(zones) > 0:
				if len(zones) != hardware.NumZones {
					fmt.Fprintf(os.Stderr, "expected %d zone colors, got %d\n", hardware.NumZones, len(zones))
					os.Exit(1)
				}
				colors := make([]hardware.Color, len(zones))
				for i, hex := range zones {
					c, err := hardware.ParseHex(hex)
					if err != nil {
						fmt.Fprintf(os.Stderr, "zone %d: %v\n", i, err)
						os.Exit(1)
					}
					colors[i] = c
				}
				ok = controller.SetZoneColors(ctx, colors)
			case color != "":
				c, err := hardware.ParseHex(color)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				ok = controller.SetAllColor(ctx, c)
			}

			if ok && brightness >= 0 {
				ok = controller.SetBrightness(ctx, brightness)
			}

			if !ok {
				fmt.Fprintln(os.Stderr, "hardware rejected the operation")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", "", "Hex color for all zones (e.g. #FF8800)")
	cmd.Flags().StringSliceVarP(&zones, "zones", "z", nil, "Per-zone hex colors, left to right")
	cmd.Flags().IntVarP(&brightness, "brightness", "b", -1, "Brightness percentage (0-100)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Turn all zones off")
	cmd.Flags().StringVar(&backend, "backend", "", "Preferred backend (ectool, ec-direct, sysfs)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	return cmd
}

// newController builds a controller over the standard backend set.
func newController(preferred string, logger *slog.Logger) *hardware.Controller {
	exec := hardware.NewExecutor(logger)
	backends := []hardware.Backend{
		hardware.NewEctool(exec, "ectool", logger),
		hardware.NewECDirect(exec, hardware.DefaultECPath, logger),
		hardware.NewSysfs(nil, logger),
	}
	return hardware.NewController(backends, preferred, nil, logger)
}
