package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/smazurov/kbglow/internal/hardware"
	"github.com/smazurov/kbglow/internal/logging"
	"github.com/spf13/cobra"
)

// CreateDetectCmd creates the detect command, which probes the
// backends and prints a capability matrix.
func CreateDetectCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Probe backlight hardware and print capabilities",
		Long: `Probes each control backend (ectool, EC debugfs registers, sysfs) ` +
			`and prints which operations every backend supports on this machine.`,
		Run: func(_ *cobra.Command, _ []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})
			logger := logging.GetLogger("detect")

			controller := newController("", logger)
			controller.WaitForDetection(20 * time.Second)
			info := controller.Info()

			if !info.Ready {
				fmt.Println("no usable backlight hardware detected")
				os.Exit(1)
			}

			fmt.Printf("detection finished in %s\n\n", info.DetectTime.Round(time.Millisecond))

			ops := []hardware.Operation{
				hardware.OpSetZone,
				hardware.OpSetAll,
				hardware.OpClear,
				hardware.OpDemo,
				hardware.OpBrightness,
				hardware.OpGetBright,
			}

			names := make([]string, 0, len(info.Backends))
			for name := range info.Backends {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("%-12s", "backend")
			for _, op := range ops {
				fmt.Printf(" %-14s", op)
			}
			fmt.Println()

			for _, name := range names {
				caps := info.Backends[name]
				fmt.Printf("%-12s", name)
				for _, op := range ops {
					mark := "-"
					if caps[op] {
						mark = "yes"
					}
					fmt.Printf(" %-14s", mark)
				}
				fmt.Println()
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show probe logging")

	return cmd
}
