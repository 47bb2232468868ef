package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/kbglow/cmd"
	"github.com/smazurov/kbglow/internal/api"
	"github.com/smazurov/kbglow/internal/config"
	"github.com/smazurov/kbglow/internal/effects"
	"github.com/smazurov/kbglow/internal/events"
	"github.com/smazurov/kbglow/internal/hardware"
	"github.com/smazurov/kbglow/internal/logging"
	"github.com/smazurov/kbglow/internal/metrics/exporters"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Hardware settings
	EctoolBinary string `help:"Path to the ectool binary" default:"ectool" toml:"hardware.ectool_binary" env:"HARDWARE_ECTOOL_BINARY"`
	ECPath       string `help:"EC debugfs io file" default:"/sys/kernel/debug/ec/ec0/io" toml:"hardware.ec_path" env:"HARDWARE_EC_PATH"`

	// Profiles settings
	ProfilesConfigFile string `help:"Saved profile definitions file" default:"profiles.toml" toml:"profiles.config_file" env:"PROFILES_CONFIG_FILE"`

	// Metrics settings
	MetricsPrometheusEnabled bool `help:"Enable Prometheus endpoint" default:"true" toml:"metrics.prometheus_enabled" env:"METRICS_PROMETHEUS_ENABLED"`
	MetricsSSEEnabled        bool `help:"Enable SSE metrics stream" default:"true" toml:"metrics.sse_enabled" env:"METRICS_SSE_ENABLED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingHardware string `help:"Hardware logging level" default:"info" toml:"logging.hardware" env:"LOGGING_HARDWARE"`
	LoggingEffects  string `help:"Effects logging level" default:"info" toml:"logging.effects" env:"LOGGING_EFFECTS"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	// Create Huma CLI
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"hardware": opts.LoggingHardware,
				"effects":  opts.LoggingEffects,
				"api":      opts.LoggingAPI,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Forward new log entries onto the bus so /api/logs/stream
		// carries live logs after the ring buffer replay.
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Lighting section of the config file: preferred backend,
		// initial brightness, startup effect or profile.
		lighting, lightErr := config.LoadLighting(opts.Config)
		if lightErr != nil {
			logger.Warn("Failed to load lighting config, using defaults", "error", lightErr)
			lighting = config.DefaultLighting()
		}

		// Build the backend chain in priority order and start
		// capability detection in the background.
		hwLogger := logging.GetLogger("hardware")
		exec := hardware.NewExecutor(hwLogger)
		backends := []hardware.Backend{
			hardware.NewEctool(exec, opts.EctoolBinary, hwLogger),
			hardware.NewECDirect(exec, opts.ECPath, hwLogger),
			hardware.NewSysfs(nil, hwLogger),
		}
		controller := hardware.NewController(backends, lighting.PreferredBackend, eventBus, hwLogger)

		manager := effects.NewManager(controller, eventBus, logging.GetLogger("effects"))

		// Load saved lighting profiles
		profiles := config.NewProfileManager(opts.ProfilesConfigFile)
		if loadErr := profiles.Load(); loadErr != nil {
			logger.Warn("Failed to load profiles", "error", loadErr)
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Controller:   controller,
			Manager:      manager,
			Profiles:     profiles,
			EventBus:     eventBus,
		}
		if opts.MetricsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}

		server := api.NewServer(apiOpts)

		// SSE metrics exporter pushes effect counters onto the event bus
		var sseExporter *exporters.SSEExporter
		if opts.MetricsSSEEnabled {
			sseExporter = exporters.NewSSEExporter(eventBus)
		}

		// Watch the config file for lighting changes. A preferred
		// backend switch stops the running effect first so no frame
		// straddles two backends.
		watcher := config.NewConfigWatcher(opts.Config, config.LoadLighting, logging.GetLogger("config"))
		watcher.OnReload(func(updated config.Lighting) {
			if updated.PreferredBackend != controller.PreferredBackend() {
				logger.Info("Preferred backend changed",
					"from", controller.PreferredBackend(), "to", updated.PreferredBackend)
				manager.Stop()
				controller.SetPreferredBackend(updated.PreferredBackend)
			}
			if updated.Brightness >= 0 && updated.Brightness != lighting.Brightness {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				controller.SetBrightness(ctx, updated.Brightness)
				cancel()
			}
			lighting = updated
		})

		hooks.OnStart(func() {
			if sseExporter != nil {
				sseExporter.Start(context.Background())
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not running", "error", watchErr)
			}

			// Apply startup state once detection settles, without
			// blocking server startup.
			go func() {
				if !controller.WaitForDetection(20 * time.Second) {
					logger.Warn("No usable backlight hardware detected, API stays up")
					return
				}

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				controller.StopDemo(ctx)

				if lighting.Brightness >= 0 {
					controller.SetBrightness(ctx, lighting.Brightness)
				}

				switch {
				case lighting.StartupProfile != "":
					applyStartupProfile(manager, controller, profiles, lighting.StartupProfile, logger)
				case lighting.StartupEffect != "":
					applyStartupEffect(manager, lighting, logger)
				}
			}()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Stop the animation before the process exits so the last
			// frame stays lit rather than half-written.
			manager.Stop()

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}
			if sseExporter != nil {
				sseExporter.Stop()
			}
		})
	})

	// Add one-shot apply command
	cli.Root().AddCommand(cmd.CreateApplyCmd())

	// Add hardware detection command
	cli.Root().AddCommand(cmd.CreateDetectCmd())

	// Run the CLI
	cli.Run()
}

// applyStartupProfile applies the configured startup profile by name.
func applyStartupProfile(manager *effects.Manager, controller *hardware.Controller, profiles *config.ProfileManager, name string, logger *slog.Logger) {
	profile, ok := profiles.GetProfile(name)
	if !ok {
		logger.Warn("Startup profile not found", "name", name)
		return
	}

	params, err := startupParams(profile.Color, profile.StartColor, profile.EndColor, profile.ZoneColors, profile.Speed, profile.Rainbow)
	if err != nil {
		logger.Warn("Startup profile has invalid colors", "name", name, "error", err)
		return
	}

	if profile.Brightness >= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		controller.SetBrightness(ctx, profile.Brightness)
		cancel()
	}
	if !manager.Start(profile.Effect, params) {
		logger.Warn("Startup profile did not apply", "name", name, "effect", profile.Effect)
	}
}

// applyStartupEffect starts the configured startup effect.
func applyStartupEffect(manager *effects.Manager, lighting config.Lighting, logger *slog.Logger) {
	params, err := startupParams(lighting.StartupColor, "", "", nil, lighting.StartupSpeed, false)
	if err != nil {
		logger.Warn("Startup color invalid", "error", err)
		return
	}

	if !manager.Start(lighting.StartupEffect, params) {
		logger.Warn("Startup effect did not apply", "effect", lighting.StartupEffect)
	}
}

// startupParams builds effect parameters from config color strings.
func startupParams(color, start, end string, zones []string, speed int, rainbow bool) (effects.Params, error) {
	p := effects.Params{Speed: speed, Rainbow: rainbow}

	var err error
	if color != "" {
		if p.Color, err = hardware.ParseHex(color); err != nil {
			return p, err
		}
	}
	if start != "" {
		if p.StartColor, err = hardware.ParseHex(start); err != nil {
			return p, err
		}
	}
	if end != "" {
		if p.EndColor, err = hardware.ParseHex(end); err != nil {
			return p, err
		}
	}
	for _, zc := range zones {
		c, err := hardware.ParseHex(zc)
		if err != nil {
			return p, err
		}
		p.ZoneColors = append(p.ZoneColors, c)
	}

	return p, nil
}
