// Hearth - Unified Smart Device Gateway
//
// This is the main entry point for the Hearth application. Hearth puts one
// control surface in front of a houseful of consumer smart-home hardware:
//   - TP-Link Kasa plugs (local TCP)
//   - Philips Hue lights and rooms (via the bridge)
//   - Nanoleaf light panels (local REST)
//   - Tuya-firmware bulbs and plugs sold as Geeni or Cree (local TCP)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/hearth/internal/adapters/hue"
	"github.com/nerrad567/hearth/internal/adapters/kasa"
	"github.com/nerrad567/hearth/internal/adapters/nanoleaf"
	"github.com/nerrad567/hearth/internal/adapters/tuya"
	"github.com/nerrad567/hearth/internal/api"
	"github.com/nerrad567/hearth/internal/device"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Initialise device registry and construct adapters from config.
	// Construction is offline: an unreachable device only fails when first
	// commanded, so one dead bulb does not block startup.
	registry := device.NewRegistry()
	registry.SetLogger(log)

	if len(cfg.Devices) == 0 {
		return fmt.Errorf("no devices configured in %s", configPath)
	}
	for name, devCfg := range cfg.Devices {
		dev, err := buildDevice(devCfg, log.With("device", name))
		if err != nil {
			return fmt.Errorf("building device %q: %w", name, err)
		}
		if err := registry.Register(name, dev); err != nil {
			return fmt.Errorf("registering device %q: %w", name, err)
		}
	}
	log.Info("device registry initialised", "devices", registry.Len())

	// Start API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Registry: registry,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Hearth stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildDevice constructs the adapter for one config entry. The config has
// already been validated, so unknown types indicate a missing case here.
func buildDevice(cfg config.DeviceConfig, log *logging.Logger) (device.Device, error) {
	switch cfg.Type {
	case "tplink":
		plug, err := kasa.New(kasa.Config{
			Address: cfg.Address,
			Timeout: cfg.GetDeviceTimeout(),
		})
		if err != nil {
			return nil, err
		}
		plug.SetLogger(log)
		return plug, nil

	case "hue":
		light, err := hue.New(hue.Config{
			Host:    cfg.Host,
			User:    cfg.User,
			LightID: cfg.LightID,
			GroupID: cfg.GroupID,
		})
		if err != nil {
			return nil, err
		}
		light.SetLogger(log)
		return light, nil

	case "nanoleaf":
		panel, err := nanoleaf.New(nanoleaf.Config{
			Address: cfg.Address,
			Token:   cfg.Token,
			Timeout: cfg.GetDeviceTimeout(),
		})
		if err != nil {
			return nil, err
		}
		panel.SetLogger(log)
		return panel, nil

	case "geeni", "cree":
		bulb, err := tuya.New(tuya.Config{
			Address:    cfg.Address,
			DeviceID:   cfg.DeviceID,
			LocalKey:   cfg.LocalKey,
			Brand:      device.Brand(cfg.Type),
			DeviceType: device.DeviceType(cfg.DeviceType),
			Timeout:    cfg.GetDeviceTimeout(),
		})
		if err != nil {
			return nil, err
		}
		bulb.SetLogger(log)
		return bulb, nil
	}

	return nil, fmt.Errorf("unknown device type %q", cfg.Type)
}
