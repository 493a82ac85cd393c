package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Brand identifies the vendor family of a device adapter.
type Brand string

// Brand constants. The set is closed: each value corresponds to exactly one
// adapter package under internal/adapters.
const (
	BrandTPLink   Brand = "tplink"
	BrandHue      Brand = "hue"
	BrandNanoleaf Brand = "nanoleaf"
	BrandGeeni    Brand = "geeni"
	BrandCree     Brand = "cree"
)

// DeviceType classifies what kind of hardware an adapter controls.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// DeviceType constants.
const (
	DeviceTypePlug  DeviceType = "plug"
	DeviceTypeLight DeviceType = "light"
)

// Device is the capability contract every brand adapter implements.
//
// TurnOn, TurnOff, IsOn, Status, SetBrightness and SetColor perform network
// I/O and accept a context for deadline propagation. DeviceTypeTag and
// BrandTag are pure metadata accessors and never fail.
//
// Brightness and colour are optional capabilities: adapters for hardware
// without them return ErrNotSupported, giving callers a uniform failure
// signal instead of a capability-flag field to branch on.
//
// A single adapter instance does not guarantee serialisation of overlapping
// calls; independent instances may be driven concurrently.
type Device interface {
	// TurnOn powers the device on.
	TurnOn(ctx context.Context) error

	// TurnOff powers the device off.
	TurnOff(ctx context.Context) error

	// IsOn reports the freshly fetched power state, never a cached value.
	IsOn(ctx context.Context) (bool, error)

	// Status fetches a point-in-time snapshot of the device.
	Status(ctx context.Context) (*Status, error)

	// SetBrightness sets the brightness level on a 0-100 scale.
	// Returns ErrValidation if level is outside [0,100] (checked before any
	// I/O) or ErrNotSupported if the hardware lacks brightness control.
	SetBrightness(ctx context.Context, level int) error

	// SetColor sets the colour from a "#RRGGBB" hex string.
	// Returns ErrValidation on any other format or ErrNotSupported if the
	// hardware lacks colour control.
	SetColor(ctx context.Context, color string) error

	// DeviceTypeTag returns the hardware classification (plug, light).
	DeviceTypeTag() DeviceType

	// BrandTag returns the vendor family of the adapter.
	BrandTag() Brand
}

// Well-known keys for Status.Attrs. Presence depends on brand and model.
const (
	AttrBrightness = "brightness" // int, 0-100
	AttrColor      = "color"      // brand-native representation
	AttrName       = "name"       // device display name
	AttrAddress    = "address"    // network address
	AttrModel      = "model"      // hardware model string
	AttrHasEmeter  = "has_emeter" // bool, TP-Link energy meter
	AttrColorMode  = "color_mode" // string, Nanoleaf colour mode
	AttrEffect     = "effect"     // string, Nanoleaf active effect
	AttrRawDPS     = "dps"        // map, raw Tuya datapoints
)

// Status is an immutable point-in-time snapshot of a device.
//
// On, DeviceType and Brand are always present. Everything else lives in
// Attrs under the Attr* keys, present only when the brand/model reports it.
// Snapshots are rebuilt from the device on every Status() call.
type Status struct {
	On         bool           `json:"is_on"`
	DeviceType DeviceType     `json:"device_type"`
	Brand      Brand          `json:"brand"`
	Attrs      map[string]any `json:"attrs,omitempty"`
}

// ParseHexColor parses a "#RRGGBB" colour string into its 8-bit channels.
// Anything else — missing '#', wrong length, non-hex digits — returns
// ErrValidation.
func ParseHexColor(color string) (r, g, b uint8, err error) {
	if len(color) != 7 || color[0] != '#' {
		return 0, 0, 0, fmt.Errorf("%w: colour must be a '#' followed by 6 hex digits, got %q", ErrValidation, color)
	}

	channels := [3]uint8{}
	for i := 0; i < 3; i++ {
		v, parseErr := strconv.ParseUint(color[1+i*2:3+i*2], 16, 8)
		if parseErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: colour must be a '#' followed by 6 hex digits, got %q", ErrValidation, color)
		}
		channels[i] = uint8(v)
	}

	return channels[0], channels[1], channels[2], nil
}

// ValidateBrightness checks a brightness level against the contract's 0-100
// scale. Returns ErrValidation when out of range. Adapters call this before
// touching the network.
func ValidateBrightness(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: brightness must be between 0 and 100, got %d", ErrValidation, level)
	}
	return nil
}

// RequireParam validates a required identity parameter: it must be non-empty
// after trimming. Returns the trimmed value, or ErrValidation naming the
// parameter. Adapters call this during construction, before any network I/O.
func RequireParam(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required and cannot be empty", ErrValidation, name)
	}
	return trimmed, nil
}

// Logger is the minimal structured logging interface used by this package
// and the brand adapters. *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything. Adapters use it as
// their default so logging stays optional.
func NopLogger() Logger { return noopLogger{} }
