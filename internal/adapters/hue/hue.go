package hue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amimof/huego"

	"github.com/nerrad567/hearth/internal/device"
)

// Config holds the identity parameters for a Hue target.
type Config struct {
	// Host is the bridge address, with or without a scheme.
	Host string

	// User is the API username registered on the bridge.
	User string

	// LightID targets a single light. Mutually exclusive with GroupID.
	LightID int

	// GroupID targets a group (room). Mutually exclusive with LightID.
	GroupID int
}

// Light is the device adapter for a Philips Hue light, or for a group of
// lights addressed as one device.
//
// All bridge traffic goes through the embedded huego client. The first
// operation performs a handshake (see the package documentation); after a
// failed handshake the next operation retries it.
type Light struct {
	cfg    Config
	bridge *huego.Bridge
	logger device.Logger

	initMu   sync.Mutex
	initDone bool
}

var _ device.Device = (*Light)(nil)

// New creates a Hue adapter. It fails with ErrValidation unless host, user
// and exactly one of LightID/GroupID are provided; no network I/O is
// performed.
func New(cfg Config) (*Light, error) {
	host, err := device.RequireParam("host", cfg.Host)
	if err != nil {
		return nil, err
	}
	user, err := device.RequireParam("user", cfg.User)
	if err != nil {
		return nil, err
	}
	if (cfg.LightID > 0) == (cfg.GroupID > 0) {
		return nil, fmt.Errorf("%w: exactly one of light id or group id must be set", device.ErrValidation)
	}

	cfg.Host = host
	cfg.User = user
	return &Light{
		cfg:    cfg,
		bridge: huego.New(host, user),
		logger: device.NopLogger(),
	}, nil
}

// SetLogger sets the logger for the adapter.
func (l *Light) SetLogger(logger device.Logger) {
	l.logger = logger
}

// isGroup reports whether this adapter targets a group rather than a light.
func (l *Light) isGroup() bool { return l.cfg.GroupID > 0 }

// target describes the adapter for error messages.
func (l *Light) target() string {
	if l.isGroup() {
		return fmt.Sprintf("hue group %d via %s", l.cfg.GroupID, l.cfg.Host)
	}
	return fmt.Sprintf("hue light %d via %s", l.cfg.LightID, l.cfg.Host)
}

// unauthorizedErrorType is the bridge API error for a missing or revoked
// username.
const unauthorizedErrorType = 1

// wrap classifies a huego error. An auth rejection means the gateway can no
// longer talk to the bridge, so it is ErrConnection like a transport failure;
// other errors the bridge itself reported become ErrOperation.
func (l *Light) wrap(action string, err error) error {
	var apiErr *huego.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Type == unauthorizedErrorType {
			return fmt.Errorf("%w: %s: %s: unauthorised user: check the configured bridge user, or press the bridge link button and register a new one",
				device.ErrConnection, action, l.target())
		}
		return fmt.Errorf("%w: %s: %s: bridge error %d: %s",
			device.ErrOperation, action, l.target(), apiErr.Type, apiErr.Description)
	}
	return fmt.Errorf("%w: %s: %v", device.ErrConnection, l.target(), err)
}

// ensureInit performs the one-time bridge handshake. Failures leave the flag
// unset so the handshake is retried on the next operation.
func (l *Light) ensureInit(ctx context.Context) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.initDone {
		return nil
	}

	cfg, err := l.bridge.GetConfigContext(ctx)
	if err != nil {
		return l.wrap("bridge handshake", err)
	}

	l.initDone = true
	l.logger.Debug("hue bridge handshake complete",
		"host", l.cfg.Host, "bridge", cfg.Name, "sw_version", cfg.SwVersion)
	return nil
}

// setState pushes a partial state update to the light or group.
func (l *Light) setState(ctx context.Context, action string, state huego.State) error {
	if err := l.ensureInit(ctx); err != nil {
		return err
	}

	var err error
	if l.isGroup() {
		_, err = l.bridge.SetGroupStateContext(ctx, l.cfg.GroupID, state)
	} else {
		_, err = l.bridge.SetLightStateContext(ctx, l.cfg.LightID, state)
	}
	if err != nil {
		return l.wrap(action, err)
	}

	l.logger.Debug("hue state set", "target", l.target(), "on", state.On)
	return nil
}

// TurnOn switches the light or every light in the group on.
func (l *Light) TurnOn(ctx context.Context) error {
	return l.setState(ctx, "turn on", huego.State{On: true})
}

// TurnOff switches the light or every light in the group off.
func (l *Light) TurnOff(ctx context.Context) error {
	return l.setState(ctx, "turn off", huego.State{On: false})
}

// IsOn reports the current state. A group counts as on when any member is on.
func (l *Light) IsOn(ctx context.Context) (bool, error) {
	if err := l.ensureInit(ctx); err != nil {
		return false, err
	}

	if l.isGroup() {
		group, err := l.bridge.GetGroupContext(ctx, l.cfg.GroupID)
		if err != nil {
			return false, l.wrap("query state", err)
		}
		if group.GroupState == nil {
			return false, fmt.Errorf("%w: query state: %s: no group state in reply", device.ErrOperation, l.target())
		}
		return group.GroupState.AnyOn, nil
	}

	light, err := l.bridge.GetLightContext(ctx, l.cfg.LightID)
	if err != nil {
		return false, l.wrap("query state", err)
	}
	if light.State == nil {
		return false, fmt.Errorf("%w: query state: %s: no light state in reply", device.ErrOperation, l.target())
	}
	return light.State.On, nil
}

// Status fetches a snapshot of the light or group.
func (l *Light) Status(ctx context.Context) (*device.Status, error) {
	if err := l.ensureInit(ctx); err != nil {
		return nil, err
	}

	status := &device.Status{
		DeviceType: device.DeviceTypeLight,
		Brand:      device.BrandHue,
		Attrs: map[string]any{
			device.AttrAddress: l.cfg.Host,
		},
	}

	if l.isGroup() {
		group, err := l.bridge.GetGroupContext(ctx, l.cfg.GroupID)
		if err != nil {
			return nil, l.wrap("query status", err)
		}
		if group.GroupState == nil {
			return nil, fmt.Errorf("%w: query status: %s: no group state in reply", device.ErrOperation, l.target())
		}
		status.On = group.GroupState.AnyOn
		status.Attrs[device.AttrName] = group.Name
		status.Attrs["lights"] = len(group.Lights)
		if group.State != nil {
			status.Attrs[device.AttrBrightness] = briToLevel(group.State.Bri)
		}
		return status, nil
	}

	light, err := l.bridge.GetLightContext(ctx, l.cfg.LightID)
	if err != nil {
		return nil, l.wrap("query status", err)
	}
	if light.State == nil {
		return nil, fmt.Errorf("%w: query status: %s: no light state in reply", device.ErrOperation, l.target())
	}
	status.On = light.State.On
	status.Attrs[device.AttrName] = light.Name
	status.Attrs[device.AttrModel] = light.ModelID
	status.Attrs[device.AttrBrightness] = briToLevel(light.State.Bri)
	status.Attrs[device.AttrColorMode] = light.State.ColorMode
	return status, nil
}

// SetBrightness sets brightness on the 0-100 scale. Zero turns the target
// off; any other level also switches it on, since the bridge ignores
// brightness on a light that is off.
func (l *Light) SetBrightness(ctx context.Context, level int) error {
	if err := device.ValidateBrightness(level); err != nil {
		return err
	}
	if level == 0 {
		return l.setState(ctx, "set brightness", huego.State{On: false})
	}
	return l.setState(ctx, "set brightness", huego.State{On: true, Bri: levelToBri(level)})
}

// SetColor sets the colour from a "#RRGGBB" string and switches the target
// on.
func (l *Light) SetColor(ctx context.Context, color string) error {
	xy, err := rgbToXY(color)
	if err != nil {
		return err
	}
	return l.setState(ctx, "set colour", huego.State{On: true, Xy: xy})
}

// DeviceTypeTag returns the hardware classification.
func (l *Light) DeviceTypeTag() device.DeviceType { return device.DeviceTypeLight }

// BrandTag returns the vendor family.
func (l *Light) BrandTag() device.Brand { return device.BrandHue }
