package nanoleaf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/device"
)

// pairingGuidance is appended to authorisation failures. A rejected token
// and a panel that was never paired look identical from outside.
const pairingGuidance = "token rejected; hold the panel's power button for 5-7 seconds to enter pairing mode and obtain a new token"

// Config holds the identity parameters for a Nanoleaf panel.
type Config struct {
	// Address is the panel's IP address or host, optionally with a port.
	Address string

	// Token is the auth token issued by the panel during pairing.
	Token string

	// Timeout bounds each request. Zero means the 10s default.
	Timeout time.Duration
}

// panelInfo is the panel's full info document; only the slices the adapter
// reads are declared.
type panelInfo struct {
	Name            string `json:"name"`
	Model           string `json:"model"`
	SerialNo        string `json:"serialNo"`
	FirmwareVersion string `json:"firmwareVersion"`
	State           struct {
		On struct {
			Value bool `json:"value"`
		} `json:"on"`
		Brightness struct {
			Value int `json:"value"`
		} `json:"brightness"`
		ColorMode string `json:"colorMode"`
	} `json:"state"`
	Effects struct {
		Select string `json:"select"`
	} `json:"effects"`
}

// valueBody is the {"value": x} wrapper the panel API uses for every field.
type valueBody struct {
	Value any `json:"value"`
}

// Panel is the device adapter for a Nanoleaf light panel array.
//
// The first operation probes the panel to confirm reachability and token
// validity; a failed probe is retried on the next operation.
type Panel struct {
	addr   string
	client *client
	logger device.Logger

	probeMu   sync.Mutex
	probeDone bool
}

var _ device.Device = (*Panel)(nil)

// New creates a Nanoleaf adapter. It fails with ErrValidation if the address
// or token is blank after trimming; no network I/O is performed.
func New(cfg Config) (*Panel, error) {
	addr, err := device.RequireParam("address", cfg.Address)
	if err != nil {
		return nil, err
	}
	token, err := device.RequireParam("token", cfg.Token)
	if err != nil {
		return nil, err
	}

	return &Panel{
		addr:   addr,
		client: newClient(addr, token, cfg.Timeout),
		logger: device.NopLogger(),
	}, nil
}

// SetLogger sets the logger for the adapter.
func (p *Panel) SetLogger(logger device.Logger) {
	p.logger = logger
}

// wrap classifies a client error onto the device taxonomy.
func (p *Panel) wrap(action string, err error) error {
	if errors.Is(err, errUnauthorized) {
		return fmt.Errorf("%w: nanoleaf panel at %s: %s", device.ErrConnection, p.addr, pairingGuidance)
	}
	if errors.Is(err, errTransport) {
		return fmt.Errorf("%w: nanoleaf panel at %s: %v", device.ErrConnection, p.addr, err)
	}
	return fmt.Errorf("%w: %s: nanoleaf panel at %s: %v", device.ErrOperation, action, p.addr, err)
}

// probe performs the one-time reachability check. Failures leave the flag
// unset so the probe is retried on the next operation.
func (p *Panel) probe(ctx context.Context) error {
	p.probeMu.Lock()
	defer p.probeMu.Unlock()

	if p.probeDone {
		return nil
	}

	info, err := p.info(ctx)
	if err != nil {
		return err
	}

	p.probeDone = true
	p.logger.Debug("nanoleaf panel probe complete",
		"address", p.addr, "name", info.Name, "model", info.Model, "firmware", info.FirmwareVersion)
	return nil
}

// info fetches and decodes the panel's info document.
func (p *Panel) info(ctx context.Context) (*panelInfo, error) {
	raw, err := p.client.get(ctx, "/")
	if err != nil {
		return nil, p.wrap("query status", err)
	}

	var info panelInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("%w: query status: malformed reply from %s: %v", device.ErrOperation, p.addr, err)
	}
	return &info, nil
}

// setState pushes a partial state update.
func (p *Panel) setState(ctx context.Context, action string, body map[string]valueBody) error {
	if err := p.probe(ctx); err != nil {
		return err
	}
	if err := p.client.put(ctx, "/state", body); err != nil {
		return p.wrap(action, err)
	}
	return nil
}

// TurnOn switches the panels on.
func (p *Panel) TurnOn(ctx context.Context) error {
	if err := p.setState(ctx, "turn on", map[string]valueBody{"on": {Value: true}}); err != nil {
		return err
	}
	p.logger.Debug("panel switched on", "address", p.addr)
	return nil
}

// TurnOff switches the panels off.
func (p *Panel) TurnOff(ctx context.Context) error {
	if err := p.setState(ctx, "turn off", map[string]valueBody{"on": {Value: false}}); err != nil {
		return err
	}
	p.logger.Debug("panel switched off", "address", p.addr)
	return nil
}

// IsOn reports the current power state from a fresh info fetch.
func (p *Panel) IsOn(ctx context.Context) (bool, error) {
	if err := p.probe(ctx); err != nil {
		return false, err
	}
	info, err := p.info(ctx)
	if err != nil {
		return false, err
	}
	return info.State.On.Value, nil
}

// Status fetches a snapshot of the panel.
func (p *Panel) Status(ctx context.Context) (*device.Status, error) {
	if err := p.probe(ctx); err != nil {
		return nil, err
	}
	info, err := p.info(ctx)
	if err != nil {
		return nil, err
	}

	return &device.Status{
		On:         info.State.On.Value,
		DeviceType: device.DeviceTypeLight,
		Brand:      device.BrandNanoleaf,
		Attrs: map[string]any{
			device.AttrAddress:    p.addr,
			device.AttrName:       info.Name,
			device.AttrModel:      info.Model,
			device.AttrBrightness: info.State.Brightness.Value,
			device.AttrColorMode:  info.State.ColorMode,
			device.AttrEffect:     info.Effects.Select,
		},
	}, nil
}

// SetBrightness sets brightness on the panel's native 0-100 scale.
func (p *Panel) SetBrightness(ctx context.Context, level int) error {
	if err := device.ValidateBrightness(level); err != nil {
		return err
	}
	return p.setState(ctx, "set brightness", map[string]valueBody{"brightness": {Value: level}})
}

// SetColor sets the colour from a "#RRGGBB" string via the panel's
// hue/saturation/brightness fields.
func (p *Panel) SetColor(ctx context.Context, color string) error {
	hue, sat, bri, err := rgbToHSB(color)
	if err != nil {
		return err
	}
	return p.setState(ctx, "set colour", map[string]valueBody{
		"hue":        {Value: hue},
		"sat":        {Value: sat},
		"brightness": {Value: bri},
	})
}

// DeviceTypeTag returns the hardware classification.
func (p *Panel) DeviceTypeTag() device.DeviceType { return device.DeviceTypeLight }

// BrandTag returns the vendor family.
func (p *Panel) BrandTag() device.Brand { return device.BrandNanoleaf }

// Address returns the configured panel address.
func (p *Panel) Address() string { return p.addr }
