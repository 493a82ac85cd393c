package kasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/device"
)

// Commands understood by the plug firmware.
const (
	cmdSysinfo         = `{"system":{"get_sysinfo":{}}}`
	cmdScheduleRules   = `{"schedule":{"get_rules":{}}}`
	relayStateTemplate = `{"system":{"set_relay_state":{"state":%d}}}`
)

// Config holds the identity parameters for a Kasa plug.
type Config struct {
	// Address is the device's IP address or host, optionally with a port.
	Address string

	// Timeout bounds each command exchange. Zero means the 10s default.
	Timeout time.Duration
}

// Plug is the device adapter for a TP-Link Kasa smart plug.
//
// The protocol client is constructed lazily on first use; construction never
// touches the network, so New only validates identity parameters. Overlapping
// calls on one Plug are safe with respect to client setup (guarded by a
// sync.Once) but are not otherwise serialised.
type Plug struct {
	cfg    Config
	addr   string
	logger device.Logger

	clientOnce sync.Once
	client     *client
}

var _ device.Device = (*Plug)(nil)

// New creates a Kasa plug adapter. It fails with ErrValidation if the
// address is blank after trimming; a bare host has the default Kasa port
// appended here, so Address reflects the wire target. No network I/O is
// performed.
func New(cfg Config) (*Plug, error) {
	addr, err := device.RequireParam("address", cfg.Address)
	if err != nil {
		return nil, err
	}
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, defaultPort)
	}

	return &Plug{
		cfg:    cfg,
		addr:   addr,
		logger: device.NopLogger(),
	}, nil
}

// SetLogger sets the logger for the adapter.
func (p *Plug) SetLogger(logger device.Logger) {
	p.logger = logger
}

// getClient returns the protocol client, constructing it on first use.
func (p *Plug) getClient() *client {
	p.clientOnce.Do(func() {
		p.client = newClient(p.addr, p.cfg.Timeout)
	})
	return p.client
}

// command runs one exchange and decodes the reply. Transport failures become
// ErrConnection naming the device address; malformed replies become
// ErrOperation naming the attempted action.
func (p *Plug) command(ctx context.Context, action, cmd string) (*response, error) {
	raw, err := p.getClient().exchange(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: tplink plug at %s: %v", device.ErrConnection, p.addr, err)
	}

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: malformed reply from %s: %v", device.ErrOperation, action, p.addr, err)
	}
	return &resp, nil
}

// refresh performs the full sysinfo fetch every operation starts with.
func (p *Plug) refresh(ctx context.Context, action string) (*sysinfo, error) {
	resp, err := p.command(ctx, action, cmdSysinfo)
	if err != nil {
		return nil, err
	}
	if resp.System == nil || resp.System.Sysinfo == nil {
		return nil, fmt.Errorf("%w: %s: no sysinfo in reply from %s", device.ErrOperation, action, p.addr)
	}
	if info := resp.System.Sysinfo; info.ErrCode != 0 {
		return nil, fmt.Errorf("%w: %s: device error %d %s", device.ErrOperation, action, info.ErrCode, info.ErrMsg)
	}
	return resp.System.Sysinfo, nil
}

// setRelay switches the relay and checks the firmware's error code.
func (p *Plug) setRelay(ctx context.Context, action string, on bool) error {
	state := 0
	if on {
		state = 1
	}

	resp, err := p.command(ctx, action, fmt.Sprintf(relayStateTemplate, state))
	if err != nil {
		return err
	}
	if resp.System == nil || resp.System.SetRelayState == nil {
		return fmt.Errorf("%w: %s: no relay result in reply from %s", device.ErrOperation, action, p.addr)
	}
	if res := resp.System.SetRelayState; res.ErrCode != 0 {
		return fmt.Errorf("%w: %s: device error %d %s", device.ErrOperation, action, res.ErrCode, res.ErrMsg)
	}

	p.logger.Debug("relay state set", "address", p.addr, "on", on)
	return nil
}

// TurnOn powers the plug on.
func (p *Plug) TurnOn(ctx context.Context) error {
	if _, err := p.refresh(ctx, "turn on"); err != nil {
		return err
	}
	return p.setRelay(ctx, "turn on", true)
}

// TurnOff powers the plug off.
func (p *Plug) TurnOff(ctx context.Context) error {
	if _, err := p.refresh(ctx, "turn off"); err != nil {
		return err
	}
	return p.setRelay(ctx, "turn off", false)
}

// IsOn reports the relay state from a fresh sysinfo fetch.
func (p *Plug) IsOn(ctx context.Context) (bool, error) {
	info, err := p.refresh(ctx, "query state")
	if err != nil {
		return false, err
	}
	return info.RelayState > 0, nil
}

// Status fetches a snapshot of the plug.
func (p *Plug) Status(ctx context.Context) (*device.Status, error) {
	info, err := p.refresh(ctx, "query status")
	if err != nil {
		return nil, err
	}

	return &device.Status{
		On:         info.RelayState > 0,
		DeviceType: device.DeviceTypePlug,
		Brand:      device.BrandTPLink,
		Attrs: map[string]any{
			device.AttrAddress:   p.addr,
			device.AttrName:      info.Alias,
			device.AttrModel:     info.Model,
			device.AttrHasEmeter: info.Feature == "TIM:ENE",
		},
	}, nil
}

// SetBrightness is not supported: Kasa plugs have no dimmer.
func (p *Plug) SetBrightness(_ context.Context, _ int) error {
	return fmt.Errorf("%w: tplink plug has no brightness control", device.ErrNotSupported)
}

// SetColor is not supported: Kasa plugs have no colour control.
func (p *Plug) SetColor(_ context.Context, _ string) error {
	return fmt.Errorf("%w: tplink plug has no colour control", device.ErrNotSupported)
}

// DeviceTypeTag returns the hardware classification.
func (p *Plug) DeviceTypeTag() device.DeviceType { return device.DeviceTypePlug }

// BrandTag returns the vendor family.
func (p *Plug) BrandTag() device.Brand { return device.BrandTPLink }

// Address returns the resolved device address.
func (p *Plug) Address() string { return p.addr }
