package tuya

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/device"
)

// Config holds the identity parameters for a Tuya device.
type Config struct {
	// Address is the device's IP address or host, optionally with a port.
	Address string

	// DeviceID is the cloud-assigned device id, used in every payload.
	DeviceID string

	// LocalKey is the 16-byte AES key from the vendor's pairing flow.
	LocalKey string

	// Brand is the label to report: geeni or cree. Defaults to geeni.
	Brand device.Brand

	// DeviceType is plug or light. Defaults to light.
	DeviceType device.DeviceType

	// Timeout bounds each command exchange. Zero means the 5s default.
	Timeout time.Duration
}

// Bulb is the device adapter for Tuya-firmware bulbs and plugs.
//
// Every operation is a fresh connect/exchange/close cycle; the firmware
// holds no session. Writes are preceded by a data-point query so the adapter
// can target whichever power or brightness key this product generation uses.
type Bulb struct {
	cfg    Config
	addr   string
	brand  device.Brand
	dtype  device.DeviceType
	logger device.Logger

	clientOnce sync.Once
	client     *client
}

var _ device.Device = (*Bulb)(nil)

// New creates a Tuya adapter. It fails with ErrValidation on a blank
// address, device id, or a key that is not 16 bytes; no network I/O is
// performed.
func New(cfg Config) (*Bulb, error) {
	addr, err := device.RequireParam("address", cfg.Address)
	if err != nil {
		return nil, err
	}
	if _, err := device.RequireParam("device id", cfg.DeviceID); err != nil {
		return nil, err
	}
	if len(cfg.LocalKey) != 16 {
		return nil, fmt.Errorf("%w: local key must be 16 bytes, got %d", device.ErrValidation, len(cfg.LocalKey))
	}

	brand := cfg.Brand
	if brand == "" {
		brand = device.BrandGeeni
	}
	if brand != device.BrandGeeni && brand != device.BrandCree {
		return nil, fmt.Errorf("%w: brand %q is not a tuya-firmware brand", device.ErrValidation, brand)
	}

	dtype := cfg.DeviceType
	if dtype == "" {
		dtype = device.DeviceTypeLight
	}
	if dtype != device.DeviceTypePlug && dtype != device.DeviceTypeLight {
		return nil, fmt.Errorf("%w: unknown device type %q", device.ErrValidation, dtype)
	}

	return &Bulb{
		cfg:    cfg,
		addr:   addr,
		brand:  brand,
		dtype:  dtype,
		logger: device.NopLogger(),
	}, nil
}

// SetLogger sets the logger for the adapter.
func (b *Bulb) SetLogger(logger device.Logger) {
	b.logger = logger
}

// getClient returns the protocol client, constructing it on first use.
func (b *Bulb) getClient() *client {
	b.clientOnce.Do(func() {
		b.client = newClient(b.addr, b.cfg.LocalKey, b.cfg.Timeout)
	})
	return b.client
}

// dpsReply is the JSON body of a data-point query response.
type dpsReply struct {
	DevID string         `json:"devId"`
	DPS   map[string]any `json:"dps"`
}

// command runs one exchange and checks the device's return code. Transport
// failures become ErrConnection naming the device address.
func (b *Bulb) command(ctx context.Context, action string, cmd uint32, body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", device.ErrValidation, action, err)
	}

	retCode, reply, err := b.getClient().exchange(ctx, cmd, encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s device at %s: %v", device.ErrConnection, b.brand, b.addr, err)
	}
	if retCode != 0 {
		return nil, fmt.Errorf("%w: %s: device at %s returned code %d", device.ErrOperation, action, b.addr, retCode)
	}
	return reply, nil
}

// queryDPS fetches the device's full data-point map.
func (b *Bulb) queryDPS(ctx context.Context, action string) (map[string]any, error) {
	body := map[string]any{
		"gwId":  b.cfg.DeviceID,
		"devId": b.cfg.DeviceID,
		"uid":   b.cfg.DeviceID,
		"t":     fmt.Sprintf("%d", time.Now().Unix()),
	}

	reply, err := b.command(ctx, action, cmdDPQuery, body)
	if err != nil {
		return nil, err
	}

	var parsed dpsReply
	if err := json.Unmarshal(reply, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: malformed reply from %s: %v", device.ErrOperation, action, b.addr, err)
	}
	if parsed.DPS == nil {
		return nil, fmt.Errorf("%w: %s: no data points in reply from %s", device.ErrOperation, action, b.addr)
	}
	return parsed.DPS, nil
}

// setDPS writes one or more data points.
func (b *Bulb) setDPS(ctx context.Context, action string, dps map[string]any) error {
	body := map[string]any{
		"devId": b.cfg.DeviceID,
		"uid":   b.cfg.DeviceID,
		"t":     fmt.Sprintf("%d", time.Now().Unix()),
		"dps":   dps,
	}

	if _, err := b.command(ctx, action, cmdControl, body); err != nil {
		return err
	}
	b.logger.Debug("data points written", "address", b.addr, "dps", dps)
	return nil
}

// setPower queries the current data points to find the power key, then
// writes it.
func (b *Bulb) setPower(ctx context.Context, action string, on bool) error {
	dps, err := b.queryDPS(ctx, action)
	if err != nil {
		return err
	}
	return b.setDPS(ctx, action, map[string]any{powerKey(dps): on})
}

// TurnOn powers the device on.
func (b *Bulb) TurnOn(ctx context.Context) error {
	return b.setPower(ctx, "turn on", true)
}

// TurnOff powers the device off.
func (b *Bulb) TurnOff(ctx context.Context) error {
	return b.setPower(ctx, "turn off", false)
}

// IsOn reports the power state from a fresh data-point query.
func (b *Bulb) IsOn(ctx context.Context) (bool, error) {
	dps, err := b.queryDPS(ctx, "query state")
	if err != nil {
		return false, err
	}
	return powerFromDPS(dps), nil
}

// Status fetches a snapshot of the device, including the raw data-point map
// for debugging unrecognised products.
func (b *Bulb) Status(ctx context.Context) (*device.Status, error) {
	dps, err := b.queryDPS(ctx, "query status")
	if err != nil {
		return nil, err
	}

	status := &device.Status{
		On:         powerFromDPS(dps),
		DeviceType: b.dtype,
		Brand:      b.brand,
		Attrs: map[string]any{
			device.AttrAddress: b.addr,
			device.AttrRawDPS:  dps,
		},
	}
	if level, ok := brightnessFromDPS(dps); ok {
		status.Attrs[device.AttrBrightness] = level
	}
	return status, nil
}

// SetBrightness sets brightness on the 0-100 scale, mapped onto whichever
// brightness data point the device reports.
func (b *Bulb) SetBrightness(ctx context.Context, level int) error {
	if err := device.ValidateBrightness(level); err != nil {
		return err
	}

	dps, err := b.queryDPS(ctx, "set brightness")
	if err != nil {
		return err
	}
	key, value := brightnessToDPS(dps, level)
	return b.setDPS(ctx, "set brightness", map[string]any{key: value})
}

// SetColor sets the colour from a "#RRGGBB" string via the colour data
// point.
func (b *Bulb) SetColor(ctx context.Context, color string) error {
	encoded, err := colorToDPS(color)
	if err != nil {
		return err
	}
	return b.setDPS(ctx, "set colour", map[string]any{dpsColor: encoded})
}

// DeviceTypeTag returns the configured hardware classification.
func (b *Bulb) DeviceTypeTag() device.DeviceType { return b.dtype }

// BrandTag returns the configured vendor label.
func (b *Bulb) BrandTag() device.Brand { return b.brand }

// Address returns the resolved device address.
func (b *Bulb) Address() string { return b.addr }
