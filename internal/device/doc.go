// Package device defines the uniform device abstraction for Hearth.
//
// Every supported brand is wrapped by an adapter that satisfies the Device
// interface, so callers control a TP-Link plug, a Hue light behind a bridge,
// a Nanoleaf panel, or a Tuya-protocol bulb through one capability surface:
// power on/off, on/off query, status query, and — where the hardware supports
// it — brightness and colour.
//
// # Key Types
//
//   - Device: the capability contract every brand adapter implements
//   - Status: immutable point-in-time snapshot returned by Status()
//   - Registry: thread-safe mapping from logical device name to adapter
//   - Brand, DeviceType: closed metadata enums
//
// # Error Taxonomy
//
// All adapter failures map onto four sentinel kinds, checked with errors.Is:
//
//   - ErrConnection: transport unreachable, auth rejected, handshake failed
//   - ErrOperation: transport reachable but the action failed
//   - ErrValidation: caller-supplied argument violates a documented constraint
//   - ErrNotSupported: the brand/model lacks the optional capability
//
// Adapters never let a brand-library error type cross this boundary; the
// registry propagates errors unchanged.
//
// # Usage
//
//	reg := device.NewRegistry()
//	reg.SetLogger(log)
//	if err := reg.Register("living-room-plug", plug); err != nil { ... }
//
//	d, ok := reg.Get("living-room-plug")
//	if !ok { ... }
//	if err := d.TurnOn(ctx); err != nil {
//	    if errors.Is(err, device.ErrConnection) { ... }
//	}
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Individual adapters serialise
// their own lazy connection setup but do not promise serialisation of
// overlapping operations on the same instance.
package device
