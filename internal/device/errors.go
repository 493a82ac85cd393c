package device

import "errors"

// Error kinds for the device abstraction layer.
//
// Every adapter failure maps onto exactly one of these sentinels so callers
// can branch with errors.Is instead of string-matching messages:
//
//	if errors.Is(err, device.ErrConnection) {
//	    // map to service-unavailable
//	}
//
// Adapters wrap the sentinel with fmt.Errorf("%w: ...") so the message carries
// the brand and device address alongside the underlying cause.
var (
	// ErrConnection is returned when the device transport is unreachable,
	// authentication is rejected, or a protocol handshake fails.
	ErrConnection = errors.New("device: connection failed")

	// ErrOperation is returned when the transport is reachable but the
	// requested action fails at the protocol or application level.
	ErrOperation = errors.New("device: operation failed")

	// ErrValidation is returned when a caller-supplied argument violates a
	// documented constraint (blank identity field, out-of-range brightness,
	// malformed colour string). Raised before any I/O.
	ErrValidation = errors.New("device: invalid argument")

	// ErrNotSupported is returned when the brand or model does not implement
	// an optional capability.
	ErrNotSupported = errors.New("device: not supported")
)
