// Package api provides the HTTP REST API for Hearth.
//
// It exposes the device registry and the capability operations (power,
// state, brightness, colour) over JSON, plus the Kasa native schedule
// pass-through for plugs that support it.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Device failures surface as structured errors whose HTTP status reflects
// the error kind: validation failures are 400, unsupported capabilities 501,
// unreachable devices 503, and rejected operations 502.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
