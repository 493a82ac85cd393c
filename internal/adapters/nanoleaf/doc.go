// Package nanoleaf adapts Nanoleaf light panels to the device contract.
//
// Panels expose a local REST API on port 16021, authenticated by a token the
// panel hands out while in pairing mode. There is no session: every
// operation is one HTTP request against /api/v1/<token>.
//
// The first operation probes the panel with an info fetch. An authorisation
// failure on any request is reported as a connection error carrying pairing
// guidance (hold the power button for 5-7 seconds to enter pairing mode),
// since a bad token is indistinguishable from a never-paired panel.
//
// Colour control takes "#RRGGBB" and converts it to the hue/saturation/
// brightness triple the panel API expects.
package nanoleaf
