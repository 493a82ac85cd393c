// Package hue adapts Philips Hue lights and groups to the device contract.
//
// Unlike the direct-IP brands, Hue devices are reached through the bridge's
// REST API, so the adapter wraps a huego bridge client rather than a raw
// socket. Each adapter instance targets either a single light or a group
// (a room); which one is fixed at construction.
//
// # Bridge Handshake
//
// The first operation on an adapter probes the bridge with a config fetch to
// confirm the host is reachable and the API user is valid. The probe is
// guarded by a mutex and a done flag rather than sync.Once so that a failed
// handshake can be retried on the next call instead of wedging the adapter
// permanently.
//
// # State Semantics
//
// For a single light, on/off state is the light's own state. For a group the
// bridge reports both any_on and all_on; this adapter treats the group as on
// when any member is on, matching how the bridge's own apps present rooms.
//
// Brightness is exposed on the 0-100 scale of the device contract and mapped
// to the bridge's 0-254 range. Setting brightness 0 turns the target off.
// Colour accepts "#RRGGBB" and maps onto CIE xy with a crude linear
// approximation; it is not colorimetrically correct but is stable and
// monotonic per channel.
package hue
