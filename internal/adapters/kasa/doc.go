// Package kasa implements the Hearth device adapter for TP-Link Kasa smart
// plugs, which speak a proprietary JSON-over-TCP protocol on port 9999.
//
// The wire format is a 4-byte big-endian length prefix followed by the JSON
// command obfuscated with an XOR autokey cipher (initial key 0xAB). There is
// no session: every exchange dials, writes one command, reads one reply and
// closes. Each adapter operation performs a full sysinfo refresh before
// reading state, so results are never stale.
//
// Beyond the uniform capability contract, Kasa plugs expose a native schedule
// sub-resource (timed on/off rules stored on the device itself). The Plug
// type passes it through via Schedule, AddScheduleRule, DeleteScheduleRule
// and SetScheduleEnabled; no other brand has an equivalent, so it is not part
// of the device.Device contract.
package kasa
