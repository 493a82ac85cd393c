// Package tuya adapts Tuya-firmware devices to the device contract.
//
// Several budget brands (Geeni and Cree among them) ship rebadged Tuya
// hardware, so one adapter covers them all; the brand tag is a label chosen
// at construction, not a protocol difference.
//
// # Protocol
//
// Devices speak the Tuya local protocol version 3.3 on TCP port 6668.
// Messages are framed with a fixed prefix and suffix, a CRC32 checksum, and
// an AES-128-ECB encrypted JSON payload keyed by the device's local key.
// Control commands carry a 15-byte version header before the ciphertext;
// data-point queries do not. The local key and device id come from the
// vendor's pairing flow and must be extracted by the user beforehand.
//
// # Data Points
//
// Device state is a flat map of numbered data points ("dps") whose meaning
// varies by product generation. The adapter resolves state heuristically:
// power is dps 20, else dps 1, else the first boolean present, else off;
// brightness is dps 22 on a 0-1000 scale, else dps 2; colour is dps 5.
package tuya
