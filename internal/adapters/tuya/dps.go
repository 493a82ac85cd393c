package tuya

import (
	"fmt"
	"sort"

	"github.com/nerrad567/hearth/internal/device"
)

// Data-point keys across Tuya product generations. Newer bulbs use the
// 20-range, older ones the single digits.
const (
	dpsPower            = "20"
	dpsPowerLegacy      = "1"
	dpsBrightness       = "22"
	dpsBrightnessLegacy = "2"
	dpsColor            = "5"
)

// powerKey picks the data point to write for on/off: dps 20 when present,
// else dps 1, else the lowest-numbered boolean data point, else dps 1.
func powerKey(dps map[string]any) string {
	if _, ok := dps[dpsPower].(bool); ok {
		return dpsPower
	}
	if _, ok := dps[dpsPowerLegacy].(bool); ok {
		return dpsPowerLegacy
	}

	keys := make([]string, 0, len(dps))
	for k, v := range dps {
		if _, ok := v.(bool); ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return dpsPowerLegacy
	}
	sort.Strings(keys)
	return keys[0]
}

// powerFromDPS resolves on/off state: dps 20, else dps 1, else the first
// boolean data point, else off.
func powerFromDPS(dps map[string]any) bool {
	if v, ok := dps[dpsPower].(bool); ok {
		return v
	}
	if v, ok := dps[dpsPowerLegacy].(bool); ok {
		return v
	}

	keys := make([]string, 0, len(dps))
	for k, v := range dps {
		if _, ok := v.(bool); ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return false
	}
	sort.Strings(keys)
	v, _ := dps[keys[0]].(bool)
	return v
}

// brightnessFromDPS resolves brightness onto the 0-100 scale: dps 22 runs
// 0-1000, the legacy dps 2 runs 0-255. Returns false when the device
// reports neither.
func brightnessFromDPS(dps map[string]any) (int, bool) {
	if v, ok := dps[dpsBrightness].(float64); ok {
		return int(v) / 10, true
	}
	if v, ok := dps[dpsBrightnessLegacy].(float64); ok {
		return int(v) * 100 / 255, true
	}
	return 0, false
}

// brightnessToDPS builds the write for a 0-100 level against whichever
// brightness data point the device reports. An empty dps map gets the
// modern key.
func brightnessToDPS(dps map[string]any, level int) (string, int) {
	if _, ok := dps[dpsBrightnessLegacy]; ok {
		if _, modern := dps[dpsBrightness]; !modern {
			return dpsBrightnessLegacy, level * 255 / 100
		}
	}
	return dpsBrightness, level * 10
}

// colorToDPS encodes "#RRGGBB" into the dps 5 colour string: six hex digits
// of RGB followed by hue (four digits, 0-360), saturation and value (two
// digits each, 0-255).
func colorToDPS(color string) (string, error) {
	r8, g8, b8, err := device.ParseHexColor(color)
	if err != nil {
		return "", err
	}

	r := float64(r8) / 255
	g := float64(g8) / 255
	b := float64(b8) / 255

	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}
	delta := max - min

	var h float64
	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * ((g - b) / delta)
		if h < 0 {
			h += 360
		}
	case max == g:
		h = 60*((b-r)/delta) + 120
	default:
		h = 60*((r-g)/delta) + 240
	}

	var s float64
	if max > 0 {
		s = delta / max
	}

	return fmt.Sprintf("%02x%02x%02x%04x%02x%02x",
		r8, g8, b8, int(h+0.5), int(s*255+0.5), int(max*255+0.5)), nil
}
