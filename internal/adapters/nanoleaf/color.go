package nanoleaf

import "github.com/nerrad567/hearth/internal/device"

// rgbToHSB converts a "#RRGGBB" string to the panel API's colour triple:
// hue 0-360, saturation 0-100, brightness 0-100.
func rgbToHSB(color string) (hue, sat, bri int, err error) {
	r8, g8, b8, err := device.ParseHexColor(color)
	if err != nil {
		return 0, 0, 0, err
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

	return int(h + 0.5), int(s*100 + 0.5), int(max*100 + 0.5), nil
}
