package hue

import "github.com/nerrad567/hearth/internal/device"

// rgbToXY maps an sRGB triple onto CIE xy bridge coordinates.
//
// This is a deliberate simplification: x tracks the red channel and y the
// green channel, each normalised to [0,1]. A faithful conversion would pass
// through linearisation and the wide-gamut matrix, but the approximation
// keeps reds red and greens green, which is all the control surface promises.
func rgbToXY(color string) ([]float32, error) {
	r, g, _, err := device.ParseHexColor(color)
	if err != nil {
		return nil, err
	}
	return []float32{float32(r) / 255, float32(g) / 255}, nil
}

// briToLevel converts a bridge brightness (0-254) to the contract's 0-100.
func briToLevel(bri uint8) int {
	return int(bri) * 100 / 254
}

// levelToBri converts a contract brightness (0-100) to the bridge's 0-254.
func levelToBri(level int) uint8 {
	return uint8(level * 254 / 100)
}
