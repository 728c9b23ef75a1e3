package imagepipe

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a plain 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// ParseHex converts "#RRGGBB" into an RGB triple.
func ParseHex(hex string) (RGB, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("imagepipe: invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("imagepipe: invalid hex color %q", hex)
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Hex renders the color back as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Darken scales each channel by factor (0.0 = black, 1.0 = unchanged).
func (c RGB) Darken(factor float64) RGB {
	if factor < 0 {
		factor = 0
	}
	return RGB{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}
