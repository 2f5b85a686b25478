package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lx7/monotile/internal/shell"
)

// Color is RGBA with each channel in [0, 1].
type Color [4]float32

var ErrInvalidColor = fmt.Errorf("invalid color")

// ParseColor reads "#rrggbb" or "#rrggbbaa" (the hash optional). A missing
// alpha means fully opaque.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Style carries every visual parameter the composer needs, resolved once from
// config at startup.
type Style struct {
	BorderWidth  int
	SingleBorder bool

	Background Color
	Root       Color
	Border     Color
	Focus      Color
	Urgent     Color

	FloatRadius float64
	TiledRadius float64

	ShadowColor    Color
	ShadowSoftness int
	ShadowSpread   int
	ShadowOffset   shell.Point
}
