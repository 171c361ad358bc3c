package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Palette holds the resolved dashboard colors for each faction.
type Palette struct {
	Human    tcell.Color
	Infected tcell.Color
	Dead     tcell.Color
}

// Palette resolves the configured hex colors, falling back to fixed terminal
// colors for entries that do not parse.
func (c ColorDef) Palette() Palette {
	return Palette{
		Human:    colorOr(c.Human, tcell.ColorBlue),
		Infected: colorOr(c.Infected, tcell.ColorGreen),
		Dead:     colorOr(c.Dead, tcell.ColorDarkGray),
	}
}

func colorOr(hex string, fallback tcell.Color) tcell.Color {
	color, err := ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return color
}

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}

	return tcell.NewRGBColor(int32(rgb>>16&0xFF), int32(rgb>>8&0xFF), int32(rgb&0xFF)), nil
}
