package imaging

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Highlight colours for the two difference kinds. They share chroma and
// luminance in HCL space so neither kind draws the eye more than the other.
var (
	FirstColor  = hclColor(25, 0.75, 0.55)
	SecondColor = hclColor(145, 0.75, 0.55)
)

func hclColor(h, c, l float64) color.RGBA {
	r, g, b := colorful.Hcl(h, c, l).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Side names the document a highlight is drawn on.
type Side int

const (
	SideFirst Side = iota + 1
	SideSecond
)

func (s Side) String() string {
	switch s {
	case SideFirst:
		return "first"
	case SideSecond:
		return "second"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Color returns the default highlight colour for s.
func (s Side) Color() color.RGBA {
	if s == SideSecond {
		return SecondColor
	}
	return FirstColor
}

// ParseSide accepts "first", "1" or "image1" and their second-side
// counterparts, case-insensitively.
func ParseSide(side string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "first", "1", "image1":
		return SideFirst, nil
	case "second", "2", "image2":
		return SideSecond, nil
	default:
		return 0, fmt.Errorf("unknown side %q: want first or second", side)
	}
}

// SideColor returns the highlight colour for a side name.
func SideColor(side string) (color.RGBA, error) {
	s, err := ParseSide(side)
	if err != nil {
		return color.RGBA{}, err
	}
	return s.Color(), nil
}

// ParseColor parses a "#RRGGBB" or "#RGB" colour.
func ParseColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
