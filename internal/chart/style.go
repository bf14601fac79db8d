package chart

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/vg/draw"
)

var shortColors = map[string]color.Color{
	"b": colornames.Blue,
	"g": colornames.Green,
	"r": colornames.Red,
	"c": colornames.Cyan,
	"m": colornames.Magenta,
	"y": colornames.Yellow,
	"k": colornames.Black,
	"w": colornames.White,
}

var fallback = func() []color.Color {
	p, err := brewer.GetPalette(brewer.TypeQualitative, "Set1", 9)
	if err != nil {
		panic(err)
	}
	return p.Colors()
}()

// solverColor resolves a configured color: "#rrggbb", an SVG color name or a
// one-letter shorthand. Anything else takes the idx-th palette color.
func solverColor(name string, idx int) color.Color {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := parseHex(name); ok {
		return c
	}
	if c, ok := shortColors[name]; ok {
		return c
	}
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	return fallback[idx%len(fallback)]
}

func parseHex(s string) (color.Color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return nil, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// glyph maps a marker code to a glyph. Unknown codes draw a ring.
func glyph(marker string) draw.GlyphDrawer {
	switch marker {
	case "s":
		return draw.SquareGlyph{}
	case "^":
		return draw.TriangleGlyph{}
	case "v":
		return draw.PyramidGlyph{}
	case "D", "d":
		return draw.BoxGlyph{}
	case "P", "+":
		return draw.PlusGlyph{}
	case "X", "x":
		return draw.CrossGlyph{}
	case "*", ".":
		return draw.CircleGlyph{}
	default:
		return draw.RingGlyph{}
	}
}
