package svgtpl

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/font"
)

// Overlay carries the content the vector pass cannot draw itself: the decoded
// injected image and the text runs. The rasterizer composites it over the
// vector output. Coordinates are document pixels; the builder always
// rasterizes at the document's own size, so no extra scaling applies.
type Overlay struct {
	Image     image.Image     // nil when the card is text-only
	ImageRect image.Rectangle // placement of the fitted image
	Texts     []TextSpan
}

// TextSpan is one line of text with its baseline origin.
type TextSpan struct {
	Value string
	X, Y  float64
	Face  font.Face
	Color color.Color
}

// parseFill resolves a fill attribute to a drawable color. Supports #rgb and
// #rrggbb hex plus the two names the deployed templates use; anything else
// falls back to SVG's default fill, black.
func parseFill(s string) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "white":
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	case "", "black":
		return color.NRGBA{A: 255}
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return color.NRGBA{
					R: uint8(v >> 16),
					G: uint8(v >> 8),
					B: uint8(v),
					A: 255,
				}
			}
		}
	}
	return color.NRGBA{A: 255}
}
