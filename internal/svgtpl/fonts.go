package svgtpl

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager holds one parsed OpenType font and hands out faces at render
// sizes. If no channel font is supplied the embedded Go Regular is used, so a
// measuring face is almost always available and the chars-per-line heuristic
// stays a fallback, not the default.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager parses raw TTF/OTF bytes; empty data selects the embedded
// Go Regular fallback.
func NewFontManager(data []byte) (*FontManager, error) {
	if len(data) == 0 {
		data = goregular.TTF
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontManager{parsed: parsed}, nil
}

// Face builds a measuring face at the given pixel size.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face at %.1fpx: %w", size, err)
	}
	return face, nil
}
