package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Output canvas of the deployed vertical-video pipeline.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920
	CardMargin   = 50 // px of background visible around the card
)

// Canvas centers a rendered card on a fixed-size transparent surface. The
// output is always exactly Width×Height; the card is scaled to fit inside the
// margins, never cropped.
type Canvas struct {
	Width  int
	Height int
	Margin int
}

// NewCanvas returns the deployment's 1080×1920 canvas with uniform margins.
func NewCanvas() Canvas {
	return Canvas{Width: CanvasWidth, Height: CanvasHeight, Margin: CardMargin}
}

// Compose scales card to fit the canvas minus margins (fit-by-width or
// fit-by-height, whichever avoids overflow), centers it over full
// transparency and encodes the result as PNG.
func (c Canvas) Compose(card image.Image) ([]byte, error) {
	if card == nil || card.Bounds().Dx() == 0 || card.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("compose: empty card image")
	}

	canvas := imaging.New(c.Width, c.Height, color.NRGBA{})

	targetW := c.Width - 2*c.Margin
	targetH := c.Height - 2*c.Margin

	cardW := float64(card.Bounds().Dx())
	cardH := float64(card.Bounds().Dy())
	cardRatio := cardW / cardH
	targetRatio := float64(targetW) / float64(targetH)

	var newW, newH int
	if cardRatio > targetRatio {
		// Wider than the target area: width decides.
		newW = targetW
		newH = int(float64(newW) / cardRatio)
	} else {
		newH = targetH
		newW = int(float64(newH) * cardRatio)
	}

	fitted := imaging.Resize(card, newW, newH, imaging.Lanczos)
	offset := image.Pt((c.Width-newW)/2, (c.Height-newH)/2)
	canvas = imaging.Overlay(canvas, fitted, offset, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
