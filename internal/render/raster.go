// Package render holds the raster side of the pipeline: SVG rasterization,
// overlay compositing, canvas composition and QR share codes.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/youruser/cardforge/internal/svgtpl"
)

// ErrRasterize wraps every failure of the vector-to-raster step. Fatal for
// the render that hit it.
var ErrRasterize = errors.New("svg rasterization failed")

// SVGRasterizer renders serialized SVG documents with oksvg/rasterx.
// Stateless and safe for concurrent use.
//
// oksvg draws paths, rects and fills but skips <image> payloads and <text>
// glyphs entirely, so those arrive in the overlay and are composited here
// after the vector pass.
type SVGRasterizer struct{}

// Rasterize draws the document into a buffer of exactly width×height pixels,
// scaling the SVG viewport to the target, then layers the overlay content on
// top. Overlay coordinates are document pixels; the builder always requests
// the document's own size, so they land one to one.
func (SVGRasterizer) Rasterize(ctx context.Context, svg []byte, width, height int, ov svgtpl.Overlay) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid target size %dx%d", ErrRasterize, width, height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)

	var dst draw.Image = rgba
	if ov.Image != nil && ov.ImageRect.Dx() > 0 && ov.ImageRect.Dy() > 0 {
		fitted := imaging.Resize(ov.Image, ov.ImageRect.Dx(), ov.ImageRect.Dy(), imaging.Lanczos)
		dst = imaging.Overlay(dst, fitted, ov.ImageRect.Min, 1.0)
	}

	for _, span := range ov.Texts {
		if span.Face == nil || span.Value == "" {
			continue
		}
		col := span.Color
		if col == nil {
			col = color.Black
		}
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(col),
			Face: span.Face,
			Dot:  fixed.P(int(span.X+0.5), int(span.Y+0.5)),
		}
		d.DrawString(span.Value)
	}

	return dst, nil
}
