package svgtpl

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"
)

// Rasterizer turns a serialized SVG document into pixels at an explicit size,
// compositing the overlay (injected image, text runs) over the vector output.
// Implemented in internal/render; kept as an interface so the builder tests
// run without a real raster pass.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, width, height int, ov Overlay) (image.Image, error)
}

// Composer places the rasterized card onto the fixed output canvas and
// encodes the result.
type Composer interface {
	Compose(card image.Image) ([]byte, error)
}

// CardRequest is one card to render. Title is carried for upstream consumers
// (video captions) and not laid out here. Image is optional raw bytes in any
// common raster encoding; Source defaults to "source: web".
type CardRequest struct {
	TemplatePath string
	Title        string
	Body         string
	Image        []byte
	Source       string
}

// Builder renders cards from SVG templates. Safe for concurrent use: every
// render parses its own tree and mutates only that.
type Builder struct {
	log    *zap.SugaredLogger
	fonts  *FontManager
	raster Rasterizer
	canvas Composer
}

// NewBuilder wires a builder. fontData may be nil to use the embedded
// fallback face; a font that fails to parse degrades to that same fallback.
func NewBuilder(log *zap.SugaredLogger, fontData []byte, raster Rasterizer, canvas Composer) *Builder {
	fm, err := NewFontManager(fontData)
	if err != nil {
		log.Warnw("channel font unusable, using embedded fallback", "err", err)
		fm, err = NewFontManager(nil)
		if err != nil {
			log.Errorw("embedded fallback font unusable", "err", err)
			fm = nil
		}
	}
	return &Builder{log: log, fonts: fm, raster: raster, canvas: canvas}
}

// BuildCard runs the full pipeline for one card: load, index, inject text,
// image and source, recompute geometry, rasterize, compose. The returned
// bytes are a PNG at the composer's fixed canvas size. Errors are limited to
// conditions that prevent any output; everything else degrades the card.
func (b *Builder) BuildCard(ctx context.Context, req CardRequest) ([]byte, error) {
	tpl, err := Load(req.TemplatePath)
	if err != nil {
		return nil, err
	}

	png, _, err := b.buildOn(ctx, tpl, req)
	return png, err
}

// BuildCardLayout is BuildCard plus the computed layout, for callers that
// need the final geometry (tests, debug endpoints).
func (b *Builder) BuildCardLayout(ctx context.Context, req CardRequest) ([]byte, LayoutResult, error) {
	tpl, err := Load(req.TemplatePath)
	if err != nil {
		return nil, LayoutResult{}, err
	}
	return b.buildOn(ctx, tpl, req)
}

func (b *Builder) buildOn(ctx context.Context, tpl *Template, req CardRequest) ([]byte, LayoutResult, error) {
	ix := BuildIndex(tpl)

	text := InjectText(tpl, ix, req.Body, b.fonts, b.log)

	imageY := text.StartY + text.Height() + GapTextImage
	img := InjectImage(tpl, ix, req.Image, imageY, b.log)

	sourceY := imageY + img.Height + GapImageSource
	src := InjectSource(tpl, ix, req.Source, sourceY, b.log)

	layout := ComputeLayout(tpl, text, img)
	ApplyLayout(tpl, layout)

	if err := ctx.Err(); err != nil {
		return nil, layout, err
	}

	svg, err := tpl.Bytes()
	if err != nil {
		return nil, layout, fmt.Errorf("serialize template: %w", err)
	}

	card, err := b.raster.Rasterize(ctx, svg, int(layout.FinalWidth), int(layout.FinalHeight),
		b.overlay(text, img, src, layout))
	if err != nil {
		return nil, layout, err
	}

	if err := ctx.Err(); err != nil {
		return nil, layout, err
	}

	out, err := b.canvas.Compose(card)
	if err != nil {
		return nil, layout, fmt.Errorf("compose canvas: %w", err)
	}

	b.log.Infow("card rendered",
		"lines", len(text.Lines),
		"image", img.HasImage,
		"size", fmt.Sprintf("%.0fx%.0f", layout.FinalWidth, layout.FinalHeight),
		"bytes", len(out))
	return out, layout, nil
}

// overlay collects everything the vector pass cannot draw. The rasterizer
// supports neither <image> payloads nor <text> glyphs, so the injected image
// and every text line are handed over as pixels-to-composite instead.
func (b *Builder) overlay(text *TextBlock, img ImageBlock, src *SourceBlock, layout LayoutResult) Overlay {
	var ov Overlay

	if img.HasImage && img.Decoded != nil {
		ov.Image = img.Decoded
		ov.ImageRect = image.Rect(
			int(img.X), int(layout.ImageY),
			int(img.X+img.Width), int(layout.ImageY+img.Height))
	}

	if b.fonts == nil {
		return ov
	}
	if face, err := b.fonts.Face(text.FontSize); err == nil {
		for i, line := range text.Lines {
			if line == "" {
				continue
			}
			ov.Texts = append(ov.Texts, TextSpan{
				Value: line,
				X:     text.X,
				Y:     text.StartY + float64(i)*text.LineHeight,
				Face:  face,
				Color: text.Color,
			})
		}
	} else {
		b.log.Warnw("body face unavailable, text not drawn", "err", err)
	}
	if src != nil {
		if face, err := b.fonts.Face(src.FontSize); err == nil {
			ov.Texts = append(ov.Texts, TextSpan{
				Value: src.Text,
				X:     src.X,
				Y:     src.Y,
				Face:  face,
				Color: src.Color,
			})
		} else {
			b.log.Warnw("source face unavailable, attribution not drawn", "err", err)
		}
	}
	return ov
}
