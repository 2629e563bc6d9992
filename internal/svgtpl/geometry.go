package svgtpl

import "github.com/beevik/etree"

// Fixed gaps and padding of the vertical layout. Tuned against the deployed
// Figma templates.
const (
	GapTextImage   = 20.0
	GapImageSource = 12.0
	BottomPadding  = 30.0
)

// Width growth bounds for markedly landscape images.
const (
	MinCardWidth = 320.0
	MaxCardWidth = 1080.0
	// wideAspect is the natural aspect ratio beyond which the card widens
	// to give the image more room.
	wideAspect = 1.6
)

// LayoutResult carries every computed offset of one render. Downstream
// stages (resize, rasterize, compose) consume it and never re-derive offsets.
type LayoutResult struct {
	TextBottom  float64
	ImageY      float64
	ImageBottom float64
	SourceY     float64
	FinalWidth  float64
	FinalHeight float64
}

// ComputeLayout runs the dependency-ordered layout pass: each block's position
// depends only on the blocks above it. The authored template size is a floor;
// the card grows with content but never shrinks.
func ComputeLayout(t *Template, text *TextBlock, img ImageBlock) LayoutResult {
	var r LayoutResult

	r.TextBottom = text.StartY + text.Height()
	r.ImageY = r.TextBottom + GapTextImage
	r.ImageBottom = r.ImageY + img.Height
	r.SourceY = r.ImageBottom + GapImageSource
	r.FinalHeight = r.SourceY + SourceHeight + BottomPadding
	if r.FinalHeight < t.Height {
		r.FinalHeight = t.Height
	}

	r.FinalWidth = t.Width
	if img.HasImage && img.NaturalAspect > wideAspect {
		grown := img.NaturalWidth / ImageWidthRatio
		if grown > r.FinalWidth {
			r.FinalWidth = grown
		}
		if r.FinalWidth > MaxCardWidth {
			r.FinalWidth = MaxCardWidth
		}
	}
	if r.FinalWidth < MinCardWidth {
		r.FinalWidth = MinCardWidth
	}

	return r
}

// ApplyLayout writes the final document size back onto the tree: root
// width/height, viewBox, and the full-width background rectangle when one
// exists.
func ApplyLayout(t *Template, r LayoutResult) {
	t.root.CreateAttr("width", ftoa(r.FinalWidth))
	t.root.CreateAttr("height", ftoa(r.FinalHeight))
	t.root.CreateAttr("viewBox", "0 0 "+ftoa(r.FinalWidth)+" "+ftoa(r.FinalHeight))

	if bg := findBackgroundRect(t.root, t.Width); bg != nil {
		bg.CreateAttr("width", ftoa(r.FinalWidth))
		bg.CreateAttr("height", ftoa(r.FinalHeight))
	}

	t.Width = r.FinalWidth
	t.Height = r.FinalHeight
}

// findBackgroundRect picks the first rect spanning (nearly) the full original
// width; that is the card background in the deployed templates.
func findBackgroundRect(el *etree.Element, origWidth float64) *etree.Element {
	if el.Tag == "rect" && attrFloat(el, "width", 0) >= origWidth*0.9 {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findBackgroundRect(child, origWidth); found != nil {
			return found
		}
	}
	return nil
}
