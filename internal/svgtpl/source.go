package svgtpl

import (
	"image/color"

	"go.uber.org/zap"
)

// DefaultSource is used when the caller supplies no attribution.
const DefaultSource = "source: web"

// SourceHeight is the attribution line's vertical extent in layout.
const SourceHeight = 20.0

// DefaultSourceFontSize applies when the template declares none.
const DefaultSourceFontSize = 12.0

// SourceBlock is the injected attribution line and where it sits.
type SourceBlock struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
	Color    color.Color
}

// InjectSource replaces the source slot's content with the attribution string
// and repositions it to y. Prior content is always cleared first, so repeated
// calls on the same tree converge to the same result. A missing slot returns
// nil and the card renders without attribution.
func InjectSource(t *Template, ix *SlotIndex, attribution string, y float64, log *zap.SugaredLogger) *SourceBlock {
	if attribution == "" {
		attribution = DefaultSource
	}

	el := ix.Find(SlotSource)
	if el == nil {
		log.Warnw("source slot missing, skipping attribution", "slot", SlotSource)
		return nil
	}

	el.CreateAttr("y", ftoa(y))
	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}
	el.SetText(attribution)

	return &SourceBlock{
		Text:     attribution,
		X:        attrFloat(el, "x", DefaultTextX),
		Y:        y,
		FontSize: attrFloat(el, "font-size", DefaultSourceFontSize),
		Color:    parseFill(el.SelectAttrValue("fill", "")),
	}
}
