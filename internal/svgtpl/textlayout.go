package svgtpl

import (
	"image/color"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"go.uber.org/zap"
	"golang.org/x/image/font"
)

// Body text defaults, used when the template omits the attribute.
const (
	DefaultFontSize  = 22.0
	DefaultTextX     = 54.0
	TopPadding       = 80.0
	lineHeightFactor = 1.35
	// Average glyph advance as a fraction of the font size. Only consulted
	// when no measuring face is available.
	charWidthFactor = 0.55
)

// TextBlock is the wrapped body text of one render. It is rebuilt from
// scratch every call and never mutated afterwards.
type TextBlock struct {
	Lines      []string
	X          float64
	StartY     float64
	LineHeight float64
	FontSize   float64
	Color      color.Color
}

// Height is the vertical extent of the block. Lines is never empty (an empty
// body yields one empty line), so this is never zero.
func (b *TextBlock) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

func lineHeightFor(fontSize float64) float64 {
	return fontSize * lineHeightFactor
}

// WrapText greedily wraps body into lines that fit availWidth. With a face it
// measures real glyph advances; without one it falls back to a character
// budget of availWidth / (fontSize × charWidthFactor). Words longer than the
// budget are kept whole. Empty input yields a single empty line so downstream
// height arithmetic never sees zero lines.
func WrapText(body string, face font.Face, availWidth, fontSize float64) []string {
	words := strings.Fields(body)
	if len(words) == 0 {
		return []string{""}
	}

	if face == nil {
		return wrapByBudget(words, availWidth, fontSize)
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(face, candidate) <= availWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func wrapByBudget(words []string, availWidth, fontSize float64) []string {
	budget := int(availWidth / (fontSize * charWidthFactor))
	if budget < 1 {
		budget = 1
	}
	wrapped := wordwrap.WrapString(strings.Join(words, " "), uint(budget))
	return strings.Split(wrapped, "\n")
}

// measure returns the advance width of s in pixels.
func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64.0
}

// InjectText wraps body into the input_text slot as one <tspan> per line and
// returns the resulting block. A missing slot degrades to a single default
// line at TopPadding so the layout pass still has a text bottom to build on.
func InjectText(t *Template, ix *SlotIndex, body string, fm *FontManager, log *zap.SugaredLogger) *TextBlock {
	el := ix.Find(SlotText)
	if el == nil {
		log.Warnw("text slot missing, using default geometry", "slot", SlotText)
		return &TextBlock{
			Lines:      []string{""},
			X:          DefaultTextX,
			StartY:     TopPadding,
			LineHeight: lineHeightFor(DefaultFontSize),
			FontSize:   DefaultFontSize,
			Color:      parseFill(""),
		}
	}

	x, y := textOrigin(el, DefaultTextX, TopPadding)
	fontSize := attrFloat(el, "font-size", DefaultFontSize)
	availWidth := t.Width - 2*x
	if availWidth < fontSize {
		availWidth = fontSize
	}

	var face font.Face
	if fm != nil {
		f, err := fm.Face(fontSize)
		if err != nil {
			log.Warnw("measuring face unavailable, using character budget", "err", err)
		} else {
			face = f
		}
	}

	lines := WrapText(body, face, availWidth, fontSize)
	lineHeight := lineHeightFor(fontSize)

	// Rebuild the slot's content: drop whatever the designer left inside.
	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}
	for i, line := range lines {
		ts := el.CreateElement("tspan")
		ts.CreateAttr("x", ftoa(x))
		if i == 0 {
			ts.CreateAttr("y", ftoa(y))
		} else {
			ts.CreateAttr("dy", ftoa(lineHeight))
		}
		ts.SetText(line)
	}

	log.Debugw("text injected", "lines", len(lines), "height", float64(len(lines))*lineHeight)
	return &TextBlock{
		Lines:      lines,
		X:          x,
		StartY:     y,
		LineHeight: lineHeight,
		FontSize:   fontSize,
		Color:      parseFill(el.SelectAttrValue("fill", "")),
	}
}
