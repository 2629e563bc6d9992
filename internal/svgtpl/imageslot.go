package svgtpl

import (
	"bytes"
	"encoding/base64"
	"image"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	// DefaultImageHeight stands in for the image block whenever no usable
	// image or slot exists; layout still needs a vertical extent.
	DefaultImageHeight = 400.0
	// ImageWidthRatio sizes an image slot that declares no width of its own.
	ImageWidthRatio = 0.90
)

// ImageBlock describes the injected (or defaulted) image region for the
// layout pass. X and Width are the fitted placement in document coordinates;
// Decoded is the raw pixels the overlay pass draws.
type ImageBlock struct {
	X             float64
	Width         float64
	Height        float64
	NaturalWidth  float64
	NaturalAspect float64
	HasImage      bool
	Decoded       image.Image
}

// Figma exports the image region in one of two shapes: a plain <image>
// element, or a <g>/<rect> whose fill points at a reusable <pattern> that in
// turn points at a separate <image> resource. The variant is classified once,
// then injection dispatches on the concrete type.
type imageVariant interface {
	isImageVariant()
}

type directVariant struct {
	el *etree.Element
}

type patternVariant struct {
	fillRect *etree.Element // visible rectangle carrying the pattern fill
	pattern  *etree.Element
	resource *etree.Element // <image> holding the actual payload
	scaleEl  *etree.Element // <use> inside the pattern, or the nested <image>
}

func (directVariant) isImageVariant()  {}
func (patternVariant) isImageVariant() {}

var fillRefPattern = regexp.MustCompile(`url\(#([^)]+)\)`)

// classifyImageSlot walks the slot element and, for the indirect shape, the
// fill → pattern → resource chain. errPatternUnresolved means the chain is
// broken; the caller converts the slot to a direct image instead of failing.
func classifyImageSlot(ix *SlotIndex, el *etree.Element) (imageVariant, error) {
	if el.Tag == "image" {
		return directVariant{el: el}, nil
	}

	rect := findPatternRect(el)
	if rect == nil {
		return nil, errPatternUnresolved
	}
	m := fillRefPattern.FindStringSubmatch(rect.SelectAttrValue("fill", ""))
	if m == nil {
		return nil, errPatternUnresolved
	}
	pattern := ix.Find(m[1])
	if pattern == nil || pattern.Tag != "pattern" {
		return nil, errPatternUnresolved
	}

	// Preferred shape: <pattern><use xlink:href="#image0"/></pattern> with
	// the <image id="image0"> defined elsewhere in the document.
	for _, child := range pattern.ChildElements() {
		if child.Tag != "use" {
			continue
		}
		ref := hrefValue(child)
		if !strings.HasPrefix(ref, "#") {
			continue
		}
		resource := ix.Find(strings.TrimPrefix(ref, "#"))
		if resource == nil || resource.Tag != "image" {
			return nil, errPatternUnresolved
		}
		return patternVariant{fillRect: rect, pattern: pattern, resource: resource, scaleEl: child}, nil
	}

	// Some exports nest the image directly inside the pattern.
	for _, child := range pattern.ChildElements() {
		if child.Tag == "image" {
			return patternVariant{fillRect: rect, pattern: pattern, resource: child, scaleEl: child}, nil
		}
	}
	return nil, errPatternUnresolved
}

// findPatternRect locates the visible rectangle whose fill references a
// pattern, starting at the slot element itself.
func findPatternRect(el *etree.Element) *etree.Element {
	if el.Tag == "rect" && fillRefPattern.MatchString(el.SelectAttrValue("fill", "")) {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findPatternRect(child); found != nil {
			return found
		}
	}
	return nil
}

func hrefValue(el *etree.Element) string {
	if v := el.SelectAttrValue("href", ""); v != "" {
		return v
	}
	return el.SelectAttrValue("xlink:href", "")
}

func setHref(el *etree.Element, uri string) {
	el.CreateAttr("href", uri)
	el.CreateAttr("xlink:href", uri)
}

// imageDataURI wraps raw bytes in a base64 data URI, sniffing the MIME label
// from the magic bytes.
func imageDataURI(data []byte) string {
	return "data:" + mimetype.Detect(data).String() + ";base64," +
		base64.StdEncoding.EncodeToString(data)
}

// InjectImage embeds the supplied image bytes into the main_image slot,
// repositions the slot to newY, and returns the block extent for layout.
// Every anomaly short of a malformed document degrades: missing slot or
// undecodable bytes keep the declared geometry, a broken pattern chain turns
// the slot into a direct image.
func InjectImage(t *Template, ix *SlotIndex, data []byte, newY float64, log *zap.SugaredLogger) ImageBlock {
	el := ix.Find(SlotImage)
	if el == nil {
		log.Warnw("image slot missing, using default geometry", "slot", SlotImage)
		return ImageBlock{Height: DefaultImageHeight}
	}

	if len(data) == 0 {
		// Text-only card: the slot keeps its authored size.
		return ImageBlock{Height: declaredImageHeight(el)}
	}

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warnw("image decode failed, rendering without image", "err", err)
		return ImageBlock{Height: declaredImageHeight(el)}
	}
	bounds := decoded.Bounds()
	natW := float64(bounds.Dx())
	natH := float64(bounds.Dy())
	if natW <= 0 || natH <= 0 {
		log.Warnw("image has empty bounds, rendering without image")
		return ImageBlock{Height: declaredImageHeight(el)}
	}
	aspect := natW / natH
	uri := imageDataURI(data)

	variant, err := classifyImageSlot(ix, el)
	if err != nil {
		log.Warnw("image fill reference unresolved, converting slot to direct image")
		variant = convertToDirect(t, el)
	}

	var x, width, height float64
	switch v := variant.(type) {
	case directVariant:
		x, width, height = injectDirect(t, v, uri, aspect, newY)
	case patternVariant:
		x, width, height = injectPattern(t, v, uri, natW, natH, aspect, newY)
	}

	log.Debugw("image injected", "y", newY, "height", height, "aspect", aspect)
	return ImageBlock{
		X:             x,
		Width:         width,
		Height:        height,
		NaturalWidth:  natW,
		NaturalAspect: aspect,
		HasImage:      true,
		Decoded:       decoded,
	}
}

// declaredImageHeight reads the slot's authored height, looking through a
// container to its pattern rect when needed.
func declaredImageHeight(el *etree.Element) float64 {
	if h, ok := parseLength(el.SelectAttrValue("height", "")); ok && h > 0 {
		return h
	}
	if rect := findPatternRect(el); rect != nil {
		return attrFloat(rect, "height", DefaultImageHeight)
	}
	return DefaultImageHeight
}

// injectDirect sets the payload on a plain <image>. The declared width is
// authoritative; height follows the natural aspect ratio.
func injectDirect(t *Template, v directVariant, uri string, aspect, newY float64) (x, width, height float64) {
	width = attrFloat(v.el, "width", t.Width*ImageWidthRatio)
	height = width / aspect
	x = attrFloat(v.el, "x", (t.Width-width)/2)

	setHref(v.el, uri)
	v.el.CreateAttr("y", ftoa(newY))
	v.el.CreateAttr("width", ftoa(width))
	v.el.CreateAttr("height", ftoa(height))
	return x, width, height
}

// injectPattern updates all three linked points of the indirection chain: the
// resource payload and intrinsic size, the pattern's content scale, and the
// visible rectangle's position and height.
func injectPattern(t *Template, v patternVariant, uri string, natW, natH, aspect, newY float64) (x, width, height float64) {
	setHref(v.resource, uri)
	v.resource.CreateAttr("width", ftoa(natW))
	v.resource.CreateAttr("height", ftoa(natH))

	// Content-to-bounding-box scale: one image pixel maps to 1/natural of
	// the pattern tile, so the fill covers the rect exactly.
	v.pattern.CreateAttr("patternContentUnits", "objectBoundingBox")
	v.pattern.CreateAttr("width", "1")
	v.pattern.CreateAttr("height", "1")
	v.scaleEl.CreateAttr("transform", "scale("+ftoa(1/natW)+" "+ftoa(1/natH)+")")

	width = attrFloat(v.fillRect, "width", t.Width*ImageWidthRatio)
	height = width / aspect
	x = attrFloat(v.fillRect, "x", (t.Width-width)/2)
	v.fillRect.CreateAttr("y", ftoa(newY))
	v.fillRect.CreateAttr("height", ftoa(height))
	return x, width, height
}

// convertToDirect rewrites a container whose fill chain is broken into a
// bare <image> in place, keeping its id and the authored geometry.
func convertToDirect(t *Template, el *etree.Element) directVariant {
	width := attrFloat(el, "width", 0)
	x, hasX := parseLength(el.SelectAttrValue("x", ""))
	if rect := findPatternRect(el); rect != nil {
		if width <= 0 {
			width = attrFloat(rect, "width", 0)
		}
		if !hasX {
			x, hasX = parseLength(rect.SelectAttrValue("x", ""))
		}
	}
	if width <= 0 {
		width = t.Width * ImageWidthRatio
	}

	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}
	el.Tag = "image"
	el.RemoveAttr("fill")
	el.CreateAttr("width", ftoa(width))
	if hasX {
		el.CreateAttr("x", ftoa(x))
	}
	return directVariant{el: el}
}
