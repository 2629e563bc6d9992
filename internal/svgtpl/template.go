package svgtpl

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Fallback canvas size when the template declares neither width/height nor a
// usable viewBox.
const (
	DefaultCanvasWidth  = 500.0
	DefaultCanvasHeight = 800.0
)

// Template is one freshly parsed SVG document. Every render request loads its
// own Template; nothing is cached or shared, so the injectors may mutate the
// tree in place.
type Template struct {
	doc  *etree.Document
	root *etree.Element

	// Canvas dimensions resolved at parse time. Width may grow later for
	// wide landscape images; Height grows with content. Neither shrinks
	// below the authored values.
	Width  float64
	Height float64
}

// Load reads and parses an SVG template from disk.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Template from raw SVG bytes. Unparseable input or a missing
// <svg> root is a MalformedTemplate error; the caller gets no partial result.
func Parse(data []byte) (*Template, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("%w: document root is not <svg>", ErrMalformedTemplate)
	}

	t := &Template{doc: doc, root: root}
	t.Width, t.Height = resolveDimensions(root)
	return t, nil
}

// Root exposes the document root for traversal. Mutations through it belong
// to this render only.
func (t *Template) Root() *etree.Element { return t.root }

// Bytes serializes the (possibly mutated) document for the rasterizer.
func (t *Template) Bytes() ([]byte, error) {
	return t.doc.WriteToBytes()
}

// resolveDimensions extracts the canvas size: explicit width/height attributes
// first, then the viewBox, then the documented defaults. All string-to-number
// coercion ("px" suffixes included) happens here, once, at the parse boundary.
func resolveDimensions(root *etree.Element) (w, h float64) {
	w, wOK := parseLength(root.SelectAttrValue("width", ""))
	h, hOK := parseLength(root.SelectAttrValue("height", ""))
	if wOK && hOK {
		return w, h
	}

	if vb := strings.Fields(root.SelectAttrValue("viewBox", "")); len(vb) == 4 {
		vw, vwOK := parseLength(vb[2])
		vh, vhOK := parseLength(vb[3])
		if !wOK && vwOK {
			w, wOK = vw, true
		}
		if !hOK && vhOK {
			h, hOK = vh, true
		}
	}

	if !wOK || w <= 0 {
		w = DefaultCanvasWidth
	}
	if !hOK || h <= 0 {
		h = DefaultCanvasHeight
	}
	return w, h
}

// parseLength converts an SVG length attribute to a float. Accepts an
// optional "px" suffix; anything else non-numeric fails the parse.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v || v < 0 {
		return 0, false
	}
	return v, true
}

// attrFloat reads a numeric attribute off an element, falling back to def
// when absent or malformed.
func attrFloat(el *etree.Element, name string, def float64) float64 {
	if v, ok := parseLength(el.SelectAttrValue(name, "")); ok {
		return v
	}
	return def
}

// ftoa renders a float for an SVG attribute without a trailing ".0" noise.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
