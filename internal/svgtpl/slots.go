package svgtpl

import "github.com/beevik/etree"

// Slot ids the injectors look for. Templates are authored in Figma and
// exported with these ids on the dynamic regions.
const (
	SlotText   = "input_text"
	SlotImage  = "main_image"
	SlotSource = "source"
)

// SlotIndex maps element ids to handles in one document. It is built with a
// single full-tree walk per render; downstream stages receive handles, never
// ids, so no stage re-scans the tree.
type SlotIndex struct {
	byID map[string]*etree.Element
}

// BuildIndex walks the whole tree once and records every id it sees. Later
// duplicates of an id are ignored; the first occurrence wins.
func BuildIndex(t *Template) *SlotIndex {
	ix := &SlotIndex{byID: make(map[string]*etree.Element)}
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" {
			if _, seen := ix.byID[id]; !seen {
				ix.byID[id] = el
			}
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(t.root)
	return ix
}

// Find returns the element carrying the given id, or nil. A nil result is a
// normal condition: the injectors degrade with defaults rather than fail.
func (ix *SlotIndex) Find(id string) *etree.Element {
	return ix.byID[id]
}

// textOrigin resolves a text slot's first-line coordinates. Figma sometimes
// puts x/y on the <text> node and sometimes on its first <tspan>; the tspan
// takes precedence when it carries its own coordinates.
func textOrigin(el *etree.Element, defX, defY float64) (x, y float64) {
	x = attrFloat(el, "x", defX)
	y = attrFloat(el, "y", defY)
	for _, child := range el.ChildElements() {
		if child.Tag == "tspan" {
			x = attrFloat(child, "x", x)
			y = attrFloat(child, "y", y)
			break
		}
	}
	return x, y
}
