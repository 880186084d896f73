package view

import (
	"maps"
	"slices"
)

// Binding attributes. Each names the data point an element renders.
const (
	AttrID         = "data-id"
	AttrStateID    = "data-state-id"
	AttrHiddenID   = "data-hidden-id"
	AttrExtraID    = "data-extra-id"
	AttrUnreach    = "data-unreach"
	AttrRSSI       = "data-rssi"
	AttrLowBat     = "data-lowbat"
	AttrDimmerID   = "data-dimmer-id"
	AttrRGBID      = "data-rgb-id"
	AttrHueID      = "data-hue-id"
	AttrTempID     = "data-temperature-id"
	AttrSetpointID = "data-setpoint-id"
	AttrProgressID = "data-progress-id"
	AttrLengthID   = "data-length-id"
	AttrHTMLID     = "data-html-id"
	AttrErrorID    = "data-error-id"
	AttrWarningID  = "data-warning-id"
	AttrAlarmID    = "data-alarm-id"
)

// Presentation attributes read by refresh routines.
const (
	AttrHiddenInvert = "data-hidden-invert"
	AttrUnit         = "data-unit"
	AttrDecimals     = "data-decimals"
)

// Element is one node of a page.
type Element struct {
	ID      string
	Kind    string
	Parent  *Element
	attrs   map[string]string
	text    string
	html    string
	classes map[string]struct{}
	styles  map[string]string
}

// NewElement creates a detached element with the given binding attributes.
func NewElement(id, kind string, attrs map[string]string) *Element {
	el := &Element{
		ID:      id,
		Kind:    kind,
		attrs:   make(map[string]string, len(attrs)),
		classes: make(map[string]struct{}),
		styles:  make(map[string]string),
	}
	for k, v := range attrs {
		if v != "" {
			el.attrs[k] = v
		}
	}
	return el
}

// Attr returns the value of attribute name, or "".
func (e *Element) Attr(name string) string { return e.attrs[name] }

// Text returns the element's text content.
func (e *Element) Text() string { return e.text }

// HTML returns the element's inner HTML.
func (e *Element) HTML() string { return e.html }

// Style returns the value of style property name, or "".
func (e *Element) Style(name string) string { return e.styles[name] }

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	_, ok := e.classes[class]
	return ok
}

// Hidden reports whether the element or any ancestor has the hidden class.
func (e *Element) Hidden() bool {
	for el := e; el != nil; el = el.Parent {
		if el.HasClass(ClassHidden) {
			return true
		}
	}
	return false
}

// ClassHidden marks an element as not displayed.
const ClassHidden = "hidden"

// Document is a page: a named, ordered set of elements.
type Document struct {
	Name     string
	Title    string
	Summary  bool
	elements []*Element
	byID     map[string]*Element
	pending  []Patch
}

// NewDocument creates an empty page.
// A summary page is a simple room overview that only renders text bindings.
func NewDocument(name, title string, summary bool) *Document {
	return &Document{
		Name:    name,
		Title:   title,
		Summary: summary,
		byID:    make(map[string]*Element),
	}
}

// Append adds el to the document. Elements with a duplicate ID are rejected.
func (d *Document) Append(el *Element) bool {
	if el == nil || el.ID == "" {
		return false
	}
	if _, dup := d.byID[el.ID]; dup {
		return false
	}
	d.elements = append(d.elements, el)
	d.byID[el.ID] = el
	return true
}

// Element returns the element with the given ID.
func (d *Document) Element(id string) (*Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}

// Len returns the number of elements.
func (d *Document) Len() int { return len(d.elements) }

// Query returns the elements whose attribute attr equals value, in document order.
func (d *Document) Query(attr, value string) []*Element {
	if d == nil || value == "" {
		return nil
	}
	var out []*Element
	for _, el := range d.elements {
		if el.attrs[attr] == value {
			out = append(out, el)
		}
	}
	return out
}

// QueryKind is Query restricted to elements of one widget kind.
func (d *Document) QueryKind(kind, attr, value string) []*Element {
	var out []*Element
	for _, el := range d.Query(attr, value) {
		if el.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}

// Subtree returns el and every element nested under it, in document order.
func (d *Document) Subtree(el *Element) []*Element {
	var out []*Element
	for _, e := range d.elements {
		for a := e; a != nil; a = a.Parent {
			if a == el {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// BoundIDs returns every data point identifier referenced by any binding
// attribute, in document order without duplicates.
func (d *Document) BoundIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, el := range d.elements {
		for _, attr := range bindingAttrs {
			id := el.attrs[attr]
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

var bindingAttrs = []string{
	AttrID, AttrStateID, AttrHiddenID, AttrExtraID, AttrUnreach, AttrRSSI, AttrLowBat,
	AttrDimmerID, AttrRGBID, AttrHueID, AttrTempID, AttrSetpointID, AttrProgressID,
	AttrLengthID, AttrHTMLID, AttrErrorID, AttrWarningID, AttrAlarmID,
}

// SetText sets the text content of el.
func (d *Document) SetText(el *Element, text string) bool {
	if el.text == text {
		return false
	}
	el.text = text
	d.record(el, OpText, "", text)
	return true
}

// SetHTML sets the inner HTML of el.
func (d *Document) SetHTML(el *Element, html string) bool {
	if el.html == html {
		return false
	}
	el.html = html
	d.record(el, OpHTML, "", html)
	return true
}

// SetAttr sets attribute name on el. An empty value removes it, and an
// absent attribute reads as "". Binding attributes are read only.
func (d *Document) SetAttr(el *Element, name, value string) bool {
	if slices.Contains(bindingAttrs, name) {
		return false
	}
	if el.attrs[name] == value {
		return false
	}
	if value == "" {
		delete(el.attrs, name)
	} else {
		el.attrs[name] = value
	}
	d.record(el, OpAttr, name, value)
	return true
}

// SetStyle sets style property name on el. An empty value removes it.
func (d *Document) SetStyle(el *Element, name, value string) bool {
	cur, ok := el.styles[name]
	if value == "" {
		if !ok {
			return false
		}
		delete(el.styles, name)
	} else {
		if ok && cur == value {
			return false
		}
		el.styles[name] = value
	}
	d.record(el, OpStyle, name, value)
	return true
}

// ToggleClass adds or removes class on el.
func (d *Document) ToggleClass(el *Element, class string, on bool) bool {
	if el.HasClass(class) == on {
		return false
	}
	if on {
		el.classes[class] = struct{}{}
		d.record(el, OpAddClass, class, "")
	} else {
		delete(el.classes, class)
		d.record(el, OpRemoveClass, class, "")
	}
	return true
}

// SwitchClass sets exactly one class of a mutually exclusive set.
// An empty active removes all of them.
func (d *Document) SwitchClass(el *Element, set []string, active string) bool {
	changed := false
	for _, class := range set {
		if d.ToggleClass(el, class, class == active) {
			changed = true
		}
	}
	return changed
}

func (d *Document) record(el *Element, op Op, name, value string) {
	d.pending = append(d.pending, Patch{Element: el.ID, Op: op, Name: name, Value: value})
}

// Pending returns the number of unflushed patches.
func (d *Document) Pending() int { return len(d.pending) }

// Flush returns and clears the pending patches.
func (d *Document) Flush() []Patch {
	out := d.pending
	d.pending = nil
	return out
}

// Snapshot returns a serialisable copy of the page.
func (d *Document) Snapshot() Page {
	page := Page{
		Name:     d.Name,
		Title:    d.Title,
		Summary:  d.Summary,
		Elements: make([]ElementView, 0, len(d.elements)),
	}
	for _, el := range d.elements {
		ev := ElementView{
			ID:     el.ID,
			Kind:   el.Kind,
			Attrs:  maps.Clone(el.attrs),
			Text:   el.text,
			HTML:   el.html,
			Styles: maps.Clone(el.styles),
		}
		if el.Parent != nil {
			ev.Parent = el.Parent.ID
		}
		for class := range el.classes {
			ev.Classes = append(ev.Classes, class)
		}
		slices.Sort(ev.Classes)
		page.Elements = append(page.Elements, ev)
	}
	return page
}
