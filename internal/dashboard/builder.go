package dashboard

import (
	"fmt"
	"strconv"

	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
)

// KindTile is the element kind of the outer tile container.
const KindTile = "tile"

// bindingAttrs maps binding names to element attributes.
var bindingAttrs = map[string]string{
	BindState:       view.AttrStateID,
	BindText:        view.AttrID,
	BindDimmer:      view.AttrDimmerID,
	BindRGB:         view.AttrRGBID,
	BindHue:         view.AttrHueID,
	BindTemperature: view.AttrTempID,
	BindSetpoint:    view.AttrSetpointID,
	BindProgress:    view.AttrProgressID,
	BindLength:      view.AttrLengthID,
	BindHTML:        view.AttrHTMLID,
	BindHidden:      view.AttrHiddenID,
	BindExtra:       view.AttrExtraID,
	BindUnreach:     view.AttrUnreach,
	BindRSSI:        view.AttrRSSI,
	BindLowBat:      view.AttrLowBat,
	BindError:       view.AttrErrorID,
	BindWarning:     view.AttrWarningID,
	BindAlarm:       view.AttrAlarmID,
}

// bindingOrder fixes the order interests are registered in.
var bindingOrder = []string{
	BindHidden, BindState, BindText, BindDimmer, BindRGB, BindHue, BindTemperature,
	BindSetpoint, BindProgress, BindLength, BindHTML, BindExtra,
	BindUnreach, BindRSSI, BindLowBat, BindError, BindWarning, BindAlarm,
}

// containerBindings live on the tile container so their classes apply to
// the whole tile.
var containerBindings = []string{
	BindHidden, BindUnreach, BindRSSI, BindLowBat, BindError, BindWarning, BindAlarm,
}

// Build turns a page into a Document and the interests to register.
func Build(p Page) (*view.Document, []core.Interest, error) {
	doc := view.NewDocument(p.Name, p.Title, p.Summary)
	var interests []core.Interest

	for _, t := range p.Tiles {
		elements := tileElements(t)
		for _, el := range elements {
			if !doc.Append(el) {
				return nil, nil, fmt.Errorf("%w: element id %q on page %q is not unique", ErrInvalidConfig, el.ID, p.Name)
			}
		}
		interests = append(interests, tileInterests(t)...)
	}
	return doc, interests, nil
}

func tileInterests(t Tile) []core.Interest {
	kind := tileTypes[t.Type]
	var out []core.Interest
	for _, b := range bindingOrder {
		id := t.Bindings[b]
		if id == "" {
			continue
		}
		in := core.Interest{ID: id, ValueKind: t.valueKind(b)}
		switch b {
		case BindHidden, BindExtra, BindUnreach, BindRSSI, BindLowBat, BindError, BindWarning, BindAlarm:
			// Rendered on every page without a kind gate.
		case BindText:
			in.Kind = subscription.KindText
		default:
			in.Kind = kind
		}
		out = append(out, in)
	}
	return out
}

// tileElements builds the container and its child elements.
func tileElements(t Tile) []*view.Element {
	b := t.Bindings
	containerAttrs := map[string]string{
		"data-type":  t.Type,
		"aria-label": t.Label,
		"data-link":  t.Link,
	}
	for _, name := range containerBindings {
		containerAttrs[bindingAttrs[name]] = b[name]
	}
	if t.InvertHidden {
		containerAttrs[view.AttrHiddenInvert] = "true"
	}
	container := view.NewElement(t.ID, KindTile, containerAttrs)
	out := []*view.Element{container}

	// child appends an element when at least one of its bindings is set.
	child := func(suffix, kind string, formatted bool, bindings map[string]string) {
		bound := false
		for _, v := range bindings {
			bound = bound || v != ""
		}
		if !bound {
			return
		}
		if formatted {
			bindings[view.AttrUnit] = t.Unit
			if t.Decimals != nil {
				bindings[view.AttrDecimals] = strconv.Itoa(*t.Decimals)
			}
		}
		el := view.NewElement(t.ID+"."+suffix, kind, bindings)
		el.Parent = container
		out = append(out, el)
	}

	textID := b[BindText]
	if t.Type == "text" && textID == "" {
		textID = b[BindState]
	}
	child("value", "text", true, map[string]string{view.AttrID: textID})

	switch t.Type {
	case "plug", "window", "door", "calendar":
		child("state", t.Type, false, map[string]string{view.AttrStateID: b[BindState]})
	case "light":
		child("switch", t.Type, false, map[string]string{view.AttrStateID: b[BindState]})
		if b[BindDimmer] != "" {
			child("level", t.Type, false, map[string]string{
				view.AttrDimmerID: b[BindDimmer],
				view.AttrStateID:  b[BindState],
			})
		}
		child("colour", t.Type, false, map[string]string{
			view.AttrRGBID:  b[BindRGB],
			view.AttrHueID:  b[BindHue],
			view.AttrTempID: b[BindTemperature],
		})
	case "heater":
		child("state", t.Type, false, map[string]string{view.AttrStateID: b[BindState]})
		child("setpoint", t.Type, true, map[string]string{view.AttrSetpointID: b[BindSetpoint]})
		child("actual", t.Type, true, map[string]string{view.AttrTempID: b[BindTemperature]})
	case "temperature":
		id := b[BindTemperature]
		if id == "" {
			id = b[BindState]
		}
		child("thermometer", t.Type, true, map[string]string{view.AttrTempID: id})
	case "media":
		child("state", t.Type, false, map[string]string{view.AttrStateID: b[BindState]})
		child("progress", t.Type, false, map[string]string{
			view.AttrProgressID: b[BindProgress],
			view.AttrLengthID:   b[BindLength],
		})
	case "html":
		id := b[BindHTML]
		if id == "" {
			id = b[BindState]
		}
		child("content", t.Type, false, map[string]string{view.AttrHTMLID: id})
	}

	child("extra", "extra", false, map[string]string{view.AttrExtraID: b[BindExtra]})
	return out
}
