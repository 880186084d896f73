package widget

import (
	"strconv"

	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/view"
)

// Classes set by the common routines.
const (
	ClassError   = "error"
	ClassWarning = "warning"
	ClassAlarm   = "alarm"
	ClassUnreach = "unreach"
	ClassLowBat  = "lowbat"
	ClassEmpty   = "empty"
)

// Visibility hides tiles bound to id through data-hidden-id while its value
// is true, or while it is false when the tile sets data-hidden-invert.
// Lights inside a tile that changes visibility get their pulse re-evaluated.
func Visibility(env Env, id string) {
	hidden := env.Store.Bool(id)
	for _, el := range env.Doc.Query(view.AttrHiddenID, id) {
		h := hidden
		if state.ToBool(el.Attr(view.AttrHiddenInvert)) {
			h = !h
		}
		if env.Doc.ToggleClass(el, view.ClassHidden, h) {
			for _, light := range env.Doc.Subtree(el) {
				refreshPulse(env, light)
			}
		}
	}
}

// Text renders the value of id into elements bound through data-id.
// Numbers honour data-decimals, and data-unit is appended.
func Text(env Env, id string) {
	st, ok := env.Store.Get(id)
	for _, el := range env.Doc.Query(view.AttrID, id) {
		text := ""
		if ok {
			text = textOf(el, st.Value)
		}
		env.Doc.SetText(el, withUnit(el, text))
	}
}

func textOf(el *view.Element, v any) string {
	switch val := v.(type) {
	case float64, float32, int, int64:
		return formatNumber(el, state.ToFloat(val))
	default:
		return state.ToString(val)
	}
}

// Conditions toggles the error, warning and alarm colouring of elements whose
// conditional formatting is bound to id.
func Conditions(env Env, id string) {
	on := env.Store.Bool(id)
	for _, c := range conditionBindings {
		for _, el := range env.Doc.Query(c.attr, id) {
			env.Doc.ToggleClass(el, c.class, on)
		}
	}
}

var conditionBindings = []struct{ attr, class string }{
	{view.AttrErrorID, ClassError},
	{view.AttrWarningID, ClassWarning},
	{view.AttrAlarmID, ClassAlarm},
}

// ExtraInfo renders the status strip bound to id through data-extra-id.
// An empty value collapses the strip.
func ExtraInfo(env Env, id string) {
	text := env.Store.String(id)
	for _, el := range env.Doc.Query(view.AttrExtraID, id) {
		env.Doc.SetText(el, withUnit(el, text))
		env.Doc.ToggleClass(el, ClassEmpty, text == "")
	}
}

// SignalLevel maps an RSSI in dBm to 0..4 bars.
func SignalLevel(rssi float64) int {
	switch {
	case rssi >= -55:
		return 4
	case rssi >= -67:
		return 3
	case rssi >= -75:
		return 2
	case rssi >= -85:
		return 1
	default:
		return 0
	}
}

// Health refreshes the unreachable, signal strength and low battery
// indicators bound to id.
func Health(env Env, id string) {
	for _, el := range env.Doc.Query(view.AttrUnreach, id) {
		env.Doc.ToggleClass(el, ClassUnreach, env.Store.Bool(id))
	}
	for _, el := range env.Doc.Query(view.AttrRSSI, id) {
		if !env.Store.Has(id) {
			env.Doc.SetAttr(el, "data-level", "")
			env.Doc.SetAttr(el, "title", "")
			continue
		}
		rssi := env.Store.Float(id)
		env.Doc.SetAttr(el, "data-level", strconv.Itoa(SignalLevel(rssi)))
		env.Doc.SetAttr(el, "title", formatNumber(el, rssi)+" dBm")
	}
	for _, el := range env.Doc.Query(view.AttrLowBat, id) {
		env.Doc.ToggleClass(el, ClassLowBat, env.Store.Bool(id))
	}
}
