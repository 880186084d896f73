package widget

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
)

// Classes and images set by the device routines.
const (
	ClassOn      = "on"
	ClassPulse   = "pulse"
	ClassHeating = "heating"
	ClassPlaying = "playing"
	ClassOpen    = "open"

	DoorClosedImage = "img/door-closed.svg"
	DoorOpenImage   = "img/door-open.svg"
)

// Window positions, indexed by the enum value 0, 1, 2.
var windowPositions = []string{"closed", "tilted", "open"}

// Thermometer scale in °C.
const (
	thermometerMin = -50.0
	thermometerMax = 50.0
)

// Plug renders the on/off state of plug tiles bound to id.
func Plug(env Env, id string) {
	on := env.Store.Bool(id)
	for _, el := range env.Doc.QueryKind(string(subscription.KindPlug), view.AttrStateID, id) {
		env.Doc.ToggleClass(el, ClassOn, on)
		env.Doc.SetAttr(el, "aria-pressed", strconv.FormatBool(on))
	}
}

// Light renders switch state, dimmer level and colour of light tiles bound to id.
func Light(env Env, id string) {
	kind := string(subscription.KindLight)
	for _, el := range env.Doc.QueryKind(kind, view.AttrStateID, id) {
		lightPower(env, el, env.Store.Bool(id))
	}
	for _, el := range env.Doc.QueryKind(kind, view.AttrDimmerID, id) {
		level := clamp(env.Store.Float(id), 0, 100)
		env.Doc.SetText(el, strconv.Itoa(int(math.Round(level)))+" %")
		env.Doc.SetStyle(el, "--level", percent(level))
		if el.Attr(view.AttrStateID) == "" {
			lightPower(env, el, level > 0)
		}
	}

	seen := make(map[*view.Element]struct{})
	for _, attr := range []string{view.AttrRGBID, view.AttrHueID, view.AttrTempID} {
		for _, el := range env.Doc.QueryKind(kind, attr, id) {
			if _, ok := seen[el]; ok {
				continue
			}
			seen[el] = struct{}{}
			lightColour(env, el)
		}
	}
}

// lightPower sets the on class. Hidden tiles are never animated.
func lightPower(env Env, el *view.Element, on bool) {
	env.Doc.ToggleClass(el, ClassOn, on)
	refreshPulse(env, el)
}

// refreshPulse animates a light while it is on and displayed.
func refreshPulse(env Env, el *view.Element) {
	if el.Kind != string(subscription.KindLight) {
		return
	}
	env.Doc.ToggleClass(el, ClassPulse, el.HasClass(ClassOn) && !el.Hidden())
}

// ColourSource names which source a light colour indicator renders.
type ColourSource string

// Colour sources.
const (
	SourceNone        ColourSource = ""
	SourceRGB         ColourSource = "rgb"
	SourceHue         ColourSource = "hue"
	SourceTemperature ColourSource = "temperature"
)

// PickColourSource reports whether a colour source (RGB or hue) wins over a
// colour temperature source. The more recently written source wins and equal
// timestamps favour colour.
func PickColourSource(hasColour, hasTemp bool, colourTS, tempTS int64) bool {
	if hasColour && hasTemp {
		return colourTS >= tempTS
	}
	return hasColour
}

func lightColour(env Env, el *view.Element) {
	rgbID := el.Attr(view.AttrRGBID)
	hueID := el.Attr(view.AttrHueID)
	tempID := el.Attr(view.AttrTempID)

	colourSource, colourTS := SourceNone, int64(0)
	if rgbID != "" {
		colourSource, colourTS = SourceRGB, env.Store.Timestamp(rgbID)
	}
	if hueID != "" {
		if ts := env.Store.Timestamp(hueID); colourSource == SourceNone || ts > colourTS {
			colourSource, colourTS = SourceHue, ts
		}
	}

	source, colour := SourceNone, ""
	if PickColourSource(colourSource != SourceNone, tempID != "", colourTS, env.Store.Timestamp(tempID)) {
		source = colourSource
		if source == SourceRGB {
			colour = normaliseHex(env.Store.String(rgbID))
		} else {
			colour = fmt.Sprintf("hsl(%d, 100%%, 50%%)", int(clamp(env.Store.Float(hueID), 0, 360)))
		}
	} else if tempID != "" {
		source = SourceTemperature
		colour = KelvinToHex(env.Store.Float(tempID))
	}

	env.Doc.SetStyle(el, "background-color", colour)
	env.Doc.SetAttr(el, "data-colour-source", string(source))
}

func normaliseHex(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	return v
}

// KelvinToHex approximates the RGB colour of black body radiation at k kelvin.
// Non-positive temperatures return "".
func KelvinToHex(k float64) string {
	if k <= 0 {
		return ""
	}
	t := clamp(k, 1000, 40000) / 100

	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	return int(math.Round(clamp(v, 0, 255)))
}

// Heater renders heating state, setpoint and actual temperature of heater tiles.
func Heater(env Env, id string) {
	kind := string(subscription.KindHeater)
	for _, el := range env.Doc.QueryKind(kind, view.AttrStateID, id) {
		env.Doc.ToggleClass(el, ClassHeating, env.Store.Bool(id))
	}
	for _, attr := range []string{view.AttrSetpointID, view.AttrTempID} {
		for _, el := range env.Doc.QueryKind(kind, attr, id) {
			env.Doc.SetText(el, celsiusText(env, el, id))
		}
	}
}

// Window renders the position of window tiles. Values 0, 1, 2 mean closed,
// tilted, open; boolean contacts map to closed and open.
func Window(env Env, id string) {
	pos := windowPosition(env.Store.Value(id))
	for _, el := range env.Doc.QueryKind(string(subscription.KindWindow), view.AttrStateID, id) {
		env.Doc.SwitchClass(el, windowPositions, pos)
		env.Doc.SetAttr(el, "src", "img/window-"+pos+".svg")
		env.Doc.SetAttr(el, "title", pos)
	}
}

func windowPosition(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return windowPositions[2]
		}
		return windowPositions[0]
	}
	n := int(clamp(math.Round(state.ToFloat(v)), 0, float64(len(windowPositions)-1)))
	return windowPositions[n]
}

// ThermometerFill maps a temperature onto the thermometer scale as a
// percentage, clamped to 0..100 and rounded to one decimal.
func ThermometerFill(celsius float64) float64 {
	fill := (celsius - thermometerMin) * 100 / (thermometerMax - thermometerMin)
	return math.Round(clamp(fill, 0, 100)*10) / 10
}

// Temperature renders thermometer fill and reading of temperature sensor tiles.
func Temperature(env Env, id string) {
	for _, el := range env.Doc.QueryKind(string(subscription.KindTemperature), view.AttrTempID, id) {
		env.Doc.SetStyle(el, "height", percent(ThermometerFill(env.Store.Float(id))))
		env.Doc.SetText(el, celsiusText(env, el, id))
	}
}

// Media renders play state and track progress of media player tiles.
func Media(env Env, id string) {
	kind := string(subscription.KindMedia)
	for _, el := range env.Doc.QueryKind(kind, view.AttrStateID, id) {
		env.Doc.ToggleClass(el, ClassPlaying, env.Store.Bool(id))
	}

	seen := make(map[*view.Element]struct{})
	for _, attr := range []string{view.AttrProgressID, view.AttrLengthID} {
		for _, el := range env.Doc.QueryKind(kind, attr, id) {
			if _, ok := seen[el]; ok {
				continue
			}
			seen[el] = struct{}{}
			progress := env.Store.Float(el.Attr(view.AttrProgressID))
			length := env.Store.Float(el.Attr(view.AttrLengthID))
			width := 0.0
			if length > 0 {
				width = math.Round(clamp(progress*100/length, 0, 100)*10) / 10
			}
			env.Doc.SetStyle(el, "width", percent(width))
			env.Doc.SetAttr(el, "title", FormatDuration(progress)+" / "+FormatDuration(length))
		}
	}
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s%3600/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// celsiusText renders the temperature of id, or "" when unknown.
// Elements without data-unit get °C.
func celsiusText(env Env, el *view.Element, id string) string {
	st, ok := env.Store.Get(id)
	if !ok {
		return ""
	}
	text := formatNumber(el, state.ToFloat(st.Value))
	if el.Attr(view.AttrUnit) == "" {
		return text + " °C"
	}
	return withUnit(el, text)
}

// Door renders the open/closed icon of door tiles.
func Door(env Env, id string) {
	open := env.Store.Bool(id)
	src := DoorClosedImage
	if open {
		src = DoorOpenImage
	}
	for _, el := range env.Doc.QueryKind(string(subscription.KindDoor), view.AttrStateID, id) {
		env.Doc.SetAttr(el, "src", src)
		env.Doc.ToggleClass(el, ClassOpen, open)
	}
}

// Embedded renders an HTML fragment into elements bound through data-html-id.
func Embedded(env Env, id string) {
	html := env.Store.String(id)
	for _, el := range env.Doc.Query(view.AttrHTMLID, id) {
		env.Doc.SetHTML(el, html)
	}
}
