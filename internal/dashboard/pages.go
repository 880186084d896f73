package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/subscription"
)

// Binding names accepted in a tile's bindings map.
const (
	BindState       = "state"
	BindText        = "text"
	BindDimmer      = "dimmer"
	BindRGB         = "rgb"
	BindHue         = "hue"
	BindTemperature = "temperature"
	BindSetpoint    = "setpoint"
	BindProgress    = "progress"
	BindLength      = "length"
	BindHTML        = "html"
	BindHidden      = "hidden"
	BindExtra       = "extra"
	BindUnreach     = "unreach"
	BindRSSI        = "rssi"
	BindLowBat      = "lowbat"
	BindError       = "error"
	BindWarning     = "warning"
	BindAlarm       = "alarm"
)

// File is the parsed page configuration.
type File struct {
	Pages []Page `json:"pages"`
}

// Page is one dashboard page.
type Page struct {
	Name  string `json:"name"`
	Title string `json:"title"`

	// Summary pages only render text and conditional formatting.
	Summary bool   `json:"summary,omitempty"`
	Tiles   []Tile `json:"tiles"`
}

// Tile is one widget on a page.
type Tile struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`

	// Bindings maps a binding name to a data point id.
	Bindings map[string]string `json:"bindings"`

	// ValueKinds overrides the value kind of a binding for demo values.
	ValueKinds map[string]string `json:"value_kinds,omitempty"`

	Unit     string `json:"unit,omitempty"`
	Decimals *int   `json:"decimals,omitempty"`

	// InvertHidden shows the tile while the hidden binding is true.
	InvertHidden bool `json:"invert_hidden,omitempty"`

	// Link names the page a summary tile opens.
	Link string `json:"link,omitempty"`
}

// tileTypes lists the accepted tile types.
var tileTypes = map[string]subscription.Kind{
	"text":        subscription.KindText,
	"plug":        subscription.KindPlug,
	"light":       subscription.KindLight,
	"heater":      subscription.KindHeater,
	"window":      subscription.KindWindow,
	"temperature": subscription.KindTemperature,
	"media":       subscription.KindMedia,
	"door":        subscription.KindDoor,
	"html":        subscription.KindHTML,
	"calendar":    subscription.KindCalendar,
}

// Load reads and validates a page file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates page configuration JSON.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks page and tile names, tile types and links.
func (f *File) Validate() error {
	if len(f.Pages) == 0 {
		return ErrNoPages
	}

	var errs []string
	pages := make(map[string]bool, len(f.Pages))
	for _, p := range f.Pages {
		if p.Name == "" {
			errs = append(errs, "page without name")
			continue
		}
		if pages[p.Name] {
			errs = append(errs, fmt.Sprintf("duplicate page %q", p.Name))
		}
		pages[p.Name] = true

		tiles := make(map[string]bool, len(p.Tiles))
		for i, t := range p.Tiles {
			switch {
			case t.ID == "":
				errs = append(errs, fmt.Sprintf("page %q tile %d has no id", p.Name, i))
			case tiles[t.ID]:
				errs = append(errs, fmt.Sprintf("page %q has duplicate tile %q", p.Name, t.ID))
			}
			tiles[t.ID] = true

			if _, ok := tileTypes[t.Type]; !ok {
				errs = append(errs, fmt.Sprintf("tile %q has unknown type %q", t.ID, t.Type))
			}
			for name := range t.Bindings {
				if _, ok := bindingAttrs[name]; !ok {
					errs = append(errs, fmt.Sprintf("tile %q has unknown binding %q", t.ID, name))
				}
			}
		}
	}

	for _, p := range f.Pages {
		for _, t := range p.Tiles {
			if t.Link != "" && !pages[t.Link] {
				errs = append(errs, fmt.Sprintf("tile %q links to unknown page %q", t.ID, t.Link))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Page returns the page with the given name.
func (f *File) Page(name string) (Page, bool) {
	for _, p := range f.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// valueKind picks the demo value kind of a binding. An explicit entry in
// ValueKinds wins; otherwise the binding and tile type decide.
func (t Tile) valueKind(binding string) demo.ValueKind {
	if tag, ok := t.ValueKinds[binding]; ok {
		return demo.ParseValueKind(tag)
	}

	switch binding {
	case BindState:
		switch t.Type {
		case "window":
			return demo.KindEnum3
		case "calendar":
			return demo.KindCalendar
		case "html":
			return demo.KindText
		case "text":
			return demo.KindNumber
		}
		return demo.KindBool
	case BindDimmer:
		return demo.KindPercent
	case BindRGB:
		return demo.KindRGB
	case BindHue:
		return demo.KindHue
	case BindTemperature:
		if t.Type == "light" {
			return demo.KindKelvin
		}
		return demo.KindCelsius
	case BindSetpoint:
		return demo.KindCelsius
	case BindProgress, BindLength:
		return demo.KindMinutes
	case BindHTML, BindExtra:
		return demo.KindText
	case BindRSSI:
		return demo.KindRSSI
	case BindHidden, BindUnreach, BindLowBat, BindError, BindWarning, BindAlarm:
		return demo.KindBool
	}
	return demo.KindNumber
}
