package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
)

const testPages = `{
  "pages": [
    {
      "name": "home",
      "title": "Home",
      "summary": true,
      "tiles": [
        {"id": "living", "type": "text", "label": "Living", "link": "living",
         "bindings": {"state": "living.temp", "alarm": "living.smoke"}, "unit": "°C", "decimals": 1}
      ]
    },
    {
      "name": "living",
      "title": "Living room",
      "tiles": [
        {"id": "ceiling", "type": "light", "label": "Ceiling",
         "bindings": {"state": "living.light", "dimmer": "living.dimmer", "rgb": "living.rgb",
                      "temperature": "living.ct", "hidden": "living.away", "unreach": "living.unreach"}},
        {"id": "window", "type": "window", "bindings": {"state": "living.window"}},
        {"id": "radio", "type": "media",
         "bindings": {"state": "radio.playing", "progress": "radio.pos", "length": "radio.len"},
         "value_kinds": {"progress": "number"}}
      ]
    }
  ]
}`

func writePages(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing pages: %v", err)
	}
	return path
}

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(testPages))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(f.Pages))
	}
	p, ok := f.Page("living")
	if !ok || len(p.Tiles) != 3 {
		t.Errorf("Page(living) = %+v, %v", p, ok)
	}
	if _, ok := f.Page("garage"); ok {
		t.Error("Page(garage) should not exist")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"not JSON", `{`, ErrInvalidConfig},
		{"no pages", `{"pages": []}`, ErrNoPages},
		{"page without name", `{"pages": [{"title": "x"}]}`, ErrInvalidConfig},
		{"duplicate page", `{"pages": [{"name": "a"}, {"name": "a"}]}`, ErrInvalidConfig},
		{"duplicate tile", `{"pages": [{"name": "a", "tiles": [{"id": "t", "type": "plug"}, {"id": "t", "type": "plug"}]}]}`, ErrInvalidConfig},
		{"unknown type", `{"pages": [{"name": "a", "tiles": [{"id": "t", "type": "toaster"}]}]}`, ErrInvalidConfig},
		{"unknown binding", `{"pages": [{"name": "a", "tiles": [{"id": "t", "type": "plug", "bindings": {"colour": "x"}}]}]}`, ErrInvalidConfig},
		{"bad link", `{"pages": [{"name": "a", "tiles": [{"id": "t", "type": "text", "link": "nowhere"}]}]}`, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestBuild_Elements(t *testing.T) {
	f, err := Parse([]byte(testPages))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, _ := f.Page("living")

	doc, _, err := Build(p)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tile := elementOf(doc, "ceiling")
	if tile == nil || tile.Kind != KindTile {
		t.Fatalf("container = %+v", tile)
	}
	if tile.Attr(view.AttrHiddenID) != "living.away" || tile.Attr(view.AttrUnreach) != "living.unreach" {
		t.Error("container bindings missing")
	}

	level := elementOf(doc, "ceiling.level")
	if level == nil || level.Attr(view.AttrDimmerID) != "living.dimmer" || level.Attr(view.AttrStateID) != "living.light" {
		t.Fatalf("level = %+v", level)
	}
	if level.Parent != tile {
		t.Error("level should be a child of the tile")
	}

	colour := elementOf(doc, "ceiling.colour")
	if colour == nil || colour.Attr(view.AttrRGBID) != "living.rgb" || colour.Attr(view.AttrTempID) != "living.ct" {
		t.Errorf("colour = %+v", colour)
	}
	if elementOf(doc, "ceiling.value") != nil || elementOf(doc, "ceiling.extra") != nil {
		t.Error("unbound child elements should not be created")
	}

	if got := doc.QueryKind("media", view.AttrLengthID, "radio.len"); len(got) != 1 {
		t.Errorf("media progress elements = %d, want 1", len(got))
	}
}

func TestBuild_Interests(t *testing.T) {
	f, _ := Parse([]byte(testPages))

	home, _ := f.Page("home")
	_, interests, err := Build(home)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []core.Interest{
		{ID: "living.temp", Kind: subscription.KindText, ValueKind: demo.KindNumber},
		{ID: "living.smoke", Kind: "", ValueKind: demo.KindBool},
	}
	if len(interests) != len(want) {
		t.Fatalf("interests = %+v, want %+v", interests, want)
	}
	for i := range want {
		if interests[i] != want[i] {
			t.Errorf("interest %d = %+v, want %+v", i, interests[i], want[i])
		}
	}

	living, _ := f.Page("living")
	_, interests, _ = Build(living)
	kinds := make(map[string]core.Interest)
	for _, in := range interests {
		kinds[in.ID] = in
	}

	tests := []struct {
		id        string
		kind      subscription.Kind
		valueKind demo.ValueKind
	}{
		{"living.away", "", demo.KindBool},
		{"living.light", subscription.KindLight, demo.KindBool},
		{"living.dimmer", subscription.KindLight, demo.KindPercent},
		{"living.ct", subscription.KindLight, demo.KindKelvin},
		{"living.window", subscription.KindWindow, demo.KindEnum3},
		{"radio.pos", subscription.KindMedia, demo.KindNumber},
		{"radio.len", subscription.KindMedia, demo.KindMinutes},
	}
	for _, tt := range tests {
		got, ok := kinds[tt.id]
		if !ok {
			t.Errorf("no interest for %s", tt.id)
			continue
		}
		if got.Kind != tt.kind || got.ValueKind != tt.valueKind {
			t.Errorf("interest %s = (%q, %q), want (%q, %q)", tt.id, got.Kind, got.ValueKind, tt.kind, tt.valueKind)
		}
	}
}

func TestBuild_TextTileFormatting(t *testing.T) {
	f, _ := Parse([]byte(testPages))
	home, _ := f.Page("home")

	doc, _, _ := Build(home)
	value := elementOf(doc, "living.value")
	if value == nil {
		t.Fatal("text tile has no value element")
	}
	if value.Attr(view.AttrID) != "living.temp" || value.Attr(view.AttrUnit) != "°C" || value.Attr(view.AttrDecimals) != "1" {
		t.Errorf("value attrs: id=%q unit=%q decimals=%q", value.Attr(view.AttrID), value.Attr(view.AttrUnit), value.Attr(view.AttrDecimals))
	}
	if !doc.Summary {
		t.Error("home should be a summary page")
	}
}

func TestBuild_ElementIDClash(t *testing.T) {
	p := Page{Name: "p", Tiles: []Tile{
		{ID: "a.value", Type: "plug"},
		{ID: "a", Type: "text", Bindings: map[string]string{BindText: "x"}},
	}}
	if _, _, err := Build(p); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Build() error = %v, want ErrInvalidConfig", err)
	}
}

type fakeNavigator struct {
	mu    sync.Mutex
	pages []string
}

func (f *fakeNavigator) Navigate(doc *view.Document, _ []core.Interest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, doc.Name)
}

func (f *fakeNavigator) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pages...)
}

func TestService_OpenAndReopen(t *testing.T) {
	nav := &fakeNavigator{}
	s := NewService(writePages(t, testPages), "", nav)

	if err := s.Open("home"); !errors.Is(err, ErrNoPages) {
		t.Errorf("Open() before Load error = %v, want ErrNoPages", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// No start page configured: the first page.
	if err := s.OpenStart(); err != nil {
		t.Fatalf("OpenStart() error = %v", err)
	}
	if err := s.Open("living"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Open("garage"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("Open(garage) error = %v, want ErrPageNotFound", err)
	}
	if s.Current() != "living" {
		t.Errorf("Current() = %q, want living", s.Current())
	}

	s.Reopen()

	want := []string{"home", "living", "living"}
	got := nav.opened()
	if len(got) != len(want) {
		t.Fatalf("opened = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opened = %v, want %v", got, want)
		}
	}

	pages := s.Pages()
	if len(pages) != 2 || pages[1].Tiles != 3 || !pages[0].Summary {
		t.Errorf("Pages() = %+v", pages)
	}
}

func TestService_ReopenFallsBackToStart(t *testing.T) {
	nav := &fakeNavigator{}
	path := writePages(t, testPages)
	s := NewService(path, "home", nav)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Open("living"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	only := `{"pages": [{"name": "home", "title": "Home", "tiles": []}]}`
	if err := os.WriteFile(path, []byte(only), 0600); err != nil {
		t.Fatalf("rewriting pages: %v", err)
	}
	s.reloadFromDisk()

	if s.Current() != "home" {
		t.Errorf("Current() = %q, want fallback to home", s.Current())
	}
}

func TestService_InvalidReloadKeepsConfig(t *testing.T) {
	path := writePages(t, testPages)
	s := NewService(path, "", &fakeNavigator{})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"pages": [`), 0600); err != nil {
		t.Fatalf("rewriting pages: %v", err)
	}
	if err := s.Load(); err == nil {
		t.Fatal("Load() should reject broken JSON")
	}
	if len(s.Pages()) != 2 {
		t.Error("previous configuration should be kept")
	}
}

func TestService_WatchReloads(t *testing.T) {
	nav := &fakeNavigator{}
	path := writePages(t, testPages)
	s := NewService(path, "home", nav)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.OpenStart(); err != nil {
		t.Fatalf("OpenStart() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	updated := `{"pages": [{"name": "home", "title": "Home v2", "tiles": []}]}`
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatalf("rewriting pages: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for len(nav.opened()) < 2 {
		select {
		case <-deadline:
			t.Fatal("page was not reopened after the file changed")
		case <-time.After(20 * time.Millisecond):
		}
	}
	if pages := s.Pages(); len(pages) != 1 || pages[0].Title != "Home v2" {
		t.Errorf("Pages() = %+v, want the updated file", pages)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func elementOf(doc *view.Document, id string) *view.Element {
	el, _ := doc.Element(id)
	return el
}

func TestService_Reload(t *testing.T) {
	nav := &fakeNavigator{}
	path := writePages(t, testPages)
	s := NewService(path, "home", nav)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Open("living"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"pages": [`), 0600); err != nil {
		t.Fatalf("rewriting pages: %v", err)
	}
	if err := s.Reload(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Reload() error = %v, want ErrInvalidConfig", err)
	}
	if len(nav.opened()) != 1 {
		t.Errorf("failed reload reopened the page: %v", nav.opened())
	}

	if err := os.WriteFile(path, []byte(testPages), 0600); err != nil {
		t.Fatalf("rewriting pages: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	got := nav.opened()
	if len(got) != 2 || got[1] != "living" {
		t.Errorf("opened = %v, want living reopened", got)
	}
}
