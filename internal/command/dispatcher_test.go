package command

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (b *fakeBackend) SetState(_ context.Context, id string, _ any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, id)
	return b.err
}

type fakeUpdater struct {
	kinds   map[string]demo.ValueKind
	updates []state.DataPointState
}

func (u *fakeUpdater) OnUpdate(_ string, st state.DataPointState) {
	u.updates = append(u.updates, st)
}

func (u *fakeUpdater) ValueKind(id string) (demo.ValueKind, bool) {
	k, ok := u.kinds[id]
	return k, ok
}

type warnCounter struct {
	noopLogger
	warns int
}

func (w *warnCounter) Warn(string, ...any) { w.warns++ }

func testGenerator() *demo.Generator {
	return demo.NewGeneratorWithSource(rand.New(rand.NewPCG(9, 9)), func() time.Time { return testNow })
}

func TestSend_LiveForwardsToBackend(t *testing.T) {
	backend := &fakeBackend{}
	up := &fakeUpdater{}
	d := NewLive(up, backend)

	d.Send(context.Background(), "plug1", true)

	if len(backend.calls) != 1 || backend.calls[0] != "plug1" {
		t.Errorf("backend calls = %v", backend.calls)
	}
	if len(up.updates) != 0 {
		t.Error("live send applied a state locally")
	}
}

func TestSend_LiveErrorIsOnlyLogged(t *testing.T) {
	backend := &fakeBackend{err: errors.New("broker down")}
	logger := &warnCounter{}
	d := NewLive(&fakeUpdater{}, backend)
	d.SetLogger(logger)

	d.Send(context.Background(), "plug1", true)

	if logger.warns != 1 {
		t.Errorf("warnings = %d, want 1", logger.warns)
	}
	if s := d.Stats(); s.Sent != 1 || s.Failed != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestSend_LiveWithoutBackend(t *testing.T) {
	d := NewLive(&fakeUpdater{}, nil)
	d.Send(context.Background(), "x", 1)
	if d.Stats().Failed != 1 {
		t.Error("send without backend not counted as failed")
	}
}

func TestSend_DemoLoopsBack(t *testing.T) {
	tests := []struct {
		name  string
		kind  demo.ValueKind
		value any
		want  any
	}{
		{"percent keeps value", demo.KindPercent, 60, 60},
		{"percent clamps", demo.KindPercent, 250, 100},
		{"bool from string", demo.KindBool, "on", true},
		{"unregistered number", "", 7, 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUpdater{kinds: map[string]demo.ValueKind{"id": tt.kind}}
			d := NewDemo(up, testGenerator())

			d.Send(context.Background(), "id", tt.value)

			if len(up.updates) != 1 {
				t.Fatalf("updates = %d, want 1", len(up.updates))
			}
			if got := up.updates[0]; got.Value != tt.want || got.Timestamp != testNow.UnixMilli() {
				t.Errorf("update = %+v, want value %v at clock", got, tt.want)
			}
		})
	}
}

func TestSend_DemoNilGenerates(t *testing.T) {
	up := &fakeUpdater{kinds: map[string]demo.ValueKind{"k": demo.KindKelvin}}
	d := NewDemo(up, testGenerator())

	d.Send(context.Background(), "k", nil)

	v, ok := up.updates[0].Value.(int)
	if !ok || v < 2000 || v > 6500 {
		t.Errorf("generated value = %#v, want kelvin", up.updates[0].Value)
	}
}

func newCore(t *testing.T, demoMode bool) (*core.Core, *view.Recorder) {
	t.Helper()
	c := core.New(core.Config{Demo: demoMode}, state.NewStore(), subscription.NewRegistry(), testGenerator())
	rec := &view.Recorder{}
	c.SetSink(rec)
	return c, rec
}

func dimmerPage() (*view.Document, *view.Element) {
	doc := view.NewDocument("living", "Living", false)
	dimmer := view.NewElement("dim", string(subscription.KindLight), map[string]string{view.AttrDimmerID: "light1.dimmer"})
	doc.Append(dimmer)
	return doc, dimmer
}

func TestScenario_DemoDimmer(t *testing.T) {
	c, _ := newCore(t, true)
	doc, dimmer := dimmerPage()
	c.Navigate(doc, nil)
	c.RegisterInterest("light1.dimmer", subscription.KindLight, demo.KindPercent)

	NewDemo(c, testGenerator()).Send(context.Background(), "light1.dimmer", 60)

	got, ok := c.Get("light1.dimmer")
	if !ok || got.Value != 60 {
		t.Errorf("Get() = %+v, want value 60", got)
	}
	if dimmer.Text() != "60 %" {
		t.Errorf("dimmer text = %q, want %q", dimmer.Text(), "60 %")
	}
}

func TestDemoAndLiveRenderAlike(t *testing.T) {
	// demo: send loops back
	demoCore, demoRec := newCore(t, true)
	doc, _ := dimmerPage()
	demoCore.OnUpdate("light1.dimmer", state.DataPointState{Value: 0, Timestamp: 1})
	demoCore.Navigate(doc, []core.Interest{{ID: "light1.dimmer", Kind: subscription.KindLight, ValueKind: demo.KindPercent}})
	demoRec.Reset()
	NewDemo(demoCore, testGenerator()).Send(context.Background(), "light1.dimmer", 42)

	// live: the same value arrives from the backend
	liveCore, liveRec := newCore(t, false)
	doc2, _ := dimmerPage()
	liveCore.Navigate(doc2, []core.Interest{{ID: "light1.dimmer", Kind: subscription.KindLight, ValueKind: demo.KindPercent}})
	liveCore.OnUpdate("light1.dimmer", state.DataPointState{Value: 0, Timestamp: 1})
	liveRec.Reset()
	liveCore.OnUpdate("light1.dimmer", state.DataPointState{Value: 42, Timestamp: 2})

	demoText := findPatch(demoRec.Patches(), "dim", view.OpText)
	liveText := findPatch(liveRec.Patches(), "dim", view.OpText)
	if demoText != "42 %" || demoText != liveText {
		t.Errorf("demo text %q, live text %q, want both %q", demoText, liveText, "42 %")
	}
	if demoCore.Stats().Dispatches == 0 || liveCore.Stats().Dispatches == 0 {
		t.Error("both modes should dispatch")
	}
}

func TestScenario_DemoColourLastWriteWins(t *testing.T) {
	c, _ := newCore(t, true)
	doc := view.NewDocument("living", "Living", false)
	colour := view.NewElement("col", string(subscription.KindLight), map[string]string{
		view.AttrRGBID:  "l.rgb",
		view.AttrTempID: "l.ct",
	})
	doc.Append(colour)
	c.Navigate(doc, []core.Interest{
		{ID: "l.rgb", Kind: subscription.KindLight, ValueKind: demo.KindRGB},
		{ID: "l.ct", Kind: subscription.KindLight, ValueKind: demo.KindKelvin},
	})

	// The clock is frozen, so every send lands in the same millisecond.
	d := NewDemo(c, testGenerator())
	d.Send(context.Background(), "l.rgb", "#ff0000")
	d.Send(context.Background(), "l.ct", 2700)

	rgb, _ := c.Get("l.rgb")
	ct, _ := c.Get("l.ct")
	if ct.Timestamp <= rgb.Timestamp {
		t.Errorf("ct ts %d not after rgb ts %d", ct.Timestamp, rgb.Timestamp)
	}
	if got := colour.Attr("data-colour-source"); got != "temperature" {
		t.Errorf("colour source = %q, want temperature", got)
	}

	d.Send(context.Background(), "l.ct", 3000)
	if again, _ := c.Get("l.ct"); again.Timestamp <= ct.Timestamp {
		t.Errorf("repeated write ts %d not after %d", again.Timestamp, ct.Timestamp)
	}
}

func findPatch(patches []view.Patch, el string, op view.Op) string {
	for _, p := range patches {
		if p.Element == el && p.Op == op {
			return p.Value
		}
	}
	return ""
}
