package subscription

import (
	"reflect"
	"testing"

	"github.com/nerrad567/tileboard/internal/demo"
)

func TestRegistry_WatchIsIdempotent(t *testing.T) {
	r := NewRegistry()

	r.Watch("light1.dimmer", KindLight, demo.KindPercent)
	r.Watch("light1.dimmer", KindLight, demo.KindText)

	if !r.IsWatched("light1.dimmer") {
		t.Fatal("IsWatched() = false after Watch")
	}
	if got := r.IDs(); !reflect.DeepEqual(got, []string{"light1.dimmer"}) {
		t.Errorf("IDs() = %v, want one entry", got)
	}
	if vk, _ := r.ValueKind("light1.dimmer"); vk != demo.KindPercent {
		t.Errorf("ValueKind() = %q, want first registration %q", vk, demo.KindPercent)
	}
	if !r.HasKind(KindLight) {
		t.Error("HasKind(light) = false")
	}
}

func TestRegistry_WatchWithoutKind(t *testing.T) {
	r := NewRegistry()
	r.Watch("sensor.rssi", "", demo.KindRSSI)

	if !r.IsWatched("sensor.rssi") {
		t.Error("id not watched")
	}
	if len(r.Kinds()) != 0 {
		t.Errorf("Kinds() = %v, want none", r.Kinds())
	}
}

func TestRegistry_IgnoresEmptyID(t *testing.T) {
	r := NewRegistry()
	r.Watch("", KindDoor, demo.KindBool)

	if len(r.IDs()) != 0 || r.HasKind(KindDoor) {
		t.Error("empty id should not register anything")
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.Watch("a", KindDoor, demo.KindBool)
	r.Watch("b", KindHeater, demo.KindCelsius)

	r.Clear()

	if r.IsWatched("a") || r.IsWatched("b") {
		t.Error("ids still watched after Clear")
	}
	if r.HasKind(KindDoor) || r.HasKind(KindHeater) {
		t.Error("kinds still active after Clear")
	}
	if _, ok := r.ValueKind("a"); ok {
		t.Error("value kind survived Clear")
	}
}

func TestRegistry_SortedViews(t *testing.T) {
	r := NewRegistry()
	r.Watch("z", KindWindow, demo.KindEnum3)
	r.Watch("a", KindDoor, demo.KindBool)
	r.Watch("m", KindLight, demo.KindPercent)

	if got := r.IDs(); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Errorf("IDs() = %v", got)
	}
	if got := r.Kinds(); !reflect.DeepEqual(got, []Kind{KindDoor, KindLight, KindWindow}) {
		t.Errorf("Kinds() = %v", got)
	}
}
