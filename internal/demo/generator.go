package demo

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
)

// Generation bounds.
const (
	percentMax   = 100
	kelvinMin    = 2000
	kelvinMax    = 6500
	hueMax       = 240
	rssiMin      = -100
	celsiusMin   = -30.0
	celsiusMax   = 50.0
	minutesMax   = 1200
	numberMax    = 1000
	alarmChance  = 0.1
	textMinLen   = 4
	textMaxLen   = 12
	maxCalEvents = 5
)

// CalendarEvent is one entry of a calendar value.
type CalendarEvent struct {
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

var eventSummaries = []string{
	"Dentist", "Team call", "Bin collection", "Football practice",
	"Dinner with friends", "Piano lesson", "Car service", "Yoga",
}

// Generator produces synthetic DataPointStates. Timestamps it issues are
// strictly increasing, even within one clock millisecond.
type Generator struct {
	mu             sync.Mutex
	rng            *rand.Rand
	now            func() time.Time
	lastStamp      int64
	calendarServed bool
}

// NewGenerator creates a generator seeded from the wall clock.
func NewGenerator() *Generator {
	seed := uint64(time.Now().UnixNano()) //nolint:gosec // demo values, not security
	return NewGeneratorWithSource(rand.New(rand.NewPCG(seed, seed>>1)), time.Now)
}

// NewGeneratorWithSource creates a generator with an explicit random source and clock.
func NewGeneratorWithSource(rng *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// Generate returns a random state of the given kind stamped with the current time.
func (g *Generator) Generate(kind ValueKind) state.DataPointState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return state.DataPointState{
		Value:     g.value(kind),
		Timestamp: g.nextStampLocked(),
	}
}

// Stamp wraps an explicit value, coerced to kind, with the current time.
// A nil value is replaced by a generated one.
func (g *Generator) Stamp(kind ValueKind, value any) state.DataPointState {
	if value == nil {
		return g.Generate(kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return state.DataPointState{
		Value:     Coerce(kind, value),
		Timestamp: g.nextStampLocked(),
	}
}

// nextStampLocked returns the clock in ms, bumped past the last issued stamp.
func (g *Generator) nextStampLocked() int64 {
	ts := max(g.now().UnixMilli(), g.lastStamp+1)
	g.lastStamp = ts
	return ts
}

func (g *Generator) value(kind ValueKind) any {
	switch kind {
	case KindPercent:
		return g.rng.IntN(percentMax + 1)
	case KindKelvin:
		return kelvinMin + g.rng.IntN(kelvinMax-kelvinMin+1)
	case KindRGB:
		return fmt.Sprintf("#%02x%02x%02x", g.rng.IntN(256), g.rng.IntN(256), g.rng.IntN(256))
	case KindHue:
		return g.rng.IntN(hueMax + 1)
	case KindBool:
		return g.rng.Float64() < alarmChance
	case KindRSSI:
		return rssiMin + g.rng.IntN(-rssiMin+1)
	case KindEnum3:
		return g.rng.IntN(3)
	case KindCelsius:
		return round2(celsiusMin + g.rng.Float64()*(celsiusMax-celsiusMin))
	case KindMinutes:
		return g.rng.IntN(minutesMax + 1)
	case KindText:
		return g.text()
	case KindCalendar:
		return g.calendar()
	default:
		return g.rng.IntN(numberMax + 1)
	}
}

func (g *Generator) text() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	n := textMinLen + g.rng.IntN(textMaxLen-textMinLen+1)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(letters[g.rng.IntN(len(letters))])
	}
	return b.String()
}

func (g *Generator) calendar() string {
	now := g.now()
	var events []CalendarEvent
	if !g.calendarServed {
		g.calendarServed = true
		events = FixtureEvents(now)
	} else {
		n := 1 + g.rng.IntN(maxCalEvents)
		for i := 0; i < n; i++ {
			start := now.Add(time.Duration(g.rng.IntN(15*60)-3*60) * time.Minute)
			events = append(events, CalendarEvent{
				Summary: eventSummaries[g.rng.IntN(len(eventSummaries))],
				Start:   start,
				End:     start.Add(time.Duration(15+g.rng.IntN(166)) * time.Minute),
			})
		}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// FixtureEvents is the illustrative calendar served on the first request.
func FixtureEvents(now time.Time) []CalendarEvent {
	now = now.Truncate(time.Minute)
	return []CalendarEvent{
		{Summary: "Breakfast", Start: now.Add(-90 * time.Minute), End: now.Add(-5 * time.Minute)},
		{Summary: "Video call", Start: now.Add(-45 * time.Minute), End: now.Add(10 * time.Minute)},
		{Summary: "Dog walk", Start: now.Add(15 * time.Minute), End: now.Add(75 * time.Minute)},
		{Summary: "Cinema", Start: now.Add(4 * time.Hour), End: now.Add(6 * time.Hour)},
	}
}

// Coerce converts an explicitly written value to the representation the kind
// implies, clamping numbers to the kind's range.
func Coerce(kind ValueKind, value any) any {
	switch kind {
	case KindPercent:
		return clampInt(value, 0, percentMax)
	case KindKelvin:
		return clampInt(value, kelvinMin, kelvinMax)
	case KindHue:
		return clampInt(value, 0, 360) //nolint:mnd // full hue circle accepted on write
	case KindBool:
		return state.ToBool(value)
	case KindRSSI:
		return clampInt(value, rssiMin, 0)
	case KindEnum3:
		return clampInt(value, 0, 2)
	case KindCelsius:
		return round2(state.ToFloat(value))
	case KindMinutes:
		return clampInt(value, 0, math.MaxInt32)
	case KindText, KindRGB, KindCalendar:
		return state.ToString(value)
	default:
		switch value.(type) {
		case string, bool:
			return value
		}
		return state.ToFloat(value)
	}
}

func clampInt(value any, lo, hi int) int {
	n := int(math.Round(state.ToFloat(value)))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
