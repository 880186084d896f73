package widget

import (
	"encoding/json"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/tileboard/internal/demo"
	"github.com/nerrad567/tileboard/internal/subscription"
	"github.com/nerrad567/tileboard/internal/view"
)

// soonWindow is how far ahead an event counts as starting soon.
const soonWindow = time.Hour

// Calendar renders the event list of calendar tiles bound to id.
// The value is a JSON array of events. A value that does not parse is logged
// and the tile renders empty.
func Calendar(env Env, id string) {
	elements := env.Doc.QueryKind(string(subscription.KindCalendar), view.AttrStateID, id)
	if len(elements) == 0 {
		return
	}

	events, err := ParseEvents(env.Store.String(id))
	if err != nil {
		env.log().Warn("malformed calendar value", "id", id, "error", err)
	}
	markup := RenderEvents(events, env.now())

	for _, el := range elements {
		env.Doc.SetHTML(el, markup)
		env.Doc.ToggleClass(el, ClassEmpty, len(events) == 0)
	}
}

// ParseEvents decodes a calendar value. An empty value is an empty list.
func ParseEvents(raw string) ([]demo.CalendarEvent, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var events []demo.CalendarEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

// EventStatus classifies an event relative to now.
func EventStatus(ev demo.CalendarEvent, now time.Time) string {
	switch {
	case !ev.End.After(now):
		return "ended"
	case !ev.Start.After(now):
		return "running"
	case ev.Start.Sub(now) <= soonWindow:
		return "soon"
	default:
		return "later"
	}
}

// RenderEvents renders events as an HTML list. No events render as "".
func RenderEvents(events []demo.CalendarEvent, now time.Time) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="calendar">`)
	for _, ev := range events {
		b.WriteString(`<li class="`)
		b.WriteString(EventStatus(ev, now))
		b.WriteString(`"><span class="time">`)
		b.WriteString(ev.Start.Format("15:04"))
		b.WriteString("-")
		b.WriteString(ev.End.Format("15:04"))
		b.WriteString(`</span> <span class="summary">`)
		b.WriteString(html.EscapeString(ev.Summary))
		b.WriteString("</span></li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
