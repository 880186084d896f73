package widget

import (
	"strconv"
	"time"

	"github.com/nerrad567/tileboard/internal/state"
	"github.com/nerrad567/tileboard/internal/view"
)

// Logger defines the logging interface used by refresh routines.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Env is what a refresh routine reads and writes.
type Env struct {
	Doc    *view.Document
	Store  *state.Store
	Logger Logger
	Now    func() time.Time
}

func (e Env) log() Logger {
	if e.Logger == nil {
		return noopLogger{}
	}
	return e.Logger
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Routine refreshes every element bound to id.
type Routine func(env Env, id string)

// formatNumber renders v with the element's data-decimals, or as short as possible.
func formatNumber(el *view.Element, v float64) string {
	if d := el.Attr(view.AttrDecimals); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n >= 0 {
			return strconv.FormatFloat(v, 'f', n, 64)
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// withUnit appends the element's data-unit separated by a space.
func withUnit(el *view.Element, text string) string {
	if unit := el.Attr(view.AttrUnit); unit != "" && text != "" {
		return text + " " + unit
	}
	return text
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
