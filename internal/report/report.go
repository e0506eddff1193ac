// Package report turns detected patterns into what chart renderers and
// trigger reports consume: recency filtering, marker lines and the
// bullish/bearish text summary.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pnf-scanner/internal/models"
)

const dateKeyFormat = "2006-01-02"

// BarLookup finds the bar traded on a given day.
type BarLookup interface {
	BarAt(date time.Time) (models.Bar, bool)
}

// BarIndex is a BarLookup keyed by calendar day.
type BarIndex map[string]models.Bar

// NewBarIndex indexes bars by their calendar day.
func NewBarIndex(bars []models.Bar) BarIndex {
	idx := make(BarIndex, len(bars))
	for _, b := range bars {
		idx[b.Date.Format(dateKeyFormat)] = b
	}
	return idx
}

// BarAt returns the bar for date's calendar day, if one was traded.
func (idx BarIndex) BarAt(date time.Time) (models.Bar, bool) {
	b, ok := idx[date.Format(dateKeyFormat)]
	return b, ok
}

// Window selects the trailing period whose triggers are reported.
type Window struct {
	End       time.Time
	LastNDays int
}

// Enabled reports whether the window filters anything.
func (w Window) Enabled() bool {
	return w.LastNDays > 0
}

// Cutoff returns the first day of the window.
func (w Window) Cutoff() time.Time {
	return w.End.AddDate(0, 0, -w.LastNDays)
}

// FilterRecent keeps triggers whose breakout column closed inside the
// window.
//
// The breakout column that straddles the cutoff may have broken out before
// the cutoff day. For a trigger completing in that column the cutoff day's
// bar is consulted: the trigger stays only if its level lies strictly inside
// the bar's range. When no bar traded on the cutoff day the trigger stays.
func FilterRecent(chart *models.Chart, triggers []models.Trigger, lookup BarLookup, w Window) []models.Trigger {
	if !w.Enabled() {
		return append([]models.Trigger(nil), triggers...)
	}

	cutoff := w.Cutoff()
	boundary := 0
	for i := 1; i <= chart.Len(); i++ {
		if !chart.ClosingDate(i).Before(cutoff) {
			boundary = i
			break
		}
	}

	var kept []models.Trigger
	for _, t := range triggers {
		b := t.BreakoutIndex()
		if t.StartIndex < 1 || b > chart.Len() {
			continue
		}
		if chart.ClosingDate(b).Before(cutoff) {
			continue
		}
		if b == boundary && lookup != nil {
			if bar, ok := lookup.BarAt(cutoff); ok {
				level := chart.Column(t.StartIndex).CloseLevel
				if !(level > bar.Low && level < bar.High) {
					continue
				}
			}
		}
		kept = append(kept, t)
	}
	return kept
}

// TriggerLine is a horizontal marker from the first column of a pattern to
// its breakout column, drawn at the first column's close.
type TriggerLine struct {
	Kind   models.TriggerKind `json:"kind"`
	XStart int                `json:"x_start"`
	XEnd   int                `json:"x_end"`
	Level  float64            `json:"level"`
}

// Lines returns marker lines for triggers.
func Lines(chart *models.Chart, triggers []models.Trigger) []TriggerLine {
	lines := make([]TriggerLine, 0, len(triggers))
	for _, t := range triggers {
		if t.StartIndex < 1 || t.StartIndex > chart.Len() {
			continue
		}
		lines = append(lines, TriggerLine{
			Kind:   t.Kind,
			XStart: t.StartIndex,
			XEnd:   t.BreakoutIndex(),
			Level:  chart.Column(t.StartIndex).CloseLevel,
		})
	}
	return lines
}

// Entry is one reported trigger.
type Entry struct {
	Symbol  string             `json:"symbol"`
	Kind    models.TriggerKind `json:"kind"`
	Column  int                `json:"column"`
	Width   int                `json:"width"`
	Level   float64            `json:"level"`
	Date    time.Time          `json:"date"`
	Bullish bool               `json:"bullish"`
}

// Summary groups reported triggers by direction.
type Summary struct {
	Bullish []Entry `json:"bullish"`
	Bearish []Entry `json:"bearish"`
}

// Add records triggers of one symbol.
func (s *Summary) Add(symbol string, chart *models.Chart, triggers []models.Trigger) {
	for _, t := range triggers {
		e := Entry{
			Symbol:  symbol,
			Kind:    t.Kind,
			Column:  t.StartIndex,
			Width:   t.Width,
			Bullish: t.Kind.IsBullish(),
		}
		if t.StartIndex >= 1 && t.StartIndex <= chart.Len() {
			e.Level = chart.Column(t.StartIndex).CloseLevel
		}
		if b := t.BreakoutIndex(); b >= 1 && b <= chart.Len() {
			e.Date = chart.ClosingDate(b)
		}
		if e.Bullish {
			s.Bullish = append(s.Bullish, e)
		} else {
			s.Bearish = append(s.Bearish, e)
		}
	}
}

// Len returns the number of entries.
func (s *Summary) Len() int {
	return len(s.Bullish) + len(s.Bearish)
}

// Symbols returns the distinct symbols with at least one entry, sorted.
func (s *Summary) Symbols() []string {
	seen := make(map[string]struct{})
	for _, e := range append(append([]Entry(nil), s.Bullish...), s.Bearish...) {
		seen[e.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Text renders the summary as the plain trigger list.
func (s *Summary) Text() string {
	var sb strings.Builder
	sb.WriteString("Bullish triggers:\n")
	writeEntries(&sb, s.Bullish)
	sb.WriteString("\nBearish triggers:\n")
	writeEntries(&sb, s.Bearish)
	return sb.String()
}

func writeEntries(sb *strings.Builder, entries []Entry) {
	for _, e := range entries {
		fmt.Fprintf(sb, "   %s - %s at column %d in the graph\n", e.Symbol, e.Kind, e.Column)
	}
}
