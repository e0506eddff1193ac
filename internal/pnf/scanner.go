package pnf

import (
	"pnf-scanner/internal/models"
)

// Pattern widths measured from the first column to the breakout column.
const (
	doubleWidth    = 2
	tripleWidth    = 4
	quadrupleWidth = 6
	spreadStart    = 6
)

// patternSet names the trigger kinds for one direction.
type patternSet struct {
	double, composite, triple, spread, quadruple models.TriggerKind
}

var (
	topPatterns = patternSet{
		double:    models.DoubleTopBreakout,
		composite: models.AscendingTripleTopBreakout,
		triple:    models.TripleTopBreakout,
		spread:    models.SpreadTripleTopBreakout,
		quadruple: models.QuadrupleTopBreakout,
	}
	bottomPatterns = patternSet{
		double:    models.DoubleBottomBreakdown,
		composite: models.DescendingTripleBottomBreakdown,
		triple:    models.TripleBottomBreakdown,
		spread:    models.SpreadTripleBottomBreakdown,
		quadruple: models.QuadrupleBottomBreakdown,
	}
)

// window gives 1-based access to column closes and abstracts the breakout
// direction: beyond is ">" for Rising columns and "<" for Falling ones.
type window struct {
	columns []models.Column
	beyond  func(a, b float64) bool
}

func (w window) close(i int) float64 {
	return w.columns[i-1].CloseLevel
}

func (w window) n() int {
	return len(w.columns)
}

// ScanPatterns returns every breakout and breakdown pattern found in
// columns, in column order. The list may contain overlapping entries that
// Dedup later resolves.
func ScanPatterns(columns []models.Column, spreadWidth int) []models.Trigger {
	var triggers []models.Trigger

	for i := 1; i <= len(columns); i++ {
		w := window{columns: columns}
		set := topPatterns
		if columns[i-1].Type == models.Rising {
			w.beyond = func(a, b float64) bool { return a > b }
		} else {
			w.beyond = func(a, b float64) bool { return a < b }
			set = bottomPatterns
		}
		triggers = append(triggers, scanAt(w, i, spreadWidth, set)...)
	}

	return triggers
}

func scanAt(w window, i, spreadWidth int, set patternSet) []models.Trigger {
	var found []models.Trigger
	n := w.n()

	if i <= n-doubleWidth && isDouble(w, i) {
		found = append(found, models.Trigger{Kind: set.double, StartIndex: i, Width: doubleWidth})
		if i+doubleWidth <= n-doubleWidth && isDouble(w, i+doubleWidth) {
			found = append(found, models.Trigger{Kind: set.composite, StartIndex: i, Width: tripleWidth})
		}
	}

	if i <= n-tripleWidth {
		if isTriple(w, i) {
			found = append(found, models.Trigger{Kind: set.triple, StartIndex: i, Width: tripleWidth})
		} else if width, ok := spreadTriple(w, i, spreadWidth); ok {
			found = append(found, models.Trigger{Kind: set.spread, StartIndex: i, Width: width})
		}
	}

	if i <= n-quadrupleWidth && isQuadruple(w, i) {
		found = append(found, models.Trigger{Kind: set.quadruple, StartIndex: i, Width: quadrupleWidth})
	}

	return found
}

func isDouble(w window, i int) bool {
	return w.beyond(w.close(i+2), w.close(i))
}

func isTriple(w window, i int) bool {
	return w.close(i+2) == w.close(i) && w.beyond(w.close(i+4), w.close(i))
}

// spreadTriple looks for a breakout after a wider base: either the next
// same-type column matches the level, or the one after matches it while
// the next stayed short of it. The breakout is searched at offsets 6, 8, ...
// below spreadWidth.
func spreadTriple(w window, i, spreadWidth int) (int, bool) {
	base := w.close(i)
	matchNext := w.close(i+2) == base
	matchLater := w.close(i+4) == base && w.beyond(base, w.close(i+2))
	if !matchNext && !matchLater {
		return 0, false
	}

	for off := spreadStart; off < spreadWidth && i+off <= w.n(); off += 2 {
		if w.beyond(w.close(i+off), base) {
			return off, true
		}
	}
	return 0, false
}

func isQuadruple(w window, i int) bool {
	base := w.close(i)
	return w.close(i+2) == base && w.close(i+4) == base && w.beyond(w.close(i+6), base)
}
