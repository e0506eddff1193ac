package pnf

import (
	"pnf-scanner/internal/models"
)

// DedupMode selects which composite patterns absorb their double patterns.
type DedupMode string

const (
	// DedupSymmetric cleans up doubles under both ascending and descending
	// composites.
	DedupSymmetric DedupMode = "symmetric"
	// DedupAscendingOnly only cleans up under ascending composites and
	// leaves double bottom breakdowns next to their descending composite.
	DedupAscendingOnly DedupMode = "ascending_only"
)

// Dedup removes double patterns that are covered by an ascending or
// descending triple at the same start: for a composite at i the doubles at
// i and i+2 are dropped. Entries of any other kind are never removed.
// The returned slice shares the backing array of triggers.
func Dedup(triggers []models.Trigger, mode DedupMode) []models.Trigger {
	covered := make(map[models.Trigger]struct{})
	for _, t := range triggers {
		var double models.TriggerKind
		switch {
		case t.Kind == models.AscendingTripleTopBreakout:
			double = models.DoubleTopBreakout
		case t.Kind == models.DescendingTripleBottomBreakdown && mode != DedupAscendingOnly:
			double = models.DoubleBottomBreakdown
		default:
			continue
		}
		covered[models.Trigger{Kind: double, StartIndex: t.StartIndex, Width: doubleWidth}] = struct{}{}
		covered[models.Trigger{Kind: double, StartIndex: t.StartIndex + doubleWidth, Width: doubleWidth}] = struct{}{}
	}
	if len(covered) == 0 {
		return triggers
	}

	kept := triggers[:0]
	for _, t := range triggers {
		if _, ok := covered[t]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}
