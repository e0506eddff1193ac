package pnf

import (
	"reflect"
	"testing"

	"pnf-scanner/internal/models"
)

func TestDedup_AscendingTripleAbsorbsDoubles(t *testing.T) {
	triggers := []models.Trigger{
		{Kind: models.DoubleTopBreakout, StartIndex: 1, Width: 2},
		{Kind: models.AscendingTripleTopBreakout, StartIndex: 1, Width: 4},
		{Kind: models.DoubleTopBreakout, StartIndex: 3, Width: 2},
	}

	got := Dedup(triggers, DedupSymmetric)

	want := []models.Trigger{{Kind: models.AscendingTripleTopBreakout, StartIndex: 1, Width: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %+v, want %+v", got, want)
	}
}

func TestDedup_DescendingTriple(t *testing.T) {
	raw := func() []models.Trigger {
		return []models.Trigger{
			{Kind: models.DoubleBottomBreakdown, StartIndex: 1, Width: 2},
			{Kind: models.DescendingTripleBottomBreakdown, StartIndex: 1, Width: 4},
			{Kind: models.DoubleBottomBreakdown, StartIndex: 3, Width: 2},
		}
	}

	got := Dedup(raw(), DedupSymmetric)
	want := []models.Trigger{{Kind: models.DescendingTripleBottomBreakdown, StartIndex: 1, Width: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("symmetric Dedup() = %+v, want %+v", got, want)
	}

	got = Dedup(raw(), DedupAscendingOnly)
	if !reflect.DeepEqual(got, raw()) {
		t.Errorf("ascending-only Dedup() = %+v, want unchanged", got)
	}
}

func TestDedup_WithoutCompositeIsUnchanged(t *testing.T) {
	triggers := []models.Trigger{
		{Kind: models.DoubleTopBreakout, StartIndex: 1, Width: 2},
		{Kind: models.TripleBottomBreakdown, StartIndex: 2, Width: 4},
		{Kind: models.SpreadTripleTopBreakout, StartIndex: 3, Width: 8},
		{Kind: models.DoubleTopBreakout, StartIndex: 3, Width: 2},
	}
	want := append([]models.Trigger(nil), triggers...)

	got := Dedup(triggers, DedupSymmetric)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %+v, want %+v", got, want)
	}
}

func TestDedup_KeepsOtherKindsAndMissingEntries(t *testing.T) {
	// Only the double at i+2 is present; the one at i is already gone.
	triggers := []models.Trigger{
		{Kind: models.AscendingTripleTopBreakout, StartIndex: 3, Width: 4},
		{Kind: models.TripleTopBreakout, StartIndex: 3, Width: 4},
		{Kind: models.DoubleTopBreakout, StartIndex: 5, Width: 2},
		{Kind: models.QuadrupleTopBreakout, StartIndex: 3, Width: 6},
		{Kind: models.DoubleTopBreakout, StartIndex: 9, Width: 2},
	}

	got := Dedup(triggers, DedupSymmetric)

	want := []models.Trigger{
		{Kind: models.AscendingTripleTopBreakout, StartIndex: 3, Width: 4},
		{Kind: models.TripleTopBreakout, StartIndex: 3, Width: 4},
		{Kind: models.QuadrupleTopBreakout, StartIndex: 3, Width: 6},
		{Kind: models.DoubleTopBreakout, StartIndex: 9, Width: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %+v, want %+v", got, want)
	}
}

func TestDedup_ChainedComposites(t *testing.T) {
	columns := columnsFromCloses(models.Rising, 10, 7, 11, 8, 12, 9, 13, 10)
	triggers := ScanPatterns(columns, 15)

	got := Dedup(triggers, DedupSymmetric)

	want := []models.Trigger{
		{Kind: models.AscendingTripleTopBreakout, StartIndex: 1, Width: 4},
		{Kind: models.AscendingTripleTopBreakout, StartIndex: 3, Width: 4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %+v, want %+v", got, want)
	}
}

func TestDedup_Idempotent(t *testing.T) {
	columns := columnsFromCloses(models.Falling, 20, 23, 19, 22, 18, 21, 18, 24, 17)
	once := Dedup(ScanPatterns(columns, 15), DedupSymmetric)
	onceCopy := append([]models.Trigger(nil), once...)

	twice := Dedup(once, DedupSymmetric)
	if !reflect.DeepEqual(twice, onceCopy) {
		t.Errorf("second Dedup() = %+v, want %+v", twice, onceCopy)
	}
}
