package report

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"pnf-scanner/internal/models"
)

// Property: the recency filter only removes triggers, keeps their order and
// never keeps a trigger whose breakout column closed before the cutoff.
func TestProperty_FilterRecentIsOrderedSubset(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	chart := testChart()
	kinds := []models.TriggerKind{models.DoubleTopBreakout, models.DoubleBottomBreakdown, models.TripleTopBreakout}

	properties.Property("filtered triggers are an ordered subset inside the window", prop.ForAll(
		func(starts []int, days int) bool {
			triggers := make([]models.Trigger, len(starts))
			for i, s := range starts {
				triggers[i] = models.Trigger{Kind: kinds[i%len(kinds)], StartIndex: s, Width: 2}
			}
			w := Window{End: date(24), LastNDays: days}

			kept := FilterRecent(chart, triggers, BarIndex{}, w)

			j := 0
			for _, k := range kept {
				for j < len(triggers) && triggers[j] != k {
					j++
				}
				if j == len(triggers) {
					t.Logf("kept %+v is not an ordered member of %+v", k, triggers)
					return false
				}
				j++
				if chart.ClosingDate(k.BreakoutIndex()).Before(w.Cutoff()) {
					t.Logf("kept %+v breaking out before %v", k, w.Cutoff())
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 3)),
		gen.IntRange(1, 30),
	))

	properties.Property("lines follow triggers one to one", prop.ForAll(
		func(starts []int) bool {
			triggers := make([]models.Trigger, len(starts))
			for i, s := range starts {
				triggers[i] = models.Trigger{Kind: models.DoubleTopBreakout, StartIndex: s, Width: 2}
			}
			lines := Lines(chart, triggers)
			if len(lines) != len(triggers) {
				return false
			}
			for i, l := range lines {
				if l.XEnd-l.XStart != 2 || l.Level != chart.Column(triggers[i].StartIndex).CloseLevel {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}
