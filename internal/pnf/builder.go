package pnf

import (
	"math"
	"time"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/models"
)

// streak is the column under construction.
type streak struct {
	typ   models.ColumnType
	open  float64
	close float64
}

// BuildColumns converts bars into an alternating column sequence.
//
// A column reverses once price moves (reversal+1)*boxSize against its running
// extreme. The warm-up window only picks the initial direction and extremes;
// the streak loop then replays every bar after the first, including those
// inside the window. The warm-up column itself is not part of the result and
// the last column is closed out on the final bar even if no reversal
// happened.
func BuildColumns(bars []models.Bar, boxSize, reversal float64) (*models.Chart, error) {
	if len(bars) == 0 {
		return nil, errors.NewValidationError("bars", 0, "bar sequence is empty")
	}
	if boxSize <= 0 || math.IsNaN(boxSize) || math.IsInf(boxSize, 0) {
		return nil, errors.NewValidationError("box_size", boxSize, "must be positive")
	}
	if reversal <= 0 || math.IsNaN(reversal) || math.IsInf(reversal, 0) {
		return nil, errors.NewValidationError("reversal_amount", reversal, "must be positive")
	}

	threshold := (reversal + 1) * boxSize
	cur := seedStreak(bars, threshold)

	chart := &models.Chart{
		BoxSize:        boxSize,
		ReversalAmount: reversal,
	}
	emit := func(s streak, date time.Time) {
		chart.Columns = append(chart.Columns, models.Column{
			Type:       s.typ,
			OpenLevel:  quantize(s.open, boxSize),
			CloseLevel: quantize(s.close, boxSize),
		})
		chart.ClosingDates = append(chart.ClosingDates, date)
	}

	for _, bar := range bars[1:] {
		switch cur.typ {
		case models.Rising:
			cur.close = math.Max(cur.close, bar.High)
			if bar.Low < cur.close-threshold {
				emit(cur, bar.Date)
				cur = streak{typ: models.Falling, open: cur.close - boxSize, close: bar.Low}
			}
		default:
			cur.close = math.Min(cur.close, bar.Low)
			if bar.High > cur.close+threshold {
				emit(cur, bar.Date)
				cur = streak{typ: models.Rising, open: cur.close + boxSize, close: bar.High}
			}
		}
	}
	emit(cur, bars[len(bars)-1].Date)

	return chart, nil
}

// seedStreak scans the warm-up window until the high/low range reaches the
// reversal threshold and returns the initial streak.
func seedStreak(bars []models.Bar, threshold float64) streak {
	first := bars[0]
	lowest, highest := first.Low, first.High

	i := 1
	for highest-lowest < threshold && i < len(bars) {
		lowest = math.Min(lowest, bars[i].Low)
		highest = math.Max(highest, bars[i].High)
		i++
	}

	// Ties go to Falling.
	if highest-first.Low > first.High-lowest {
		return streak{typ: models.Rising, open: first.Low, close: highest}
	}
	return streak{typ: models.Falling, open: first.High, close: lowest}
}

// quantize rounds level to the nearest box multiple, halves to even.
func quantize(level, boxSize float64) float64 {
	return boxSize * math.RoundToEven(level/boxSize)
}
