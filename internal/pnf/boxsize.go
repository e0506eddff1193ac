package pnf

import (
	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/models"
)

// boxStep maps a closing price bracket to its box size. A bracket applies
// when the price is strictly above its floor.
type boxStep struct {
	floor float64
	size  float64
}

// boxSteps is ordered low to high; the last matching step wins.
var boxSteps = []boxStep{
	{floor: 1, size: 0.10},
	{floor: 2, size: 0.25},
	{floor: 5, size: 0.5},
	{floor: 20, size: 1},
	{floor: 100, size: 2},
	{floor: 200, size: 4},
}

const minBoxSize = 0.05

// BoxSize derives the box size from a reference closing price.
func BoxSize(lastClose float64) (float64, error) {
	if lastClose <= 0 {
		return 0, errors.NewValidationError("last_close", lastClose, "must be positive")
	}

	size := minBoxSize
	for _, step := range boxSteps {
		if lastClose > step.floor {
			size = step.size
		}
	}
	return size, nil
}

// ResolveBoxSize returns override when it is set, otherwise the box size for
// the close of the last bar.
func ResolveBoxSize(override float64, bars []models.Bar) (float64, error) {
	if override > 0 {
		return override, nil
	}
	if override < 0 {
		return 0, errors.NewValidationError("box_size", override, "must be positive")
	}
	if len(bars) == 0 {
		return 0, errors.NewValidationError("bars", 0, "no bars to derive box size from")
	}
	return BoxSize(bars[len(bars)-1].Close)
}
