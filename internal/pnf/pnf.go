// Package pnf builds point-and-figure columns from daily bars and scans
// them for breakout and breakdown patterns.
//
// Every function in this package is a pure transform over its arguments, so
// charts for different symbols can be built concurrently without locking.
package pnf

import (
	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/models"
)

// Defaults used when a run does not override them.
const (
	DefaultReversalAmount     = 3
	DefaultSpreadTriggerWidth = 15
)

// Params holds the run parameters. A zero BoxSize means the box size is
// derived from the last close.
type Params struct {
	BoxSize            float64   `json:"box_size"`
	ReversalAmount     float64   `json:"reversal_amount"`
	SpreadTriggerWidth int       `json:"spread_trigger_width"`
	DedupMode          DedupMode `json:"dedup_mode"`
}

// DefaultParams returns the default run parameters.
func DefaultParams() Params {
	return Params{
		ReversalAmount:     DefaultReversalAmount,
		SpreadTriggerWidth: DefaultSpreadTriggerWidth,
		DedupMode:          DedupSymmetric,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	if p.BoxSize < 0 {
		return errors.NewValidationError("box_size", p.BoxSize, "must be positive or zero for automatic")
	}
	if p.ReversalAmount <= 0 {
		return errors.NewValidationError("reversal_amount", p.ReversalAmount, "must be positive")
	}
	if p.SpreadTriggerWidth <= 0 {
		return errors.NewValidationError("spread_trigger_width", p.SpreadTriggerWidth, "must be positive")
	}
	switch p.DedupMode {
	case "", DedupSymmetric, DedupAscendingOnly:
	default:
		return errors.NewValidationError("dedup_mode", p.DedupMode, "unknown mode")
	}
	return nil
}

// Result is the outcome of one analysis run.
type Result struct {
	Chart    *models.Chart    `json:"chart"`
	Triggers []models.Trigger `json:"triggers"`
}

// Analyze runs the whole pipeline: box size, columns, pattern scan and
// deduplication.
func Analyze(bars []models.Bar, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	boxSize, err := ResolveBoxSize(params.BoxSize, bars)
	if err != nil {
		return nil, err
	}

	chart, err := BuildColumns(bars, boxSize, params.ReversalAmount)
	if err != nil {
		return nil, err
	}

	triggers := ScanPatterns(chart.Columns, params.SpreadTriggerWidth)
	triggers = Dedup(triggers, params.DedupMode)

	return &Result{Chart: chart, Triggers: triggers}, nil
}
