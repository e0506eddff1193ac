// Package models provides domain models for point-and-figure analysis.
package models

import (
	"time"
)

// Bar represents one day of OHLC price data.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// ColumnType represents the direction of a point-and-figure column.
type ColumnType string

const (
	Rising  ColumnType = "RISING"
	Falling ColumnType = "FALLING"
)

// Opposite returns the other column type.
func (t ColumnType) Opposite() ColumnType {
	if t == Rising {
		return Falling
	}
	return Rising
}

// Mark returns the chart mark used for the column type.
func (t ColumnType) Mark() string {
	if t == Rising {
		return "X"
	}
	return "O"
}

// Column is one run of same-direction boxes between two reversals.
// For a Rising column CloseLevel > OpenLevel, for a Falling column
// OpenLevel > CloseLevel.
type Column struct {
	Type       ColumnType `json:"type"`
	OpenLevel  float64    `json:"open"`
	CloseLevel float64    `json:"close"`
}

// Boxes returns the number of boxes the column spans.
func (c Column) Boxes(boxSize float64) int {
	if boxSize <= 0 {
		return 0
	}
	diff := c.CloseLevel - c.OpenLevel
	if diff < 0 {
		diff = -diff
	}
	return int(diff/boxSize+0.5) + 1
}

// Chart is a completed column sequence together with the date each column
// closed on. Columns and ClosingDates are index-aligned.
type Chart struct {
	BoxSize        float64     `json:"box_size"`
	ReversalAmount float64     `json:"reversal_amount"`
	Columns        []Column    `json:"columns"`
	ClosingDates   []time.Time `json:"closing_dates"`
}

// Len returns the number of columns.
func (c *Chart) Len() int {
	return len(c.Columns)
}

// Column returns the column at the 1-based index i.
func (c *Chart) Column(i int) Column {
	return c.Columns[i-1]
}

// ClosingDate returns the closing date of the column at the 1-based index i.
func (c *Chart) ClosingDate(i int) time.Time {
	return c.ClosingDates[i-1]
}

// TriggerKind identifies a breakout or breakdown pattern.
type TriggerKind string

const (
	DoubleTopBreakout               TriggerKind = "double_top_breakout"
	AscendingTripleTopBreakout      TriggerKind = "ascending_triple_top_breakout"
	TripleTopBreakout               TriggerKind = "triple_top_breakout"
	SpreadTripleTopBreakout         TriggerKind = "spread_triple_top_breakout"
	QuadrupleTopBreakout            TriggerKind = "quadruple_top_breakout"
	DoubleBottomBreakdown           TriggerKind = "double_bottom_breakdown"
	DescendingTripleBottomBreakdown TriggerKind = "descending_triple_bottom_breakdown"
	TripleBottomBreakdown           TriggerKind = "triple_bottom_breakdown"
	SpreadTripleBottomBreakdown     TriggerKind = "spread_triple_bottom_breakdown"
	QuadrupleBottomBreakdown        TriggerKind = "quadruple_bottom_breakdown"
)

// IsBullish returns true for breakout (top) patterns.
func (k TriggerKind) IsBullish() bool {
	switch k {
	case DoubleTopBreakout, AscendingTripleTopBreakout, TripleTopBreakout,
		SpreadTripleTopBreakout, QuadrupleTopBreakout:
		return true
	}
	return false
}

// Trigger is a detected pattern. StartIndex is a 1-based column index and
// Width is the number of columns between the first column and the breakout
// column.
type Trigger struct {
	Kind       TriggerKind `json:"kind"`
	StartIndex int         `json:"start_index"`
	Width      int         `json:"width"`
}

// BreakoutIndex returns the 1-based index of the column that completes the
// pattern.
func (t Trigger) BreakoutIndex() int {
	return t.StartIndex + t.Width
}
