// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"pnf-scanner/internal/models"
)

// BarStore caches daily price history per symbol.
type BarStore interface {
	// Bars
	SaveBars(ctx context.Context, symbol string, bars []models.Bar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	GetBarsFreshness(ctx context.Context, symbol string) (time.Time, error)
	ListSymbols(ctx context.Context) ([]SymbolInfo, error)
	DeleteBars(ctx context.Context, symbol string) error

	// Sync
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// SymbolInfo summarises the cached history of one symbol.
type SymbolInfo struct {
	Symbol string    `json:"symbol"`
	Bars   int       `json:"bars"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
}

// SyncKey returns the sync-status key for a symbol's bars.
func SyncKey(symbol string) string {
	return "bars:" + symbol
}
