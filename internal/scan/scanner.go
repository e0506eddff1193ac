// Package scan runs the column builder and pattern scanner over many symbols.
package scan

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/feed"
	"pnf-scanner/internal/logging"
	"pnf-scanner/internal/models"
	"pnf-scanner/internal/pnf"
	"pnf-scanner/internal/report"
	"pnf-scanner/internal/store"
	"pnf-scanner/pkg/utils"
)

// Source tells where a symbol's bars came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceCSV   Source = "csv"
)

// Range bounds the bars fed to the builder. Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

// Scanner analyses symbols read from a data directory, caching parsed bars
// in an optional BarStore.
type Scanner struct {
	Store   store.BarStore
	DataDir string
	Params  pnf.Params
	Range   Range
	// LastNDays restricts reported triggers to the trailing window ending at
	// each symbol's last bar. 0 reports everything.
	LastNDays int
	Workers   int
	// Logger is used when the context passed in carries none.
	Logger zerolog.Logger
	Retry  utils.RetryConfig
}

// SymbolResult is the outcome for one symbol.
type SymbolResult struct {
	Symbol   string               `json:"symbol"`
	Source   Source               `json:"source,omitempty"`
	Bars     int                  `json:"bars"`
	Chart    *models.Chart        `json:"chart,omitempty"`
	Triggers []models.Trigger     `json:"triggers"`
	Lines    []report.TriggerLine `json:"lines"`
	Err      error                `json:"-"`
	Error    string               `json:"error,omitempty"`
}

// New creates a Scanner with default parameters.
func New(dataDir string, st store.BarStore, logger zerolog.Logger) *Scanner {
	return &Scanner{
		Store:   st,
		DataDir: dataDir,
		Params:  pnf.DefaultParams(),
		Workers: 4,
		Logger:  logger,
		Retry:   utils.DefaultRetryConfig(),
	}
}

// Run analyses symbols concurrently and returns their results in input
// order. A failing symbol is reported on its result; only cancellation of
// ctx aborts the run.
func (s *Scanner) Run(ctx context.Context, symbols []string) ([]SymbolResult, error) {
	if err := s.Params.Validate(); err != nil {
		return nil, err
	}

	ctx = s.withLogger(ctx)
	results := make([]SymbolResult, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Symbol(gctx, sym)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Symbol analyses a single symbol.
func (s *Scanner) Symbol(ctx context.Context, symbol string) SymbolResult {
	ctx = s.withLogger(ctx)
	logger := logging.WithSymbol(logging.FromContext(ctx), symbol)
	res := SymbolResult{Symbol: symbol, Triggers: []models.Trigger{}, Lines: []report.TriggerLine{}}

	bars, source, err := s.Load(ctx, symbol)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping symbol")
		return res.fail(err)
	}
	res.Source = source

	bars = feed.FilterRange(bars, s.Range.From, s.Range.To)
	if len(bars) == 0 {
		return res.fail(errors.NewDataError("bars", symbol, "no bars in range", errors.ErrDataNotFound))
	}
	res.Bars = len(bars)

	result, err := pnf.Analyze(bars, s.Params)
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis failed")
		return res.fail(err)
	}
	logging.LogChart(logger, symbol, len(bars), result.Chart)

	window := report.Window{End: bars[len(bars)-1].Date, LastNDays: s.LastNDays}
	triggers := report.FilterRecent(result.Chart, result.Triggers, report.NewBarIndex(bars), window)

	res.Chart = result.Chart
	res.Triggers = append(res.Triggers, triggers...)
	res.Lines = report.Lines(result.Chart, triggers)
	for _, t := range triggers {
		logging.LogTrigger(logger, symbol, t, result.Chart.Column(t.StartIndex).CloseLevel)
	}
	return res
}

// withLogger makes sure ctx carries a logger, defaulting to s.Logger.
func (s *Scanner) withLogger(ctx context.Context) context.Context {
	if _, ok := ctx.Value(logging.LoggerKey).(zerolog.Logger); ok {
		return ctx
	}
	return logging.WithLogger(ctx, s.Logger)
}

func (r SymbolResult) fail(err error) SymbolResult {
	r.Err = err
	r.Error = err.Error()
	return r
}

// Load returns the bars of symbol. Cached bars are used while the cache is
// newer than the CSV file; otherwise the file is parsed and written back to
// the cache.
func (s *Scanner) Load(ctx context.Context, symbol string) ([]models.Bar, Source, error) {
	logger := logging.WithSymbol(logging.FromContext(s.withLogger(ctx)), symbol)
	path := feed.SymbolPath(s.DataDir, symbol)
	info, statErr := os.Stat(path)

	if s.Store != nil {
		synced := s.Store.GetLastSync(store.SyncKey(symbol))
		fresh := !synced.IsZero() && (statErr != nil || !synced.Before(info.ModTime()))
		if fresh {
			bars, err := s.Store.GetBars(ctx, symbol, time.Time{}, time.Time{})
			if err == nil && len(bars) > 0 {
				logger.Debug().Int("bars", len(bars)).Msg("Using cached bars")
				return bars, SourceCache, nil
			}
			if err != nil {
				logger.Warn().Err(err).Msg("Cache read failed, falling back to CSV")
			}
		}
	}

	bars, err := feed.LoadSymbol(s.DataDir, symbol)
	if err != nil {
		return nil, "", err
	}

	if s.Store != nil {
		if err := s.cache(ctx, symbol, bars); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache bars")
		}
	}
	return bars, SourceCSV, nil
}

// Import parses the CSV at path and replaces the cached history of symbol.
func (s *Scanner) Import(ctx context.Context, symbol, path string) (int, error) {
	symbol, err := feed.ValidateSymbol(symbol)
	if err != nil {
		return 0, err
	}
	if s.Store == nil {
		return 0, errors.Wrap(errors.ErrDatabaseError, "no bar cache configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	bars, err := feed.ReadBarsCSV(f)
	if err != nil {
		return 0, errors.NewDataError("bars", symbol, "failed to decode price file", err)
	}
	if len(bars) == 0 {
		return 0, errors.NewDataError("bars", symbol, "price file has no bars", errors.ErrDataNotFound)
	}

	if err := s.Store.DeleteBars(ctx, symbol); err != nil {
		return 0, err
	}
	if err := s.cache(ctx, symbol, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

func (s *Scanner) cache(ctx context.Context, symbol string, bars []models.Bar) error {
	cfg := s.Retry
	if cfg.MaxAttempts == 0 {
		cfg = utils.DefaultRetryConfig()
	}
	err := utils.Retry(ctx, cfg, func() error {
		return s.Store.SaveBars(ctx, symbol, bars)
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return s.Store.SetLastSync(store.SyncKey(symbol), time.Now())
}
