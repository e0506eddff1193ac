package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/logging"
	"pnf-scanner/internal/models"
	"pnf-scanner/internal/pnf"
	"pnf-scanner/internal/store"
)

// Rising 10->14, falling 13->9, rising 10->15 with box 1: a double top at
// column 1 broken out in column 3.
const doubleTopCSV = `Date,Open,High,Low,Close,Volume
2024-03-01,10,11,10,11,100
2024-03-02,11,14,11,14,100
2024-03-03,9,12,9,12,100
2024-03-04,9.5,14,9.5,14,100
2024-03-05,13,15,13,15,100
`

func newTestScanner(t *testing.T, withStore bool) *Scanner {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ACME.csv"), []byte(doubleTopCSV), 0644); err != nil {
		t.Fatal(err)
	}

	var st store.BarStore
	if withStore {
		sq, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		t.Cleanup(func() { sq.Close() })
		st = sq
	}

	s := New(dir, st, zerolog.Nop())
	s.Params.BoxSize = 1
	return s
}

func TestRun_ResultsInInputOrder(t *testing.T) {
	s := newTestScanner(t, false)

	results, err := s.Run(context.Background(), []string{"MISSING", "ACME"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 || results[0].Symbol != "MISSING" || results[1].Symbol != "ACME" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if !errors.Is(results[0].Err, errors.ErrSymbolNotFound) {
		t.Errorf("MISSING error = %v, want ErrSymbolNotFound", results[0].Err)
	}

	acme := results[1]
	if acme.Err != nil {
		t.Fatalf("ACME failed: %v", acme.Err)
	}
	want := models.Trigger{Kind: models.DoubleTopBreakout, StartIndex: 1, Width: 2}
	if len(acme.Triggers) != 1 || acme.Triggers[0] != want {
		t.Errorf("triggers = %+v, want %+v", acme.Triggers, want)
	}
	if len(acme.Lines) != 1 || acme.Lines[0].Level != 14 || acme.Lines[0].XEnd != 3 {
		t.Errorf("lines = %+v", acme.Lines)
	}
	if acme.Bars != 5 || acme.Chart.Len() != 3 {
		t.Errorf("bars = %d, columns = %d", acme.Bars, acme.Chart.Len())
	}
}

func TestSymbol_CachesBars(t *testing.T) {
	s := newTestScanner(t, true)
	ctx := context.Background()

	first := s.Symbol(ctx, "ACME")
	if first.Err != nil || first.Source != SourceCSV {
		t.Fatalf("first run: source %q, err %v", first.Source, first.Err)
	}

	second := s.Symbol(ctx, "ACME")
	if second.Err != nil || second.Source != SourceCache {
		t.Fatalf("second run: source %q, err %v", second.Source, second.Err)
	}
	if len(second.Triggers) != len(first.Triggers) {
		t.Errorf("cached run found %d triggers, CSV run %d", len(second.Triggers), len(first.Triggers))
	}

	// A cached symbol survives removal of its price file.
	if err := os.Remove(filepath.Join(s.DataDir, "ACME.csv")); err != nil {
		t.Fatal(err)
	}
	third := s.Symbol(ctx, "ACME")
	if third.Err != nil || third.Source != SourceCache {
		t.Errorf("after removal: source %q, err %v", third.Source, third.Err)
	}
}

func TestSymbol_RangeAndWindow(t *testing.T) {
	s := newTestScanner(t, false)
	s.LastNDays = 1

	res := s.Symbol(context.Background(), "ACME")
	if res.Err != nil || len(res.Triggers) != 1 {
		t.Errorf("recent breakout dropped: %+v", res)
	}

	s.Range.From = res.Chart.ClosingDate(3).AddDate(0, 0, 1)
	res = s.Symbol(context.Background(), "ACME")
	if !errors.Is(res.Err, errors.ErrDataNotFound) {
		t.Errorf("empty range error = %v, want ErrDataNotFound", res.Err)
	}
}

func TestImport(t *testing.T) {
	s := newTestScanner(t, true)
	ctx := context.Background()

	n, err := s.Import(ctx, "WIDGET", filepath.Join(s.DataDir, "ACME.csv"))
	if err != nil || n != 5 {
		t.Fatalf("Import() = %d, %v", n, err)
	}
	bars, err := s.Store.GetBars(ctx, "WIDGET", time.Time{}, time.Time{})
	if err != nil || len(bars) != 5 {
		t.Errorf("cached %d bars, err %v", len(bars), err)
	}

	noStore := newTestScanner(t, false)
	if _, err := noStore.Import(ctx, "WIDGET", filepath.Join(noStore.DataDir, "ACME.csv")); !errors.Is(err, errors.ErrDatabaseError) {
		t.Errorf("Import without store = %v, want ErrDatabaseError", err)
	}
}

func TestRun_RejectsInvalidParams(t *testing.T) {
	s := newTestScanner(t, false)
	s.Params = pnf.Params{ReversalAmount: 0, SpreadTriggerWidth: 15}
	if _, err := s.Run(context.Background(), []string{"ACME"}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Run() = %v, want ErrInvalidInput", err)
	}
}

func TestSymbol_LogsThroughContextLogger(t *testing.T) {
	s := newTestScanner(t, false)
	var fallback, scoped bytes.Buffer
	s.Logger = zerolog.New(&fallback)

	s.Symbol(context.Background(), "ACME")
	if !strings.Contains(fallback.String(), `"symbol":"ACME"`) {
		t.Errorf("fallback logger unused: %q", fallback.String())
	}

	fallback.Reset()
	ctx := logging.WithLogger(context.Background(), logging.WithOperation(zerolog.New(&scoped), "scan"))
	if _, err := s.Run(ctx, []string{"ACME"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback logger used despite context logger: %q", fallback.String())
	}
	for _, want := range []string{`"operation":"scan"`, `"kind":"double_top_breakout"`, "Pattern detected"} {
		if !strings.Contains(scoped.String(), want) {
			t.Errorf("context log missing %s: %q", want, scoped.String())
		}
	}
}
