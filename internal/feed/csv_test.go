package feed

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pnf-scanner/internal/errors"
)

func TestReadBarsCSV_Semicolon(t *testing.T) {
	input := `Date;Open;High;Low;Close;Adj Close;Volume
2021-01-05;10.5;11.0;10.1;10.9;10.8;1500
2021-01-04;10.0;10.6;9.8;10.4;10.3;1200
2021-01-06;null;null;null;null;null;null
`
	bars, err := ReadBarsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBarsCSV failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if !bars[0].Date.Equal(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bars not sorted: first date %v", bars[0].Date)
	}
	if bars[1].High != 11.0 || bars[1].Low != 10.1 || bars[1].Close != 10.9 || bars[1].Volume != 1500 {
		t.Errorf("unexpected bar: %+v", bars[1])
	}
}

func TestReadBarsCSV_CommaAndColumnOrder(t *testing.T) {
	input := "close,low,high,open,date\n5.5,5.0,6.0,5.2,2023-07-03\n"

	bars, err := ReadBarsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBarsCSV failed: %v", err)
	}
	if len(bars) != 1 || bars[0].Open != 5.2 || bars[0].Close != 5.5 {
		t.Errorf("unexpected bars: %+v", bars)
	}
}

func TestReadBarsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "Date,Open,High,Close\n2023-01-02,1,2,1.5\n"},
		{"bad price", "Date,Open,High,Low,Close\n2023-01-02,1,two,1,1.5\n"},
		{"negative price", "Date,Open,High,Low,Close\n2023-01-02,1,2,-1,1.5\n"},
		{"bad date", "Date,Open,High,Low,Close\nyesterday,1,2,1,1.5\n"},
		{"duplicate date", "Date,Open,High,Low,Close\n2023-01-02,1,2,1,1.5\n2023-01-02,1,2,1,1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBarsCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadSymbol(t *testing.T) {
	dir := t.TempDir()
	content := "Date,Open,High,Low,Close\n2023-01-02,1,2,1,1.5\n2023-01-03,1.5,2.5,1.4,2.2\n"
	if err := os.WriteFile(filepath.Join(dir, "ACME.csv"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	bars, err := LoadSymbol(dir, "acme")
	if err != nil {
		t.Fatalf("LoadSymbol failed: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("got %d bars, want 2", len(bars))
	}

	_, err = LoadSymbol(dir, "MISSING")
	if !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Errorf("missing symbol error = %v, want ErrSymbolNotFound", err)
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := map[string]string{
		"acme":      "ACME",
		" thyao.is": "THYAO.IS",
		"BRK-B":     "BRK-B",
		"m&m.ns":    "M&M.NS",
		"^nsei":     "^NSEI",
	}
	for in, want := range valid {
		got, err := ValidateSymbol(in)
		if err != nil || got != want {
			t.Errorf("ValidateSymbol(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	for _, in := range []string{"", "   ", "../etc/passwd", "a/b", `a\b`, ".hidden", "two words"} {
		if _, err := ValidateSymbol(in); !errors.Is(err, errors.ErrInputValidation) {
			t.Errorf("ValidateSymbol(%q) error = %v, want ErrInputValidation", in, err)
		}
	}

	if _, err := LoadSymbol(t.TempDir(), "../ACME"); !errors.Is(err, errors.ErrInputValidation) {
		t.Errorf("LoadSymbol(../ACME) error = %v, want ErrInputValidation", err)
	}
}

func TestParseTickers(t *testing.T) {
	got := ParseTickers("aapl MSFT\n\tthyao.is aapl\n")
	want := []string{"AAPL", "MSFT", "THYAO.IS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTickers() = %v, want %v", got, want)
	}
}

func TestFilterRange(t *testing.T) {
	input := "Date,Open,High,Low,Close\n2023-01-02,1,2,1,1.5\n2023-01-03,1,2,1,1.5\n2023-01-04,1,2,1,1.5\n"
	bars, err := ReadBarsCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	from := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	if got := FilterRange(bars, from, time.Time{}); len(got) != 2 {
		t.Errorf("open-ended range returned %d bars, want 2", len(got))
	}
	if got := FilterRange(bars, from, from); len(got) != 1 {
		t.Errorf("single-day range returned %d bars, want 1", len(got))
	}
	if got := FilterRange(bars, time.Time{}, time.Time{}); len(got) != 3 {
		t.Errorf("unbounded range returned %d bars, want 3", len(got))
	}
}
