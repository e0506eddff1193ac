// Package feed reads daily price history from CSV files.
package feed

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/models"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"02/01/2006",
}

// column positions resolved from the header row
type header struct {
	date, open, high, low, close, volume int
}

func parseHeader(record []string) (header, error) {
	h := header{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range record {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "datetime", "timestamp":
			h.date = i
		case "open":
			h.open = i
		case "high":
			h.high = i
		case "low":
			h.low = i
		case "close":
			h.close = i
		case "volume":
			h.volume = i
		}
	}
	for name, idx := range map[string]int{"date": h.date, "open": h.open, "high": h.high, "low": h.low, "close": h.close} {
		if idx < 0 {
			return h, fmt.Errorf("missing %q column", name)
		}
	}
	return h, nil
}

// detectComma picks ';' when the header has more semicolons than commas.
func detectComma(line []byte) rune {
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// ReadBarsCSV decodes bars from a CSV stream with a header row containing
// at least Date, Open, High, Low and Close. Comma and semicolon separated
// files are accepted. Rows with missing prices are skipped. The result is
// sorted by date.
func ReadBarsCSV(r io.Reader) ([]models.Bar, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if nl := bytes.IndexByte(first, '\n'); nl >= 0 {
		first = first[:nl]
	}

	reader := csv.NewReader(br)
	reader.Comma = detectComma(first)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	record, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValidationError("csv", "", "empty file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	h, err := parseHeader(record)
	if err != nil {
		return nil, errors.NewValidationError("csv header", strings.Join(record, ","), err.Error())
	}

	var bars []models.Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read record")
		}

		bar, ok, err := decodeRecord(record, h)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if ok {
			bars = append(bars, bar)
		}
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Equal(bars[i-1].Date) {
			return nil, errors.NewValidationError("date", bars[i].Date.Format("2006-01-02"), "duplicate bar")
		}
	}

	return bars, nil
}

func decodeRecord(record []string, h header) (models.Bar, bool, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field(h.date))
	if err != nil {
		return models.Bar{}, false, err
	}

	var prices [4]float64
	for k, idx := range []int{h.open, h.high, h.low, h.close} {
		raw := field(idx)
		if raw == "" || strings.EqualFold(raw, "null") || strings.EqualFold(raw, "nan") {
			return models.Bar{}, false, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Bar{}, false, errors.NewValidationError("price", raw, "not a number")
		}
		prices[k] = v
	}

	bar := models.Bar{Date: date, Open: prices[0], High: prices[1], Low: prices[2], Close: prices[3]}
	if bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return models.Bar{}, false, errors.NewValidationError("price", bar.Close, "prices must be positive")
	}
	if bar.Low > bar.High {
		return models.Bar{}, false, errors.NewValidationError("low", bar.Low, "low above high")
	}

	if raw := field(h.volume); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			bar.Volume = int64(v)
		}
	}

	return bar, true, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError("date", raw, "unrecognised date format")
}

// symbolPattern admits exchange suffixes (THYAO.IS, BRK-B, M&M.NS) and
// index tickers (^NSEI) but no path separators.
var symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.&=_-]*$`)

// ValidateSymbol upper-cases symbol and rejects anything that could not name
// a price file inside the data directory.
func ValidateSymbol(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", fmt.Errorf("%w: symbol is required", errors.ErrInputValidation)
	}
	if !symbolPattern.MatchString(sym) {
		return "", fmt.Errorf("%w: invalid symbol %q", errors.ErrInputValidation, symbol)
	}
	return sym, nil
}

// SymbolPath returns the CSV path for symbol inside dir.
func SymbolPath(dir, symbol string) string {
	return filepath.Join(dir, strings.ToUpper(symbol)+".csv")
}

// LoadSymbol reads the CSV history of symbol from dir.
func LoadSymbol(dir, symbol string) ([]models.Bar, error) {
	if _, err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	f, err := os.Open(SymbolPath(dir, symbol))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewDataError("bars", symbol, "no price file", errors.ErrSymbolNotFound)
		}
		return nil, errors.NewDataError("bars", symbol, "failed to open price file", err)
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f)
	if err != nil {
		return nil, errors.NewDataError("bars", symbol, "failed to decode price file", err)
	}
	if len(bars) == 0 {
		return nil, errors.NewDataError("bars", symbol, "price file has no bars", errors.ErrDataNotFound)
	}
	return bars, nil
}

// ReadTickers reads a whitespace separated ticker list. Duplicates are
// dropped and the file order is kept.
func ReadTickers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tickers file %s", path)
	}
	return ParseTickers(string(data)), nil
}

// ParseTickers splits a ticker list on whitespace and upper-cases entries.
func ParseTickers(s string) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, field := range strings.Fields(s) {
		sym := strings.ToUpper(field)
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		tickers = append(tickers, sym)
	}
	return tickers
}

// FilterRange returns the bars dated within [from, to]. A zero bound is
// open.
func FilterRange(bars []models.Bar, from, to time.Time) []models.Bar {
	var out []models.Bar
	for _, b := range bars {
		if !from.IsZero() && b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
