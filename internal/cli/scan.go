package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pnf-scanner/internal/errors"
	"pnf-scanner/internal/feed"
	"pnf-scanner/internal/report"
	"pnf-scanner/internal/scan"
	"pnf-scanner/pkg/utils"
)

const dateLayout = "2006-01-02"

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [SYMBOL...]",
		Short: "Scan symbols for breakout and breakdown patterns",
		Long: `Build the point-and-figure chart of every symbol and list the detected
triggers, bullish first. Without arguments the tickers file is scanned.`,
		Example: `  pnf scan
  pnf scan RELIANCE TCS --last-n-days 30
  pnf scan AAPL --box-size 2 --reversal 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			scanner, err := configureScanner(cmd, app)
			if err != nil {
				return err
			}

			symbols := feed.ParseTickers(strings.Join(args, " "))
			if len(symbols) == 0 {
				path := app.Config.ResolvePath(app.Config.Data.TickersFile)
				if symbols, err = feed.ReadTickers(path); err != nil {
					return err
				}
				if len(symbols) == 0 {
					return errors.NewValidationError("tickers", path, "no symbols to scan")
				}
			}

			for _, sym := range symbols {
				if _, err := feed.ValidateSymbol(sym); err != nil {
					return err
				}
			}

			ctx, logger := operationContext(cmd, "scan")
			logger.Info().Int("symbols", len(symbols)).Msg("Scan started")
			started := time.Now()

			results, err := scanner.Run(ctx, symbols)
			if err != nil {
				return err
			}

			var summary report.Summary
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				summary.Add(r.Symbol, r.Chart, r.Triggers)
			}
			logger.Info().
				Int("triggers", summary.Len()).
				Int("failed", failed).
				Dur("elapsed", time.Since(started)).
				Msg("Scan finished")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"params":  scanner.Params,
					"results": results,
					"summary": summary,
				})
			}

			renderSummary(output, &summary)
			for _, r := range results {
				if r.Err != nil {
					output.Warning("%s: %v", r.Symbol, r.Err)
				}
			}
			if failed == len(results) {
				return fmt.Errorf("all %d symbols failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().Float64("box-size", 0, "box size (0 derives it from the last close)")
	cmd.Flags().Float64("reversal", 0, "reversal amount in boxes")
	cmd.Flags().Int("spread-width", 0, "widest spread triple look-ahead in columns")
	cmd.Flags().Int("last-n-days", -1, "report only triggers completed in the last N days (0 = all)")
	cmd.Flags().String("from", "", "first bar date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last bar date (YYYY-MM-DD)")

	return cmd
}

// configureScanner builds a scanner from the config and applies flag
// overrides. Flags left at their defaults keep the configured values.
func configureScanner(cmd *cobra.Command, app *App) (*scan.Scanner, error) {
	s := app.Scanner()
	flags := cmd.Flags()

	if flags.Changed("box-size") {
		s.Params.BoxSize, _ = flags.GetFloat64("box-size")
	}
	if flags.Changed("reversal") {
		s.Params.ReversalAmount, _ = flags.GetFloat64("reversal")
	}
	if flags.Changed("spread-width") {
		s.Params.SpreadTriggerWidth, _ = flags.GetInt("spread-width")
	}
	if flags.Changed("last-n-days") {
		s.LastNDays, _ = flags.GetInt("last-n-days")
		if s.LastNDays < 0 {
			return nil, errors.NewValidationError("last-n-days", s.LastNDays, "must be non-negative")
		}
	}
	for _, name := range []string{"from", "to"} {
		if !flags.Changed(name) {
			continue
		}
		raw, _ := flags.GetString(name)
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, errors.NewValidationError(name, raw, "must be YYYY-MM-DD")
		}
		if name == "from" {
			s.Range.From = d
		} else {
			s.Range.To = d
		}
	}
	if !s.Range.From.IsZero() && !s.Range.To.IsZero() && s.Range.To.Before(s.Range.From) {
		return nil, errors.NewValidationError("to", s.Range.To.Format(dateLayout), "is before from")
	}

	if err := s.Params.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func renderSummary(output *Output, summary *report.Summary) {
	output.Bold("Bullish triggers:")
	renderEntries(output, summary.Bullish)
	output.Println()
	output.Bold("Bearish triggers:")
	renderEntries(output, summary.Bearish)
}

func renderEntries(output *Output, entries []report.Entry) {
	if len(entries) == 0 {
		output.Dim("   none")
		return
	}
	for _, e := range entries {
		output.Printf("   %s - %s at column %d in the graph %s\n",
			utils.Pad(e.Symbol, 10),
			output.Direction(e.Bullish, string(e.Kind)),
			e.Column,
			output.DimText(fmt.Sprintf("(level %g, %s)", e.Level, utils.FormatDate(e.Date, dateLayout))),
		)
	}
}
