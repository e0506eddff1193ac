package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pnf-scanner/internal/models"
	"pnf-scanner/internal/report"
	"pnf-scanner/pkg/utils"
)

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns SYMBOL",
		Short: "Print the point-and-figure columns of a symbol",
		Long:  "List every column with its direction, levels and closing date, followed by the triggers found on the chart.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}

			scanner, err := configureScanner(cmd, app)
			if err != nil {
				return err
			}

			ctx, _ := operationContext(cmd, "columns")
			res := scanner.Symbol(ctx, symbol)
			if res.Err != nil {
				return res.Err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			renderColumns(output, res.Symbol, res.Chart, res.Lines)
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

func renderColumns(output *Output, symbol string, chart *models.Chart, lines []report.TriggerLine) {
	box := chart.BoxSize
	output.Bold("%s  box %s  reversal %g", symbol, utils.FormatPrice(box, box), chart.ReversalAmount)
	output.Println()

	table := NewTable(output, "#", "Type", "Open", "Close", "Boxes", "Move", "Closed")
	for i := 1; i <= chart.Len(); i++ {
		col := chart.Column(i)
		mark := col.Type.Mark()
		table.AddRow(
			strconv.Itoa(i),
			output.Direction(col.Type == models.Rising, mark),
			utils.FormatPrice(col.OpenLevel, box),
			utils.FormatPrice(col.CloseLevel, box),
			strconv.Itoa(col.Boxes(box)),
			output.Direction(col.Type == models.Rising, utils.FormatPercent(columnMove(col))),
			utils.FormatDate(chart.ClosingDate(i), dateLayout),
		)
	}
	table.Render()

	output.Println()
	if len(lines) == 0 {
		output.Dim("No triggers")
		return
	}
	output.Bold("Triggers")
	triggers := NewTable(output, "Kind", "Columns", "Level")
	for _, l := range lines {
		triggers.AddRow(
			output.Direction(l.Kind.IsBullish(), utils.Humanize(string(l.Kind))),
			fmt.Sprintf("%d-%d", l.XStart, l.XEnd),
			utils.FormatPrice(l.Level, box),
		)
	}
	triggers.Render()
}

// columnMove returns the percentage move from a column's open to its close.
func columnMove(col models.Column) float64 {
	if col.OpenLevel == 0 {
		return 0
	}
	return (col.CloseLevel - col.OpenLevel) / col.OpenLevel * 100
}
