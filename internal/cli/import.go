package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"pnf-scanner/internal/errors"
	"pnf-scanner/pkg/utils"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import SYMBOL FILE",
		Short: "Load a CSV price file into the bar cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}

			ctx, logger := operationContext(cmd, "import")
			n, err := app.Scanner().Import(ctx, symbol, args[1])
			if err != nil {
				return err
			}
			logger.Info().Str("symbol", symbol).Int("bars", n).Str("file", args[1]).Msg("Bars imported")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"symbol": symbol, "bars": n})
			}
			output.Success("Imported %d bars for %s", n, symbol)
			return nil
		},
	}
}

func newCacheCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the bar cache",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if p := cmd.Root().PersistentPreRunE; p != nil {
				if err := p(cmd, args); err != nil {
					return err
				}
			}
			if app.Store == nil {
				return errors.Wrap(errors.ErrDatabaseError, "no bar cache configured")
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			infos, err := app.Store.ListSymbols(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(infos)
			}
			if len(infos) == 0 {
				output.Dim("Cache is empty")
				return nil
			}
			table := NewTable(output, "Symbol", "Bars", "First", "Last")
			for _, info := range infos {
				table.AddRow(
					info.Symbol,
					strconv.Itoa(info.Bars),
					utils.FormatDate(info.First, dateLayout),
					utils.FormatDate(info.Last, dateLayout),
				)
			}
			table.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear SYMBOL",
		Short: "Drop the cached history of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol, err := symbolArg(args)
			if err != nil {
				return err
			}
			if err := app.Store.DeleteBars(cmd.Context(), symbol); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"cleared": symbol})
			}
			output.Success("Cleared cached bars for %s", symbol)
			return nil
		},
	})

	return cmd
}
