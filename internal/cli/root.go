package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pnf-scanner/internal/config"
	"pnf-scanner/internal/feed"
	"pnf-scanner/internal/logging"
	"pnf-scanner/internal/scan"
	"pnf-scanner/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.BarStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Data.Database != "" {
		dbPath := cfg.ResolvePath(cfg.Data.Database)
		barStore, err := store.NewSQLiteStore(dbPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", dbPath).Msg("Failed to open bar cache, reading CSV files only")
		} else {
			app.Store = barStore
			logger.Debug().Str("path", dbPath).Msg("SQLite bar cache opened")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "pnf",
		Short: "Point-and-figure pattern scanner",
		Long: `pnf builds point-and-figure charts from daily price history and reports
double, triple, spread triple and quadruple top breakouts and bottom breakdowns.

Price files are read from <data dir>/<SYMBOL>.csv and cached in SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode || !app.Config.UI.ColorEnabled {
				color.NoColor = true
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), app.Logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/pnf-scanner)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newColumnsCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newCacheCmd(app))

	return rootCmd
}

// Close releases the bar cache.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// Scanner returns a scanner configured from the application config.
func (a *App) Scanner() *scan.Scanner {
	s := scan.New(a.Config.ResolvePath(a.Config.Data.Dir), a.Store, a.Logger)
	s.Params = a.Config.PnFParams()
	s.Range.From, s.Range.To = a.Config.Range()
	s.LastNDays = a.Config.Report.LastNDays
	if a.Config.Report.Workers > 0 {
		s.Workers = a.Config.Report.Workers
	}
	return s
}

// ConfigDirFromArgs extracts the --config value before cobra parses flags,
// so the configuration can be loaded ahead of building the command tree.
func ConfigDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("pnf v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the scanner configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir})
			} else {
				output.Println(app.Config.Dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Chart")
	output.Printf("  Reversal:        %g boxes\n", cfg.PnF.ReversalAmount)
	if cfg.PnF.BoxSize > 0 {
		output.Printf("  Box size:        %g\n", cfg.PnF.BoxSize)
	} else {
		output.Printf("  Box size:        derived from last close\n")
	}
	output.Printf("  Spread width:    %d columns\n", cfg.PnF.SpreadTriggerWidth)
	output.Printf("  Dedup mode:      %s\n", cfg.PnF.DedupMode)
	output.Println()

	output.Bold("Data")
	output.Printf("  Directory:       %s\n", cfg.ResolvePath(cfg.Data.Dir))
	output.Printf("  Tickers:         %s\n", cfg.ResolvePath(cfg.Data.TickersFile))
	output.Printf("  Cache:           %s\n", orNone(cfg.ResolvePath(cfg.Data.Database)))
	output.Printf("  Range:           %s .. %s\n", orNone(cfg.Data.StartDate), orNone(cfg.Data.EndDate))
	output.Println()

	output.Bold("Report")
	if cfg.Report.LastNDays > 0 {
		output.Printf("  Window:          last %d days\n", cfg.Report.LastNDays)
	} else {
		output.Printf("  Window:          whole range\n")
	}
	output.Printf("  Workers:         %d\n", cfg.Report.Workers)
	output.Printf("  Log level:       %s\n", cfg.Log.Level)
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func symbolArg(args []string) (string, error) {
	if len(args) == 0 {
		return feed.ValidateSymbol("")
	}
	return feed.ValidateSymbol(args[0])
}

// operationContext tags the command's logger with an operation name.
func operationContext(cmd *cobra.Command, operation string) (context.Context, zerolog.Logger) {
	logger := logging.WithOperation(logging.FromContext(cmd.Context()), operation)
	return logging.WithLogger(cmd.Context(), logger), logger
}
