// Command pnf scans daily price histories for point-and-figure patterns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pnf-scanner/internal/cli"
	"pnf-scanner/internal/config"
	"pnf-scanner/internal/logging"
)

func main() {
	cfg, err := config.Load(cli.ConfigDirFromArgs(os.Args[1:]))
	if err != nil {
		// No configured log location yet; fall back to the default one.
		fallback := logging.NewLogger()
		fallback.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.File = cfg.Log.File
	logCfg.FilePath = cfg.LogFilePath()
	logger := logging.NewLoggerWithConfig(logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cfg, logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Debug().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
