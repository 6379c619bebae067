package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mediatrail/mediatrail/internal/config"
	"github.com/mediatrail/mediatrail/internal/media"
	"github.com/mediatrail/mediatrail/internal/monitor"
	"github.com/mediatrail/mediatrail/internal/store"
	"github.com/mediatrail/mediatrail/internal/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the monitor with a terminal dashboard",
	Long: `Run the playback monitor with a terminal-based dashboard.

The dashboard shows the currently playing track, its playback progress,
session totals, and the plays recorded so far. Recording works exactly as
with 'mediatrail monitor'; quitting the dashboard stops the monitor and
writes the session summary.

Press 'q' to quit.`,
	RunE: runTUICmd,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().String("db", "", "Database path (default: from config)")
	tuiCmd.Flags().String("log-file", "", "Log file path (default: discard logs)")
}

func runTUICmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The terminal belongs to the dashboard; logs go to a file or nowhere.
	logger := zerolog.Nop()
	if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = zerolog.New(f).With().Timestamp().Logger()
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.Open(dbPath, cfg.DedupWindow())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	events := make(chan monitor.Event, 16)
	source := media.NewSMTCSource(cfg.AppName, cfg.AppIgnored)

	m := monitor.New(monitor.Config{
		Interval:       cfg.Interval(),
		AcquireMaxWait: cfg.AcquireMaxWait(),
		Events:         events,
	}, source, st, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		_ = m.Run(ctx)
	}()

	app := tui.New()
	err = app.Run(ctx, events)

	// Stop the monitor and let it flush the session before returning.
	cancel()
	<-monitorDone

	if err != nil {
		return err
	}
	return nil
}
