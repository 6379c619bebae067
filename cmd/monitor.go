package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mediatrail/mediatrail/internal/config"
	"github.com/mediatrail/mediatrail/internal/media"
	"github.com/mediatrail/mediatrail/internal/monitor"
	"github.com/mediatrail/mediatrail/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	monitorLogFile  string
	monitorLogLevel string
	monitorDBPath   string
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the playback monitor",
	Long: `Run the monitor that watches system media sessions and records playback.

The monitor will:
- Poll the Windows media session every few seconds for the current track
- Wait for track metadata to settle before recording a new play
- Deduplicate repeated reports of the same track within a short window
- Track pause/resume and keep play progress up to date
- Record a session summary on shutdown
- Handle graceful shutdown on SIGINT/SIGTERM

The monitor runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	// Command-line flags
	monitorCmd.Flags().StringVar(&monitorLogFile, "log-file", "", "Log file path (default: stderr)")
	monitorCmd.Flags().StringVar(&monitorLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	monitorCmd.Flags().StringVar(&monitorDBPath, "db", "", "Database path (default: from config)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up logging
	logger := setupLogger(monitorLogFile, monitorLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting mediatrail monitor")

	dbPath := monitorDBPath
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

	logger.Info().Str("db", dbPath).Msg("Database opened")

	// Back up the database on a schedule, before the monitor starts writing.
	if interval := cfg.BackupInterval(); interval > 0 {
		dest, err := st.MaybeBackup(interval)
		if err != nil {
			logger.Warn().Err(err).Msg("Database backup failed")
		} else if dest != "" {
			logger.Info().Str("backup", dest).Msg("Database backed up")
		}
	}

	source := media.NewSMTCSource(cfg.AppName, cfg.AppIgnored)

	m := monitor.New(monitor.Config{
		Interval:       cfg.Interval(),
		AcquireMaxWait: cfg.AcquireMaxWait(),
	}, source, st, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		<-sigChan
		logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Second signal forces exit
		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := m.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("monitor error: %w", err)
	}

	logger.Info().Msg("Monitor stopped")
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
