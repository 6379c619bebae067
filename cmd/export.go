/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mediatrail/mediatrail/internal/config"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the history database as JSON",
	Long: `Export all recorded plays and sessions to a JSON file.

Without an argument the export is written to the filename configured as
export.default_filename (media_history.json by default) in the current
directory. Statistics are included per export.include_statistics unless
--no-stats is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Bool("no-stats", false, "Omit the statistics block")
	exportCmd.Flags().String("db", "", "Database path (default: from config)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	includeStats := cfg.Export.IncludeStatistics
	if noStats, _ := cmd.Flags().GetBool("no-stats"); noStats {
		includeStats = false
	}
	export, err := st.ExportAll(ctx, includeStats)
	if err != nil {
		return fmt.Errorf("failed to assemble export: %w", err)
	}

	path := cfg.Export.DefaultFilename
	if path == "" {
		path = "media_history.json"
	}
	if len(args) > 0 {
		path = args[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finalize export: %w", err)
	}

	fmt.Printf("Exported %d tracks and %d sessions to %s\n",
		export.Info.TotalTracks, export.Info.TotalSessions, path)
	return nil
}
