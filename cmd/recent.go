/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/mediatrail/mediatrail/internal/config"
	"github.com/mediatrail/mediatrail/internal/store"
	"github.com/spf13/cobra"
)

// recentCmd represents the recent command
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently recorded plays",
	Long: `List the most recently recorded plays from the history database.

Each row shows when the track was heard, its title, artist and the app it
played in, plus how much of it was played. App names can contain CJK
characters; columns are aligned by display width, not byte length.`,
	RunE: runRecent,
}

func init() {
	rootCmd.AddCommand(recentCmd)

	recentCmd.Flags().IntP("limit", "n", 0, "Number of rows to show (default: from config)")
	recentCmd.Flags().String("db", "", "Database path (default: from config)")
}

func runRecent(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Display.DefaultRecentLimit
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.RecentPlays(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No plays recorded yet.")
		return nil
	}

	printPlayTable(records)
	return nil
}

// openStore opens the history database, honoring a --db flag override.
func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Database.Path
	}
	st, err := store.Open(path, cfg.DedupWindow())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

func printPlayTable(records []store.PlayRecord) {
	const (
		timeWidth   = 16
		titleWidth  = 34
		artistWidth = 24
		appWidth    = 16
	)

	header := fmt.Sprintf("%s  %s  %s  %s  %s",
		padToWidth("PLAYED", timeWidth),
		padToWidth("TITLE", titleWidth),
		padToWidth("ARTIST", artistWidth),
		padToWidth("APP", appWidth),
		"PROGRESS",
	)
	fmt.Println(header)
	fmt.Println(strings.Repeat("-", runewidth.StringWidth(header)))

	for _, rec := range records {
		fmt.Printf("%s  %s  %s  %s  %3d%%\n",
			padToWidth(rec.Timestamp.Format("2006-01-02 15:04"), timeWidth),
			padToWidth(rec.Title, titleWidth),
			padToWidth(rec.Artist, artistWidth),
			padToWidth(rec.AppName, appWidth),
			rec.Percentage,
		)
	}
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		// Truncate with "..." suffix
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			// If width is too small, just return ellipsis truncated to width
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Ensure we're exactly at the target width (in case truncate was imprecise)
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			padding := strings.Repeat(" ", width-resultWidth)
			return result + padding
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		// Pad with spaces
		padding := strings.Repeat(" ", width-currentWidth)
		return text + padding
	}

	return text // exactly the right width
}
