/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mediatrail/mediatrail/internal/config"
	"github.com/mediatrail/mediatrail/internal/store"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listening statistics",
	Long: `Compute and display statistics over the recorded history.

Includes play totals, top songs, artists and apps, listening time, when
during the day you listen, and how completely albums get played. Artists
credited together on one track (e.g. "A feat. B") are counted separately.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntP("top", "t", 0, "Entries per ranked list (default: from config)")
	statsCmd.Flags().String("db", "", "Database path (default: from config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = cfg.Display.TopN
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Statistics(ctx, topN)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}

	printStatistics(stats)
	return nil
}

func printStatistics(stats *store.Statistics) {
	fmt.Println("=== Overview ===")
	fmt.Printf("Total plays:        %d\n", stats.TotalPlays)
	fmt.Printf("Unique songs:       %d\n", stats.UniqueSongs)
	fmt.Printf("Sessions:           %d (avg %.1f tracks)\n", stats.TotalSessions, stats.AvgTracksPerSession)
	fmt.Printf("Listening time:     %s\n", formatMinutes(stats.TotalMinutes))
	fmt.Printf("Avg track length:   %s\n", formatMinutes(stats.AvgTrackMinutes))

	if len(stats.TopSongs) > 0 {
		fmt.Println("\n=== Top Songs ===")
		for i, song := range stats.TopSongs {
			fmt.Printf("%2d. %s - %s (%d plays)\n", i+1, song.Artist, song.Title, song.Count)
		}
	}

	if len(stats.TopArtists) > 0 {
		fmt.Println("\n=== Top Artists ===")
		for i, artist := range stats.TopArtists {
			fmt.Printf("%2d. %s (%d plays)\n", i+1, artist.Name, artist.Count)
		}
	}

	if len(stats.TopApps) > 0 {
		fmt.Println("\n=== Apps ===")
		for _, app := range stats.TopApps {
			fmt.Printf("    %s (%d plays)\n", app.Name, app.Count)
		}
	}

	if len(stats.HourlyCounts) > 0 {
		fmt.Println("\n=== Listening by Hour (last 7 days) ===")
		for _, hc := range stats.HourlyCounts {
			fmt.Printf("    %02d:00  %s (%d)\n", hc.Hour, bar(hc.Count, maxHourly(stats.HourlyCounts)), hc.Count)
		}
	}

	if len(stats.DailyCounts) > 0 {
		fmt.Println("\n=== Daily (last 7 days) ===")
		for _, pc := range stats.DailyCounts {
			fmt.Printf("    %s  %d plays\n", pc.Period, pc.Count)
		}
	}

	if len(stats.MonthlyCounts) > 0 {
		fmt.Println("\n=== Monthly ===")
		for _, pc := range stats.MonthlyCounts {
			fmt.Printf("    %s  %d plays\n", pc.Period, pc.Count)
		}
	}

	if len(stats.GenreDistribution) > 0 {
		fmt.Println("\n=== Genres ===")
		for _, genre := range stats.GenreDistribution {
			fmt.Printf("    %s (%d plays)\n", genre.Name, genre.Count)
		}
	}

	if len(stats.AlbumCompletion) > 0 {
		fmt.Println("\n=== Album Completion ===")
		for _, album := range stats.AlbumCompletion {
			fmt.Printf("    %s (avg %.1f plays per track)\n", album.Album, album.AvgTracks)
		}
	}
}

func formatMinutes(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// bar renders a proportional bar capped at 40 columns.
func bar(count, max int) string {
	const maxWidth = 40
	if max <= 0 {
		return ""
	}
	width := count * maxWidth / max
	if width < 1 && count > 0 {
		width = 1
	}
	out := make([]rune, width)
	for i := range out {
		out[i] = '█'
	}
	return string(out)
}

func maxHourly(counts []store.HourCount) int {
	max := 0
	for _, hc := range counts {
		if hc.Count > max {
			max = hc.Count
		}
	}
	return max
}
