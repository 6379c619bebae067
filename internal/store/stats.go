package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/mediatrail/mediatrail/internal/artists"
)

// Statistics is a read-only aggregation over the persisted history, computed
// from the stored data at call time.
type Statistics struct {
	TotalPlays          int     `json:"total_plays"`
	UniqueSongs         int     `json:"unique_songs"`
	TotalSessions       int     `json:"total_sessions"`
	AvgTracksPerSession float64 `json:"avg_tracks_per_session"`

	TopSongs   []SongCount `json:"top_songs"`
	TopArtists []NameCount `json:"top_artists"`
	TopApps    []NameCount `json:"top_apps"`

	HourlyCounts  []HourCount   `json:"hourly_stats"`
	DailyCounts   []PeriodCount `json:"daily_stats"`
	MonthlyCounts []PeriodCount `json:"monthly_stats"`

	TotalMinutes    int64 `json:"total_duration_minutes"`
	AvgTrackMinutes int64 `json:"avg_track_duration_minutes"`

	GenreDistribution []NameCount  `json:"genre_distribution"`
	AlbumCompletion   []AlbumStats `json:"album_completion_stats"`
}

// SongCount is a song ranked by play frequency.
type SongCount struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Count  int    `json:"count"`
}

// NameCount is a generic name→frequency pair (artists, apps, genres).
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HourCount is the play count for one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// PeriodCount is the play count for one calendar day or month.
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// AlbumStats holds the average play count per track of an album, a rough
// measure of how completely the album gets listened to.
type AlbumStats struct {
	Album     string  `json:"album"`
	AvgTracks float64 `json:"avg_tracks"`
}

// Statistics computes the full aggregation. topN bounds the ranked lists;
// zero or negative selects 10.
func (s *Store) Statistics(ctx context.Context, topN int) (*Statistics, error) {
	if topN <= 0 {
		topN = 10
	}

	stats := &Statistics{}

	if err := s.basicStats(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.topSongs(ctx, stats, topN); err != nil {
		return nil, err
	}
	if err := s.topArtists(ctx, stats, topN); err != nil {
		return nil, err
	}
	if err := s.topApps(ctx, stats, topN); err != nil {
		return nil, err
	}
	if err := s.timeBuckets(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.durationStats(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.genreStats(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.albumStats(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) basicStats(ctx context.Context, stats *Statistics) error {
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_history WHERE title != ''`,
	).Scan(&stats.TotalPlays)
	if err != nil {
		return fmt.Errorf("failed to count plays: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT DISTINCT title, artist FROM media_history WHERE title != ''
		)
	`).Scan(&stats.UniqueSongs)
	if err != nil {
		return fmt.Errorf("failed to count unique songs: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(tracks_played), 0) FROM playback_sessions`,
	).Scan(&stats.TotalSessions, &stats.AvgTracksPerSession)
	if err != nil {
		return fmt.Errorf("failed to aggregate sessions: %w", err)
	}

	return nil
}

func (s *Store) topSongs(ctx context.Context, stats *Statistics, topN int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, artist, album, COUNT(*) as play_count
		FROM media_history
		WHERE title != ''
		GROUP BY title, artist
		ORDER BY play_count DESC, title
		LIMIT ?
	`, topN)
	if err != nil {
		return fmt.Errorf("failed to query top songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SongCount
		if err := rows.Scan(&sc.Title, &sc.Artist, &sc.Album, &sc.Count); err != nil {
			return fmt.Errorf("failed to scan song count: %w", err)
		}
		stats.TopSongs = append(stats.TopSongs, sc)
	}
	return rows.Err()
}

// topArtists splits multi-artist credit strings and attributes each play to
// every co-credited artist before ranking.
func (s *Store) topArtists(ctx context.Context, stats *Statistics, topN int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist, COUNT(*)
		FROM media_history
		WHERE title != '' AND artist != ''
		GROUP BY artist
	`)
	if err != nil {
		return fmt.Errorf("failed to query artist counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			credit string
			count  int
		)
		if err := rows.Scan(&credit, &count); err != nil {
			return fmt.Errorf("failed to scan artist count: %w", err)
		}
		for _, name := range artists.Split(credit) {
			counts[name] += count
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	stats.TopArtists = ranked
	return nil
}

func (s *Store) topApps(ctx context.Context, stats *Statistics, topN int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT app_name, COUNT(*) as usage_count
		FROM media_history
		WHERE title != ''
		GROUP BY app_name
		ORDER BY usage_count DESC, app_name
		LIMIT ?
	`, topN)
	if err != nil {
		return fmt.Errorf("failed to query top apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return fmt.Errorf("failed to scan app count: %w", err)
		}
		stats.TopApps = append(stats.TopApps, nc)
	}
	return rows.Err()
}

func (s *Store) timeBuckets(ctx context.Context, stats *Statistics) error {
	// Hour of day over the last 7 days.
	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(strftime('%H', timestamp, 'unixepoch', 'localtime') AS INTEGER) as hour, COUNT(*)
		FROM media_history
		WHERE title != '' AND timestamp >= strftime('%s', 'now', '-7 days')
		GROUP BY hour
		ORDER BY hour
	`)
	if err != nil {
		return fmt.Errorf("failed to query hourly stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var hc HourCount
		if err := rows.Scan(&hc.Hour, &hc.Count); err != nil {
			return fmt.Errorf("failed to scan hourly stat: %w", err)
		}
		stats.HourlyCounts = append(stats.HourlyCounts, hc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Daily totals for the last 7 days.
	rows, err = s.db.QueryContext(ctx, `
		SELECT date(timestamp, 'unixepoch', 'localtime') as play_date, COUNT(*)
		FROM media_history
		WHERE title != '' AND timestamp >= strftime('%s', 'now', '-7 days')
		GROUP BY play_date
		ORDER BY play_date DESC
	`)
	if err != nil {
		return fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc PeriodCount
		if err := rows.Scan(&pc.Period, &pc.Count); err != nil {
			return fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats.DailyCounts = append(stats.DailyCounts, pc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Monthly totals for the last three months.
	rows, err = s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', timestamp, 'unixepoch', 'localtime') as month, COUNT(*)
		FROM media_history
		WHERE title != '' AND timestamp >= strftime('%s', 'now', '-90 days')
		GROUP BY month
		ORDER BY month DESC
		LIMIT 3
	`)
	if err != nil {
		return fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc PeriodCount
		if err := rows.Scan(&pc.Period, &pc.Count); err != nil {
			return fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		stats.MonthlyCounts = append(stats.MonthlyCounts, pc)
	}
	return rows.Err()
}

func (s *Store) durationStats(ctx context.Context, stats *Statistics) error {
	var total, avg float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration), 0), COALESCE(AVG(duration), 0)
		FROM media_history
		WHERE title != ''
	`).Scan(&total, &avg)
	if err != nil {
		return fmt.Errorf("failed to aggregate durations: %w", err)
	}
	stats.TotalMinutes = int64(total) / 60
	stats.AvgTrackMinutes = int64(avg) / 60
	return nil
}

func (s *Store) genreStats(ctx context.Context, stats *Statistics) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT genre, COUNT(*) as count
		FROM media_history
		WHERE genre != '' AND title != ''
		GROUP BY genre
		ORDER BY count DESC, genre
	`)
	if err != nil {
		return fmt.Errorf("failed to query genre stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return fmt.Errorf("failed to scan genre stat: %w", err)
		}
		stats.GenreDistribution = append(stats.GenreDistribution, nc)
	}
	return rows.Err()
}

func (s *Store) albumStats(ctx context.Context, stats *Statistics) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT album, AVG(tracks_played) as avg_tracks
		FROM (
			SELECT album, title, COUNT(*) as tracks_played
			FROM media_history
			WHERE album != '' AND title != ''
			GROUP BY album, title
		)
		GROUP BY album
		ORDER BY avg_tracks DESC, album
	`)
	if err != nil {
		return fmt.Errorf("failed to query album stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var as AlbumStats
		if err := rows.Scan(&as.Album, &as.AvgTracks); err != nil {
			return fmt.Errorf("failed to scan album stat: %w", err)
		}
		stats.AlbumCompletion = append(stats.AlbumCompletion, as)
	}
	return rows.Err()
}
