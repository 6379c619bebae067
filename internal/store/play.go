package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
)

// PlayRecord is one persisted playback event.
type PlayRecord struct {
	ID          int64     `json:"-"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	AlbumArtist string    `json:"album_artist"`
	TrackNumber int       `json:"track_number"`
	AppName     string    `json:"app_name"`
	AppID       string    `json:"app_id"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    int       `json:"duration"`
	Position    int       `json:"position"`
	Percentage  int       `json:"play_percentage"`
	Status      string    `json:"playback_status"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year"`
}

// NewPlayRecord builds a PlayRecord from a snapshot, stamped with ts.
func NewPlayRecord(snap media.Snapshot, ts time.Time) PlayRecord {
	return PlayRecord{
		Title:       snap.Title,
		Artist:      snap.Artist,
		Album:       snap.Album,
		AlbumArtist: snap.AlbumArtist,
		TrackNumber: snap.TrackNumber,
		AppName:     snap.AppName,
		AppID:       snap.AppID,
		Timestamp:   ts,
		Duration:    snap.Duration,
		Position:    snap.Position,
		Percentage:  PlayPercentage(snap.Duration, snap.Position),
		Status:      snap.Status.String(),
		Genre:       snap.Genre,
		Year:        snap.Year,
	}
}

// PlayPercentage derives how much of a track has been played, clamped to
// [0, 100]. An unknown duration yields 0.
func PlayPercentage(duration, position int) int {
	if duration <= 0 {
		return 0
	}
	pct := position * 100 / duration
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// InsertPlay records a new playback event. When a play with the same
// title/artist/app already exists inside the dedup window the insert is
// suppressed and false is returned; true means a row was written.
func (s *Store) InsertPlay(ctx context.Context, rec PlayRecord) (bool, error) {
	cutoff := rec.Timestamp.Add(-s.dedupWindow).Unix()

	var existing int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM media_history
		WHERE title = ? AND artist = ? AND app_name = ? AND timestamp > ?
		LIMIT 1
	`, rec.Title, rec.Artist, rec.AppName, cutoff).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check for duplicate play: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO media_history
		(title, artist, album, album_artist, track_number, app_name, app_id,
		 timestamp, duration, position, play_percentage, playback_status, genre, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Title, rec.Artist, rec.Album, rec.AlbumArtist, rec.TrackNumber,
		rec.AppName, rec.AppID, rec.Timestamp.Unix(), rec.Duration, rec.Position,
		rec.Percentage, rec.Status, rec.Genre, rec.Year,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert play: %w", err)
	}

	return true, nil
}

// UpdateProgress mutates the most recent play matching the identity triple,
// refreshing position, percentage, status and timestamp. Returns false when
// no matching row exists; the caller is expected to insert instead.
func (s *Store) UpdateProgress(ctx context.Context, title, artist, appName string, position, percentage int, status string, ts time.Time) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM media_history
		WHERE title = ? AND artist = ? AND app_name = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, title, artist, appName).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find play for progress update: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE media_history
		SET position = ?, play_percentage = ?, playback_status = ?, timestamp = ?
		WHERE id = ?
	`, position, percentage, status, ts.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update progress: %w", err)
	}

	return true, nil
}

// RecentPlays returns the latest plays, most recent first.
func (s *Store) RecentPlays(ctx context.Context, limit int) ([]PlayRecord, error) {
	query := `
		SELECT id, title, artist, album, album_artist, track_number, app_name, app_id,
		       timestamp, duration, position, play_percentage, playback_status, genre, year
		FROM media_history
		WHERE title != ''
		ORDER BY timestamp DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plays: %w", err)
	}
	defer rows.Close()

	var records []PlayRecord
	for rows.Next() {
		rec, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlay(row rowScanner) (PlayRecord, error) {
	var (
		rec PlayRecord
		ts  int64
	)
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Artist, &rec.Album, &rec.AlbumArtist,
		&rec.TrackNumber, &rec.AppName, &rec.AppID, &ts, &rec.Duration,
		&rec.Position, &rec.Percentage, &rec.Status, &rec.Genre, &rec.Year,
	)
	if err != nil {
		return PlayRecord{}, fmt.Errorf("failed to scan play: %w", err)
	}
	rec.Timestamp = time.Unix(ts, 0)
	return rec, nil
}
