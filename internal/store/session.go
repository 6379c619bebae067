package store

import (
	"context"
	"fmt"
	"time"
)

// SessionRecord summarizes one contiguous monitoring run.
type SessionRecord struct {
	ID           int64     `json:"-"`
	Start        time.Time `json:"start_time"`
	End          time.Time `json:"end_time"`
	AppName      string    `json:"app_name"`
	TracksPlayed int       `json:"tracks_played"`
}

// InsertSession writes a finished session summary.
func (s *Store) InsertSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playback_sessions (session_start, session_end, app_name, tracks_played)
		VALUES (?, ?, ?, ?)
	`, rec.Start.Unix(), rec.End.Unix(), rec.AppName, rec.TracksPlayed)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Sessions returns all recorded sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_start, session_end, app_name, tracks_played
		FROM playback_sessions
		ORDER BY session_start DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var (
			rec        SessionRecord
			start, end int64
		)
		if err := rows.Scan(&rec.ID, &start, &end, &rec.AppName, &rec.TracksPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		rec.Start = time.Unix(start, 0)
		rec.End = time.Unix(end, 0)
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}
