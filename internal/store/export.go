package store

import (
	"context"
	"time"
)

// Export is the JSON document produced by the export command.
type Export struct {
	Info       ExportInfo      `json:"export_info"`
	Tracks     []PlayRecord    `json:"tracks"`
	Sessions   []SessionRecord `json:"sessions"`
	Statistics *Statistics     `json:"statistics,omitempty"`
}

// ExportInfo describes when and how much was exported.
type ExportInfo struct {
	ExportTime    time.Time `json:"export_time"`
	TotalTracks   int       `json:"total_tracks"`
	TotalSessions int       `json:"total_sessions"`
}

// ExportAll assembles the complete history for serialization. Statistics are
// included when includeStats is set.
func (s *Store) ExportAll(ctx context.Context, includeStats bool) (*Export, error) {
	tracks, err := s.RecentPlays(ctx, 0)
	if err != nil {
		return nil, err
	}

	sessions, err := s.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	export := &Export{
		Info: ExportInfo{
			ExportTime:    time.Now(),
			TotalTracks:   len(tracks),
			TotalSessions: len(sessions),
		},
		Tracks:   tracks,
		Sessions: sessions,
	}

	if includeStats {
		stats, err := s.Statistics(ctx, 10)
		if err != nil {
			return nil, err
		}
		export.Statistics = stats
	}

	return export, nil
}
