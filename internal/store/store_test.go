package store

import (
	"context"
	"testing"
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
)

// createTestStore creates an in-memory SQLite store for testing
func createTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:", time.Minute)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func testRecord(title, artist, app string, ts time.Time) PlayRecord {
	return NewPlayRecord(media.Snapshot{
		Title:    title,
		Artist:   artist,
		AppName:  app,
		Status:   media.StatusPlaying,
		Duration: 200,
		Position: 0,
	}, ts)
}

func TestInsertPlay(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", time.Now()))
	if err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to succeed")
	}

	plays, _, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if plays != 1 {
		t.Errorf("expected 1 play, got %d", plays)
	}
}

func TestInsertPlayDedupWindow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now)); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}

	// Same identity within the window is suppressed.
	inserted, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now.Add(10*time.Second)))
	if err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if inserted {
		t.Error("expected duplicate insert within window to be suppressed")
	}

	plays, _, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if plays != 1 {
		t.Errorf("expected 1 play after dedup, got %d", plays)
	}

	// Outside the window a new row is written.
	inserted, err = s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now.Add(2*time.Minute)))
	if err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if !inserted {
		t.Error("expected insert outside window to succeed")
	}
}

func TestInsertPlayDifferentIdentityNotDeduped(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now)); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}

	inserted, err := s.InsertPlay(ctx, testRecord("Song A", "Artist Y", "Spotify", now))
	if err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if !inserted {
		t.Error("different artist should not be deduplicated")
	}
}

func TestUpdateProgress(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now)); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}

	updated, err := s.UpdateProgress(ctx, "Song A", "Artist X", "Spotify", 100, 50, "Playing", now.Add(30*time.Second))
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !updated {
		t.Fatal("expected progress update to find the row")
	}

	records, err := s.RecentPlays(ctx, 1)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Position != 100 || rec.Percentage != 50 || rec.Status != "Playing" {
		t.Errorf("progress fields not updated: %+v", rec)
	}
}

func TestUpdateProgressNoMatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	updated, err := s.UpdateProgress(ctx, "Missing", "Nobody", "Spotify", 10, 5, "Playing", time.Now())
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if updated {
		t.Error("expected no match for unknown identity")
	}
}

func TestUpdateProgressPicksMostRecent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	// Two plays of the same song, well apart.
	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now.Add(-time.Hour))); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now)); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}

	if _, err := s.UpdateProgress(ctx, "Song A", "Artist X", "Spotify", 150, 75, "Playing", now.Add(time.Minute)); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	records, err := s.RecentPlays(ctx, 2)
	if err != nil {
		t.Fatalf("RecentPlays: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Percentage != 75 {
		t.Errorf("most recent record should carry the update, got %+v", records[0])
	}
	if records[1].Percentage == 75 {
		t.Error("older record should be untouched")
	}
}

func TestInsertSessionAndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	start := time.Now().Add(-time.Hour)
	end := time.Now()

	err := s.InsertSession(ctx, SessionRecord{Start: start, End: end, AppName: "Spotify", TracksPlayed: 7})
	if err != nil {
		t.Fatalf("InsertSession: %v", err)
	}

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.TracksPlayed != 7 || got.AppName != "Spotify" {
		t.Errorf("session fields wrong: %+v", got)
	}
	if got.End.Before(got.Start) {
		t.Error("session end before start")
	}
}

func TestPlayPercentage(t *testing.T) {
	cases := []struct {
		duration, position, want int
	}{
		{200, 0, 0},
		{200, 100, 50},
		{200, 200, 100},
		{200, 300, 100},
		{200, -5, 0},
		{0, 100, 0},
		{-1, 100, 0},
	}
	for _, tc := range cases {
		if got := PlayPercentage(tc.duration, tc.position); got != tc.want {
			t.Errorf("PlayPercentage(%d, %d) = %d, want %d", tc.duration, tc.position, got, tc.want)
		}
	}
}

func TestMigrateAddsPlayPercentage(t *testing.T) {
	// A database created before play_percentage existed gains the column.
	s := createTestStore(t)

	if _, err := s.db.Exec(`ALTER TABLE media_history DROP COLUMN play_percentage`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := s.migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := s.InsertPlay(context.Background(), testRecord("Song A", "Artist X", "Spotify", time.Now())); err != nil {
		t.Fatalf("insert after migration: %v", err)
	}

	// Running again against the migrated schema is a no-op.
	if err := s.migrate(); err != nil {
		t.Fatalf("migrate re-run: %v", err)
	}
}

func TestExportAll(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.InsertPlay(ctx, testRecord("Song A", "Artist X", "Spotify", now)); err != nil {
		t.Fatalf("InsertPlay: %v", err)
	}
	if err := s.InsertSession(ctx, SessionRecord{Start: now.Add(-time.Hour), End: now, AppName: "Spotify", TracksPlayed: 1}); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}

	export, err := s.ExportAll(ctx, true)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	if export.Info.TotalTracks != 1 || export.Info.TotalSessions != 1 {
		t.Errorf("export info wrong: %+v", export.Info)
	}
	if len(export.Tracks) != 1 || len(export.Sessions) != 1 {
		t.Errorf("export payload wrong: %d tracks, %d sessions", len(export.Tracks), len(export.Sessions))
	}
	if export.Statistics == nil {
		t.Error("expected statistics block")
	}

	export, err = s.ExportAll(ctx, false)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if export.Statistics != nil {
		t.Error("statistics should be omitted when not requested")
	}
}
