package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
	"github.com/mediatrail/mediatrail/internal/monitor"
)

func newEvent(typ monitor.EventType, title, artist string) monitor.Event {
	return monitor.Event{
		Type: typ,
		Snapshot: media.Snapshot{
			Title:    title,
			Artist:   artist,
			AppName:  "Spotify",
			Status:   media.StatusPlaying,
			Duration: 200,
		},
		Time: time.Now(),
	}
}

func TestApplyEventCountsRecordedTracks(t *testing.T) {
	a := New()

	a.applyEvent(newEvent(monitor.EventNew, "Song A", "Artist X"))
	a.applyEvent(newEvent(monitor.EventProgress, "Song A", "Artist X"))
	a.applyEvent(newEvent(monitor.EventNew, "Song B", "Artist Y"))

	if a.tracksPlayed != 2 {
		t.Errorf("tracksPlayed = %d, want 2", a.tracksPlayed)
	}
	if a.current.Title != "Song B" {
		t.Errorf("current track = %q, want Song B", a.current.Title)
	}
}

func TestApplyEventMergesProgress(t *testing.T) {
	a := New()

	a.applyEvent(newEvent(monitor.EventNew, "Song A", "Artist X"))

	progress := newEvent(monitor.EventProgress, "Song A", "Artist X")
	progress.Snapshot.Position = 42
	progress.Snapshot.Album = "The Album"
	a.applyEvent(progress)

	if a.current.Position != 42 {
		t.Errorf("position = %d, want 42", a.current.Position)
	}
	if a.current.Album != "The Album" {
		t.Errorf("album not merged: %+v", a.current)
	}
}

func TestRecentTracksRingBuffer(t *testing.T) {
	a := New()

	// Fill past capacity
	titles := []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"}
	for _, title := range titles {
		a.applyEvent(newEvent(monitor.EventNew, title, "Artist"))
	}

	recent := a.getRecentTracks()
	if len(recent) != maxRecentTracks {
		t.Fatalf("expected %d recent tracks, got %d", maxRecentTracks, len(recent))
	}

	// Most recent first
	if recent[0].Title != "Seven" {
		t.Errorf("first recent = %q, want Seven", recent[0].Title)
	}
	if recent[maxRecentTracks-1].Title != "Three" {
		t.Errorf("last recent = %q, want Three", recent[maxRecentTracks-1].Title)
	}
}

func TestRecentTracksMarksResume(t *testing.T) {
	a := New()

	a.applyEvent(newEvent(monitor.EventNew, "Song A", "Artist X"))
	a.applyEvent(newEvent(monitor.EventResume, "Song A", "Artist X"))

	recent := a.getRecentTracks()
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d", len(recent))
	}
	if !recent[0].Resumed {
		t.Error("latest entry should be marked as a resume")
	}
	if recent[1].Resumed {
		t.Error("original entry should not be marked as a resume")
	}
}

func TestBuildProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		position int
		duration int
		width    int
	}{
		{"start", 0, 100, 10},
		{"half", 50, 100, 10},
		{"done", 100, 100, 10},
		{"overshoot", 150, 100, 10},
		{"unknown duration", 50, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := buildProgressBar(tt.position, tt.duration, tt.width)
			if bar == "" {
				t.Error("expected non-empty bar")
			}
			// Count fill characters, ignoring color tags
			filled := strings.Count(bar, "█")
			empty := strings.Count(bar, "░")
			if tt.duration > 0 && filled+empty != tt.width {
				t.Errorf("bar cells = %d, want %d", filled+empty, tt.width)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{-5, "00:00"},
		{59, "00:59"},
		{61, "01:01"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := formatSeconds(tt.secs); got != tt.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
