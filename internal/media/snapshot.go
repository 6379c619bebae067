package media

import (
	"context"
	"strings"
)

// Snapshot is a single point-in-time read of the system "now playing" state.
// A snapshot with an empty Title means nothing is playing; such snapshots are
// never persisted or merged into history.
type Snapshot struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber int
	Genre       string
	Year        int

	AppID   string // raw source app user model id
	AppName string // display name resolved from AppID

	Status   Status
	Duration int // total length in seconds, 0 = unknown
	Position int // playback position in seconds
}

// Status is the transport-control playback status of the source app.
type Status int

const (
	StatusUnknown Status = iota
	StatusClosed
	StatusOpened
	StatusChanging
	StatusStopped
	StatusPlaying
	StatusPaused
)

// String returns the status name as reported in play history records.
func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "Closed"
	case StatusOpened:
		return "Opened"
	case StatusChanging:
		return "Changing"
	case StatusStopped:
		return "Stopped"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Empty reports whether the snapshot carries no media at all.
func (s Snapshot) Empty() bool {
	return s.Title == ""
}

// Identity derives the stable key used to recognize "the same logical track"
// across polls. It depends only on title, artist and app display name; missing
// fields serialize as empty segments.
func (s Snapshot) Identity() string {
	return strings.Join([]string{s.Title, s.Artist, s.AppName}, "_")
}

// Source produces a best-effort media snapshot on demand. Implementations may
// return partial or empty snapshots, and may fail transiently.
type Source interface {
	Poll(ctx context.Context) (Snapshot, error)
}
