package monitor

import (
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
)

// EventType classifies what a tick decided about the current snapshot.
type EventType int

const (
	// EventNew marks the first sighting of a track identity.
	EventNew EventType = iota
	// EventResume marks a track returning to playback after a pause or stop.
	EventResume
	// EventProgress marks a position update for the track already being tracked.
	EventProgress
)

func (e EventType) String() string {
	switch e {
	case EventNew:
		return "new"
	case EventResume:
		return "resume"
	case EventProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Event is a classified observation emitted to listeners such as the TUI.
type Event struct {
	Type     EventType
	Snapshot media.Snapshot
	Time     time.Time
}
