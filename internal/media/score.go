package media

// Field weights for the completeness score. Title dominates so that a
// titled-but-bare snapshot still beats a rich but titleless one.
const (
	weightTitle    = 3
	weightArtist   = 2
	weightDuration = 2
	weightAlbum    = 1
	weightStatus   = 1
)

// Score computes how much useful metadata a snapshot carries. It is used to
// pick the best of several reads taken while waiting for the source app to
// finish resolving metadata; the score itself is never persisted.
func Score(s Snapshot) int {
	score := 0
	if fieldPresent(s.Title) {
		score += weightTitle
	}
	if fieldPresent(s.Artist) {
		score += weightArtist
	}
	if s.Duration > 0 {
		score += weightDuration
	}
	if fieldPresent(s.Album) {
		score += weightAlbum
	}
	if s.Status != StatusUnknown {
		score += weightStatus
	}
	return score
}

// Complete reports whether a snapshot needs no further acquisition: the title
// must be present, and a playing track must have a resolved duration (players
// commonly report "Playing" before the timeline is available).
func Complete(s Snapshot) bool {
	if s.Title == "" {
		return false
	}
	if s.Status == StatusPlaying {
		return s.Duration > 0
	}
	return true
}

// fieldPresent reports whether a string field holds real data rather than a
// sentinel placeholder.
func fieldPresent(v string) bool {
	return v != "" && v != "Unknown" && v != "0"
}
