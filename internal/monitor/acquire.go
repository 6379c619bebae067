package monitor

import (
	"context"
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
)

// DefaultAcquireMaxWait bounds how long a tick waits for metadata to settle.
const DefaultAcquireMaxWait = 5 * time.Second

// acquireBackoff is the spacing between re-polls while waiting for a track's
// metadata to fill in. The last value repeats until the deadline.
var acquireBackoff = []time.Duration{
	500 * time.Millisecond,
	time.Second,
	1500 * time.Millisecond,
	2 * time.Second,
}

// acquire polls the source, re-polling with increasing delays while the
// snapshot is incomplete. Media apps often report a new track in pieces, so a
// single poll right after a track change tends to miss the duration or album.
// Returns the best merged snapshot once it is complete, once the track
// switches away, or once the deadline or context expires.
func (m *Monitor) acquire(ctx context.Context) (media.Snapshot, error) {
	best, err := m.source.Poll(ctx)
	if err != nil || best.Empty() {
		return best, err
	}

	identity := best.Identity()

	// A track heard earlier merges with its cached metadata instead of
	// re-polling; only a genuinely new track pays the re-poll wait. Without
	// this, a player that never reports a duration would stall every tick
	// at the full wait.
	if cached, ok := m.cache[identity]; ok {
		return media.Merge(cached, best), nil
	}
	if media.Complete(best) {
		return best, nil
	}
	deadline := time.Now().Add(m.maxWait)

	for attempt := 0; time.Now().Before(deadline); attempt++ {
		delay := acquireBackoff[len(acquireBackoff)-1]
		if attempt < len(acquireBackoff) {
			delay = acquireBackoff[attempt]
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return best, nil
		case <-timer.C:
		}

		next, err := m.source.Poll(ctx)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Re-poll failed while acquiring metadata")
			continue
		}
		if next.Empty() || next.Identity() != identity {
			// The track switched away; report what we gathered for it.
			return best, nil
		}

		best = media.Merge(best, next)
		if media.Complete(best) {
			return best, nil
		}
	}

	m.logger.Debug().
		Str("title", best.Title).
		Int("score", media.Score(best)).
		Msg("Metadata did not settle before deadline")
	return best, nil
}
