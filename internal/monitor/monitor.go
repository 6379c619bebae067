// Package monitor runs the polling loop that turns raw media snapshots into
// deduplicated play history and session records.
package monitor

import (
	"context"
	"time"

	"github.com/mediatrail/mediatrail/internal/media"
	"github.com/mediatrail/mediatrail/internal/store"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often the media source is polled.
const DefaultInterval = 5 * time.Second

// Store is the persistence surface the monitor writes through.
type Store interface {
	InsertPlay(ctx context.Context, rec store.PlayRecord) (bool, error)
	UpdateProgress(ctx context.Context, title, artist, appName string, position, percentage int, status string, ts time.Time) (bool, error)
	InsertSession(ctx context.Context, rec store.SessionRecord) error
}

// Config holds monitor configuration.
type Config struct {
	Interval       time.Duration // How often to poll the media source
	AcquireMaxWait time.Duration // Upper bound on waiting for metadata to settle
	Events         chan<- Event  // Optional listener channel; sends never block
}

// Monitor coordinates polling, classification and persistence.
type Monitor struct {
	source  media.Source
	store   Store
	events  chan<- Event
	maxWait time.Duration
	ticks   time.Duration
	logger  zerolog.Logger

	// Per-track state between ticks. cache holds the best merged snapshot
	// seen for each identity, so a later partial read of a track heard
	// earlier starts from its known metadata.
	cache      map[string]media.Snapshot
	current    media.Snapshot
	prevStatus media.Status

	// Session accumulation.
	tracksPlayed int
	sessionApp   string
}

// New creates a Monitor polling source and writing through st.
func New(cfg Config, source media.Source, st Store, logger zerolog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.AcquireMaxWait <= 0 {
		cfg.AcquireMaxWait = DefaultAcquireMaxWait
	}
	return &Monitor{
		source:  source,
		store:   st,
		events:  cfg.Events,
		maxWait: cfg.AcquireMaxWait,
		ticks:   cfg.Interval,
		cache:   make(map[string]media.Snapshot),
		logger:  logger.With().Str("component", "monitor").Logger(),
	}
}

// Run polls until the context is cancelled, then records the session summary.
// Always returns the context's error.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().
		Dur("interval", m.ticks).
		Msg("Starting monitor")

	sessionStart := time.Now()
	ticker := time.NewTicker(m.ticks)
	defer ticker.Stop()

	// Poll immediately on start
	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			m.flushSession(sessionStart)
			m.logger.Info().Msg("Monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick takes one snapshot and classifies it against the previous one.
func (m *Monitor) tick(ctx context.Context) {
	snap, err := m.acquire(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Poll failed")
		return
	}
	if snap.Empty() {
		// No signal this tick. SMTC transiently reports no session during
		// track transitions (and ignored apps read as empty); keep the
		// tracked identity so the continuing track is not reclassified as
		// a new play.
		return
	}

	now := time.Now()
	id := snap.Identity()
	newTrack := id != m.current.Identity()

	m.cache[id] = media.Merge(m.cache[id], snap)
	m.current = m.cache[id]

	if newTrack {
		m.handleNewTrack(ctx, snap, now)
	} else {
		m.handleSameTrack(ctx, snap, now)
	}
	m.prevStatus = snap.Status
	if snap.Status == media.StatusPlaying {
		m.sessionApp = snap.AppName
	}
}

// handleNewTrack records a first sighting of a track identity. Only actual
// inserts count toward the session's played tracks; a dedup hit falls back to
// refreshing the existing row's progress.
func (m *Monitor) handleNewTrack(ctx context.Context, snap media.Snapshot, now time.Time) {
	if snap.Status != media.StatusPlaying {
		return
	}

	inserted, err := m.record(ctx, snap, now)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to record new track")
		return
	}

	if inserted {
		m.tracksPlayed++
		m.logger.Info().
			Str("title", snap.Title).
			Str("artist", snap.Artist).
			Str("app", snap.AppName).
			Msg("New track")
		m.emit(Event{Type: EventNew, Snapshot: snap, Time: now})
	} else {
		m.logger.Debug().
			Str("title", snap.Title).
			Msg("Track already recorded recently")
		m.emit(Event{Type: EventProgress, Snapshot: snap, Time: now})
	}
}

// handleSameTrack updates progress for the track already being tracked and
// detects pause→play transitions.
func (m *Monitor) handleSameTrack(ctx context.Context, snap media.Snapshot, now time.Time) {
	if snap.Status != media.StatusPlaying {
		return
	}

	if m.prevStatus != media.StatusPlaying {
		// Resumed after a pause or stop. A long gap yields a fresh row,
		// which counts as another play of the track.
		inserted, err := m.record(ctx, snap, now)
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to record resume")
			return
		}
		if inserted {
			m.tracksPlayed++
		}
		m.logger.Info().
			Str("title", snap.Title).
			Str("artist", snap.Artist).
			Msg("Playback resumed")
		m.emit(Event{Type: EventResume, Snapshot: snap, Time: now})
		return
	}

	pct := store.PlayPercentage(m.current.Duration, snap.Position)
	updated, err := m.store.UpdateProgress(ctx, snap.Title, snap.Artist, snap.AppName,
		snap.Position, pct, snap.Status.String(), now)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to update progress")
		return
	}
	if !updated {
		// Row never made it in (e.g. database was recreated); write one now.
		if _, err := m.store.InsertPlay(ctx, store.NewPlayRecord(m.current, now)); err != nil {
			m.logger.Error().Err(err).Msg("Failed to backfill play")
			return
		}
	}
	m.emit(Event{Type: EventProgress, Snapshot: snap, Time: now})
}

// record inserts a play, falling back to a progress refresh when the insert is
// deduplicated. Returns whether a new row was written.
func (m *Monitor) record(ctx context.Context, snap media.Snapshot, now time.Time) (bool, error) {
	inserted, err := m.store.InsertPlay(ctx, store.NewPlayRecord(m.current, now))
	if err != nil {
		return false, err
	}
	if !inserted {
		pct := store.PlayPercentage(m.current.Duration, snap.Position)
		if _, err := m.store.UpdateProgress(ctx, snap.Title, snap.Artist, snap.AppName,
			snap.Position, pct, snap.Status.String(), now); err != nil {
			return false, err
		}
	}
	return inserted, nil
}

// flushSession writes the session summary for this run. Sessions with no
// tracks are not recorded. Uses a fresh context because the run context is
// already cancelled by the time this is called.
func (m *Monitor) flushSession(start time.Time) {
	if m.tracksPlayed == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := store.SessionRecord{
		Start:        start,
		End:          time.Now(),
		AppName:      m.sessionApp,
		TracksPlayed: m.tracksPlayed,
	}
	if err := m.store.InsertSession(ctx, rec); err != nil {
		m.logger.Error().Err(err).Msg("Failed to record session")
		return
	}
	m.logger.Info().
		Int("tracks", m.tracksPlayed).
		Str("app", m.sessionApp).
		Msg("Session recorded")
}

// emit sends ev to the listener channel without blocking.
func (m *Monitor) emit(ev Event) {
	if m.events == nil {
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}
