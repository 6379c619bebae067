// Package tui renders a live dashboard for the playback monitor.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mediatrail/mediatrail/internal/media"
	"github.com/mediatrail/mediatrail/internal/monitor"
	"github.com/rivo/tview"
)

const maxRecentTracks = 5

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 500 * time.Millisecond,
	}
}

// RecentTrack stores info about a recently recorded play
type RecentTrack struct {
	Title    string
	Artist   string
	Resumed  bool
	PlayedAt time.Time
}

// App is the TUI application for displaying playback history as it is recorded
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	progress   *tview.TextView
	session    *tview.TextView
	recent     *tview.TextView
	status     *tview.TextView

	// Configuration
	config Config

	// Mutex protects shared state accessed by both the channel consumer
	// goroutine and the ticker goroutine in handleEvents.
	mu sync.Mutex

	// Current state (guarded by mu)
	current   media.Snapshot
	lastEvent time.Time

	// Session stats (guarded by mu)
	sessionStart time.Time
	tracksPlayed int

	// Ring buffer for recent tracks (avoids allocation on every track change)
	recentBuf   [maxRecentTracks]RecentTrack
	recentCount int // total tracks added (recentCount % maxRecentTracks = next write index)

	// Last-rendered content for change detection
	lastNowPlaying string
	lastProgress   string
	lastSession    string
	lastRecent     string

	// Cached progress bar width to stabilize change detection.
	// Updated only when GetInnerRect returns a positive value.
	lastBarWidth int

	// Context cancel function
	cancelFunc context.CancelFunc
}

// New creates a new TUI application with default config
func New() *App {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new TUI application with the given config
func NewWithConfig(cfg Config) *App {
	a := &App{
		app:          tview.NewApplication(),
		config:       cfg,
		sessionStart: time.Now(),
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Now playing panel
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	// Progress bar
	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	// Session stats
	a.session = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.session.SetBorder(true).
		SetTitle(" Session ").
		SetTitleAlign(tview.AlignLeft)

	// Recent tracks
	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recorded ").
		SetTitleAlign(tview.AlignLeft)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit[-]")

	// Create layout
	// Top row: now playing (takes most space)
	// Middle row: progress bar
	// Bottom row: session stats | recorded tracks
	// Footer: status bar

	bottomRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.session, 0, 1, false).
		AddItem(a.recent, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 0, 3, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(bottomRow, 7, 1, false).
		AddItem(a.status, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	}
	return event
}

// Run starts the TUI fed by the monitor's event channel
func (a *App) Run(ctx context.Context, events <-chan monitor.Event) error {
	// Create cancellable context
	ctx, a.cancelFunc = context.WithCancel(ctx)

	// Start update goroutine
	go a.handleEvents(ctx, events)

	// Run application
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// handleEvents consumes monitor events and refreshes the display.
// It splits work into two goroutines: one consumes channel events (state only),
// and a single ticker drives all redraws to prevent queued redraw buildup.
// All shared App fields are protected by a.mu.
func (a *App) handleEvents(ctx context.Context, events <-chan monitor.Event) {
	// Channel consumer goroutine: updates track info but does NOT trigger
	// redraws. The ticker goroutine is the sole caller of refresh().
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				a.mu.Lock()
				a.applyEvent(ev)
				a.mu.Unlock()
			}
		}
	}()

	// Single refresh ticker: the only source of redraws
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

// applyEvent folds one monitor event into the display state.
// Must be called with a.mu held.
func (a *App) applyEvent(ev monitor.Event) {
	if ev.Snapshot.Identity() != a.current.Identity() {
		a.current = ev.Snapshot
	} else {
		a.current = media.Merge(a.current, ev.Snapshot)
	}
	a.lastEvent = ev.Time

	switch ev.Type {
	case monitor.EventNew, monitor.EventResume:
		a.addToRecentTracks(ev)
		a.tracksPlayed++
	}
}

// addToRecentTracks adds a track to the ring buffer of recent tracks.
// Must be called with a.mu held.
func (a *App) addToRecentTracks(ev monitor.Event) {
	// Write into ring buffer at the current position
	idx := a.recentCount % maxRecentTracks
	a.recentBuf[idx] = RecentTrack{
		Title:    ev.Snapshot.Title,
		Artist:   ev.Snapshot.Artist,
		Resumed:  ev.Type == monitor.EventResume,
		PlayedAt: ev.Time,
	}
	a.recentCount++
}

// getRecentTracks returns recent tracks in most-recent-first order.
// Must be called with a.mu held.
func (a *App) getRecentTracks() []RecentTrack {
	n := a.recentCount
	if n > maxRecentTracks {
		n = maxRecentTracks
	}
	result := make([]RecentTrack, n)
	for i := 0; i < n; i++ {
		// Walk backwards from the most recently written slot
		idx := (a.recentCount - 1 - i) % maxRecentTracks
		result[i] = a.recentBuf[idx]
	}
	return result
}

// refresh updates all UI components
func (a *App) refresh() {
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.updateNowPlaying()
		a.updateProgress()
		a.updateSession()
		a.updateRecentTracks()
	})
}

// updateNowPlaying updates the now playing panel
func (a *App) updateNowPlaying() {
	var text string

	if a.current.Empty() {
		text = "\n\n[gray]No track playing[-]"
	} else {
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(a.current.Title)))
		sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(a.current.Artist)))
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", tview.Escape(a.current.Album)))
		sb.WriteString(fmt.Sprintf("[gray]%s[-]", tview.Escape(a.current.AppName)))

		// Play state indicator
		stateIcon := "[green]▶[-]" // Play triangle
		if a.current.Status == media.StatusPaused {
			stateIcon = "[yellow]⏸[-]" // Pause icon
		}
		sb.WriteString(fmt.Sprintf("\n\n%s", stateIcon))
		text = sb.String()
	}

	if text != a.lastNowPlaying {
		a.lastNowPlaying = text
		a.nowPlaying.SetText(text)
	}
}

// updateProgress updates the progress bar
func (a *App) updateProgress() {
	var text string

	if a.current.Empty() {
		text = ""
	} else {
		_, _, width, _ := a.progress.GetInnerRect()
		barWidth := width - 14 // Account for time display
		// Only update cached width when GetInnerRect returns a positive value,
		// avoiding flicker from transient zero-width during layout.
		if barWidth > 0 {
			a.lastBarWidth = barWidth
		}
		if a.lastBarWidth < 10 {
			a.lastBarWidth = 10
		}

		progressBar := buildProgressBar(a.current.Position, a.current.Duration, a.lastBarWidth)
		posStr := formatSeconds(a.current.Position)
		durStr := formatSeconds(a.current.Duration)
		text = fmt.Sprintf("%s %s %s", posStr, progressBar, durStr)
	}

	if text != a.lastProgress {
		a.lastProgress = text
		a.progress.SetText(text)
	}
}

// updateSession updates the session stats panel
func (a *App) updateSession() {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Tracks:  %d\n", a.tracksPlayed))
	sb.WriteString(fmt.Sprintf("Elapsed: %s\n", formatSeconds(int(time.Since(a.sessionStart).Seconds()))))
	if !a.lastEvent.IsZero() {
		sb.WriteString(fmt.Sprintf("Last:    %s", a.lastEvent.Format("15:04:05")))
	} else {
		sb.WriteString("[gray]Waiting for playback...[-]")
	}

	text := sb.String()
	if text != a.lastSession {
		a.lastSession = text
		a.session.SetText(text)
	}
}

// updateRecentTracks updates the recorded tracks panel
func (a *App) updateRecentTracks() {
	var sb strings.Builder

	tracks := a.getRecentTracks()
	if len(tracks) == 0 {
		sb.WriteString("[gray]Nothing recorded yet[-]")
	} else {
		for i, track := range tracks {
			if i > 0 {
				sb.WriteString("\n")
			}

			// Resume indicator
			if track.Resumed {
				sb.WriteString("[yellow]↻[-] ")
			} else {
				sb.WriteString("[green]+[-] ")
			}

			// Truncate title if too long
			title := track.Title
			if len(title) > 20 {
				title = title[:17] + "..."
			}
			sb.WriteString(fmt.Sprintf("[white]%s[-]", tview.Escape(title)))
		}
	}

	text := sb.String()
	if text != a.lastRecent {
		a.lastRecent = text
		a.recent.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// buildProgressBar creates a text-based progress bar
func buildProgressBar(position, duration, width int) string {
	if duration == 0 || width <= 0 {
		return strings.Repeat("-", width)
	}

	progress := float64(position) / float64(duration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"

	return bar
}

// formatSeconds formats a second count as MM:SS or H:MM:SS for longer spans
func formatSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}

	hours := secs / 3600
	minutes := (secs / 60) % 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
