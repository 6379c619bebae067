package media

import (
	"fmt"
	"strconv"
	"strings"
)

// SMTCSource reads the current session from the Windows System Media
// Transport Controls surface. Each poll shells out to PowerShell, which
// bridges into the WinRT GlobalSystemMediaTransportControlsSessionManager and
// prints one delimited record.
type SMTCSource struct {
	resolve func(appID string) string
	ignored func(appID string) bool
}

// NewSMTCSource creates an SMTC-backed source. resolve maps a raw app user
// model id to a display name; ignored filters whole apps out of history.
// Snapshots from ignored apps are reported as empty.
func NewSMTCSource(resolve func(string) string, ignored func(string) bool) *SMTCSource {
	return &SMTCSource{resolve: resolve, ignored: ignored}
}

// smtcScript queries the current SMTC session and prints
// "title|||artist|||album|||albumArtist|||trackNumber|||genre|||appID|||status|||duration|||position",
// or "none" when no session exists. Status is the raw WinRT enum value
// (0=Closed .. 5=Paused).
const smtcScript = `
Add-Type -AssemblyName System.Runtime.WindowsRuntime
$asTaskGeneric = ([System.WindowsRuntimeSystemExtensions].GetMethods() | Where-Object { $_.Name -eq 'AsTask' -and $_.GetParameters().Count -eq 1 -and $_.GetParameters()[0].ParameterType.Name -eq 'IAsyncOperation` + "`" + `1' })[0]
function Await($winRtTask, $resultType) {
	$asTask = $asTaskGeneric.MakeGenericMethod($resultType)
	$netTask = $asTask.Invoke($null, @($winRtTask))
	$null = $netTask.Wait(-1)
	$netTask.Result
}
$null = [Windows.Media.Control.GlobalSystemMediaTransportControlsSessionManager,Windows.Media.Control,ContentType=WindowsRuntime]
$mgr = Await ([Windows.Media.Control.GlobalSystemMediaTransportControlsSessionManager]::RequestAsync()) ([Windows.Media.Control.GlobalSystemMediaTransportControlsSessionManager])
$session = $mgr.GetCurrentSession()
if ($null -eq $session) { 'none'; exit }
$props = Await ($session.TryGetMediaPropertiesAsync()) ([Windows.Media.Control.GlobalSystemMediaTransportControlsSessionMediaProperties])
$playback = $session.GetPlaybackInfo()
$timeline = $session.GetTimelineProperties()
$genre = ''
if ($props.Genres.Count -gt 0) { $genre = $props.Genres[0] }
$fields = @(
	$props.Title, $props.Artist, $props.AlbumTitle, $props.AlbumArtist,
	$props.TrackNumber, $genre, $session.SourceAppUserModelId,
	[int]$playback.PlaybackStatus,
	[int]$timeline.EndTime.TotalSeconds, [int]$timeline.Position.TotalSeconds
)
($fields -join '|||')
`

// parseSessionOutput parses the delimited record printed by smtcScript.
func parseSessionOutput(output string) (Snapshot, error) {
	output = strings.TrimSpace(output)
	if output == "" || output == "none" {
		return Snapshot{}, nil
	}

	parts := strings.Split(output, "|||")
	if len(parts) != 10 {
		return Snapshot{}, fmt.Errorf("expected 10 fields, got %d: %q", len(parts), output)
	}

	snap := Snapshot{
		Title:       strings.TrimSpace(parts[0]),
		Artist:      strings.TrimSpace(parts[1]),
		Album:       strings.TrimSpace(parts[2]),
		AlbumArtist: strings.TrimSpace(parts[3]),
		Genre:       strings.TrimSpace(parts[5]),
		AppID:       strings.TrimSpace(parts[6]),
	}

	// Numeric fields arrive as decimal integers; a malformed value degrades
	// to its zero default rather than failing the whole read.
	snap.TrackNumber = parseInt(parts[4])
	snap.Duration = parseInt(parts[8])
	snap.Position = parseInt(parts[9])

	snap.Status = StatusUnknown
	if code, err := strconv.Atoi(strings.TrimSpace(parts[7])); err == nil {
		snap.Status = statusFromCode(code)
	}

	return snap, nil
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// statusFromCode maps the raw WinRT playback status enum to Status.
func statusFromCode(code int) Status {
	switch code {
	case 0:
		return StatusClosed
	case 1:
		return StatusOpened
	case 2:
		return StatusChanging
	case 3:
		return StatusStopped
	case 4:
		return StatusPlaying
	case 5:
		return StatusPaused
	default:
		return StatusUnknown
	}
}

// finish applies app-name resolution and the ignore list to a parsed
// snapshot. Ignored apps are reported as if nothing were playing.
func (s *SMTCSource) finish(snap Snapshot) Snapshot {
	if snap.Empty() {
		return Snapshot{}
	}
	if s.ignored != nil && s.ignored(snap.AppID) {
		return Snapshot{}
	}
	snap.AppName = snap.AppID
	if s.resolve != nil {
		snap.AppName = s.resolve(snap.AppID)
	}
	return snap
}
