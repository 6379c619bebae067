package media

import "testing"

func TestParseSessionOutput(t *testing.T) {
	output := "Song|||Artist|||Album|||Album Artist|||7|||Rock|||Spotify.exe|||4|||215|||33\n"

	snap, err := parseSessionOutput(output)
	if err != nil {
		t.Fatalf("parseSessionOutput: %v", err)
	}

	want := Snapshot{
		Title:       "Song",
		Artist:      "Artist",
		Album:       "Album",
		AlbumArtist: "Album Artist",
		TrackNumber: 7,
		Genre:       "Rock",
		AppID:       "Spotify.exe",
		Status:      StatusPlaying,
		Duration:    215,
		Position:    33,
	}
	if snap != want {
		t.Errorf("parsed snapshot = %+v, want %+v", snap, want)
	}
}

func TestParseSessionOutputNoSession(t *testing.T) {
	for _, output := range []string{"none", "none\r\n", ""} {
		snap, err := parseSessionOutput(output)
		if err != nil {
			t.Fatalf("parseSessionOutput(%q): %v", output, err)
		}
		if !snap.Empty() {
			t.Errorf("parseSessionOutput(%q) = %+v, want empty", output, snap)
		}
	}
}

func TestParseSessionOutputMalformed(t *testing.T) {
	if _, err := parseSessionOutput("only|||four|||fields|||here"); err == nil {
		t.Error("expected error for wrong field count")
	}
}

func TestParseSessionOutputBadNumbers(t *testing.T) {
	output := "Song|||Artist|||Album|||||| |||" + "|||Spotify.exe|||abc|||-|||x"
	snap, err := parseSessionOutput(output)
	if err != nil {
		t.Fatalf("parseSessionOutput: %v", err)
	}
	if snap.Status != StatusUnknown || snap.Duration != 0 || snap.Position != 0 {
		t.Errorf("malformed numerics should default to zero values: %+v", snap)
	}
}

func TestSourceFinishAppliesIgnoreListAndResolution(t *testing.T) {
	src := NewSMTCSource(
		func(id string) string {
			if id == "Spotify.exe" {
				return "Spotify"
			}
			return id
		},
		func(id string) bool { return id == "chrome.exe" },
	)

	snap := src.finish(Snapshot{Title: "Song", AppID: "Spotify.exe"})
	if snap.AppName != "Spotify" {
		t.Errorf("AppName = %q, want resolved name", snap.AppName)
	}

	snap = src.finish(Snapshot{Title: "Song", AppID: "vlc.exe"})
	if snap.AppName != "vlc.exe" {
		t.Errorf("unmapped app id should fall back to raw id, got %q", snap.AppName)
	}

	snap = src.finish(Snapshot{Title: "Song", AppID: "chrome.exe"})
	if !snap.Empty() {
		t.Errorf("ignored app should yield empty snapshot, got %+v", snap)
	}
}
