package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Interval() != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", cfg.Interval())
	}
	if cfg.AcquireMaxWait() != 5*time.Second {
		t.Errorf("AcquireMaxWait = %v, want 5s", cfg.AcquireMaxWait())
	}
	if cfg.DedupWindow() != time.Minute {
		t.Errorf("DedupWindow = %v, want 1m", cfg.DedupWindow())
	}
	if cfg.BackupInterval() != 7*24*time.Hour {
		t.Errorf("BackupInterval = %v, want 7 days", cfg.BackupInterval())
	}
	if cfg.Database.Path == "" {
		t.Error("expected a default database path")
	}
	if cfg.Display.DefaultRecentLimit != 10 {
		t.Errorf("DefaultRecentLimit = %d, want 10", cfg.Display.DefaultRecentLimit)
	}
	if cfg.Export.DefaultFilename != "media_history.json" {
		t.Errorf("export filename = %q, want media_history.json", cfg.Export.DefaultFilename)
	}
	if !cfg.Export.IncludeStatistics {
		t.Error("exports should include statistics by default")
	}
}

func TestIntervalClamping(t *testing.T) {
	cases := []struct {
		name             string
		interval, lo, hi int
		want             time.Duration
	}{
		{"below minimum", 0, 1, 60, time.Second},
		{"negative", -3, 1, 60, time.Second},
		{"at minimum", 1, 1, 60, time.Second},
		{"in range", 30, 1, 60, 30 * time.Second},
		{"at maximum", 60, 1, 60, 60 * time.Second},
		{"above maximum", 500, 1, 60, 60 * time.Second},
		{"custom bounds", 2, 10, 20, 10 * time.Second},
		{"absent bounds fall back", 30, 0, 0, 30 * time.Second},
		{"inverted bounds collapse", 30, 15, 5, 15 * time.Second},
	}
	for _, tc := range cases {
		cfg := &Config{Monitoring: MonitoringConfig{
			DefaultInterval: tc.interval,
			MinInterval:     tc.lo,
			MaxInterval:     tc.hi,
		}}
		if got := cfg.Interval(); got != tc.want {
			t.Errorf("%s: Interval(%d, [%d,%d]) = %v, want %v",
				tc.name, tc.interval, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestBackupIntervalDisabled(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{AutoBackup: false, BackupIntervalDays: 7}}
	if cfg.BackupInterval() != 0 {
		t.Errorf("BackupInterval with auto_backup off = %v, want 0", cfg.BackupInterval())
	}

	cfg = &Config{Database: DatabaseConfig{AutoBackup: true, BackupIntervalDays: 0}}
	if cfg.BackupInterval() != 0 {
		t.Errorf("BackupInterval with zero days = %v, want 0", cfg.BackupInterval())
	}
}

func TestAppName(t *testing.T) {
	cfg := &Config{Apps: AppsConfig{NameMapping: map[string]string{
		"Spotify.exe":    "Spotify",
		"CloudMusic.exe": "网易云音乐",
	}}}

	if got := cfg.AppName("Spotify.exe"); got != "Spotify" {
		t.Errorf("AppName exact = %q", got)
	}
	if got := cfg.AppName("spotify.exe"); got != "Spotify" {
		t.Errorf("AppName case-insensitive = %q", got)
	}
	if got := cfg.AppName("CloudMusic.exe"); got != "网易云音乐" {
		t.Errorf("AppName unicode = %q", got)
	}
	if got := cfg.AppName("Unknown.exe"); got != "Unknown.exe" {
		t.Errorf("AppName fallback = %q", got)
	}
}

func TestAppIgnored(t *testing.T) {
	cfg := &Config{Apps: AppsConfig{IgnoredApps: []string{"Teams.exe", "Zoom.exe"}}}

	if !cfg.AppIgnored("Teams.exe") {
		t.Error("expected Teams.exe to be ignored")
	}
	if !cfg.AppIgnored("teams.exe") {
		t.Error("ignore matching should be case-insensitive")
	}
	if cfg.AppIgnored("Spotify.exe") {
		t.Error("Spotify.exe should not be ignored")
	}
}

func TestDefaultNameMappingApplied(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AppName("CloudMusic.exe"); got != "网易云音乐" {
		t.Errorf("default mapping missing, got %q", got)
	}
}
