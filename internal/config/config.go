// Package config loads application configuration from file and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Monitoring MonitoringConfig
	Database   DatabaseConfig
	Apps       AppsConfig
	Display    DisplayConfig
	Export     ExportConfig
}

// MonitoringConfig controls the polling loop
type MonitoringConfig struct {
	// Poll interval in seconds, clamped to [MinInterval, MaxInterval]
	DefaultInterval int
	MinInterval     int
	MaxInterval     int

	// Upper bound in seconds on waiting for track metadata to settle
	AcquireMaxWaitSeconds int

	// Window in minutes within which identical plays are merged
	DuplicateThresholdMinutes int
}

// DatabaseConfig controls persistence
type DatabaseConfig struct {
	// Path to the SQLite database file
	Path string

	// AutoBackup enables scheduled backups of the database file
	AutoBackup bool

	// Days between automatic backups
	BackupIntervalDays int
}

// AppsConfig maps and filters media applications
type AppsConfig struct {
	// NameMapping translates app model IDs to display names
	NameMapping map[string]string

	// IgnoredApps lists app IDs whose playback is never recorded
	IgnoredApps []string
}

// DisplayConfig controls command output
type DisplayConfig struct {
	// Number of rows shown by the recent command
	DefaultRecentLimit int

	// Number of entries in ranked statistics lists
	TopN int
}

// ExportConfig controls the export command's defaults
type ExportConfig struct {
	// Filename written when the command is given no argument
	DefaultFilename string

	// Whether exports include the statistics section
	IncludeStatistics bool
}

// defaultNameMapping covers the common desktop players. App model IDs are
// matched case-insensitively.
var defaultNameMapping = map[string]string{
	"Spotify.exe":                  "Spotify",
	"CloudMusic.exe":               "网易云音乐",
	"QQMusic.exe":                  "QQ音乐",
	"KuGou.exe":                    "酷狗音乐",
	"KuwoMusic.exe":                "酷我音乐",
	"foobar2000.exe":               "foobar2000",
	"MusicBee.exe":                 "MusicBee",
	"AIMP.exe":                     "AIMP",
	"vlc.exe":                      "VLC",
	"PotPlayerMini64.exe":          "PotPlayer",
	"Microsoft.ZuneMusic":          "Media Player",
	"AppleInc.AppleMusicWin":       "Apple Music",
	"SpotifyAB.SpotifyMusic":       "Spotify",
	"Microsoft.WindowsMediaPlayer": "Windows Media Player",
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("monitoring.default_interval", 5)
	v.SetDefault("monitoring.min_interval", 1)
	v.SetDefault("monitoring.max_interval", 60)
	v.SetDefault("monitoring.acquire_max_wait_seconds", 5)
	v.SetDefault("monitoring.duplicate_threshold_minutes", 1)
	v.SetDefault("database.path", filepath.Join(configDir, "media_history.db"))
	v.SetDefault("database.auto_backup", true)
	v.SetDefault("database.backup_interval_days", 7)
	v.SetDefault("display.default_recent_limit", 10)
	v.SetDefault("display.top_n", 10)
	v.SetDefault("export.default_filename", "media_history.json")
	v.SetDefault("export.include_statistics", true)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("MEDIATRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	mapping := make(map[string]string, len(defaultNameMapping))
	for id, name := range defaultNameMapping {
		mapping[id] = name
	}
	for id, name := range v.GetStringMapString("apps.name_mapping") {
		mapping[id] = name
	}

	cfg := &Config{
		Monitoring: MonitoringConfig{
			DefaultInterval:           v.GetInt("monitoring.default_interval"),
			MinInterval:               v.GetInt("monitoring.min_interval"),
			MaxInterval:               v.GetInt("monitoring.max_interval"),
			AcquireMaxWaitSeconds:     v.GetInt("monitoring.acquire_max_wait_seconds"),
			DuplicateThresholdMinutes: v.GetInt("monitoring.duplicate_threshold_minutes"),
		},
		Database: DatabaseConfig{
			Path:               v.GetString("database.path"),
			AutoBackup:         v.GetBool("database.auto_backup"),
			BackupIntervalDays: v.GetInt("database.backup_interval_days"),
		},
		Apps: AppsConfig{
			NameMapping: mapping,
			IgnoredApps: v.GetStringSlice("apps.ignored_apps"),
		},
		Display: DisplayConfig{
			DefaultRecentLimit: v.GetInt("display.default_recent_limit"),
			TopN:               v.GetInt("display.top_n"),
		},
		Export: ExportConfig{
			DefaultFilename:   v.GetString("export.default_filename"),
			IncludeStatistics: v.GetBool("export.include_statistics"),
		},
	}

	return cfg, nil
}

// Interval returns the poll interval clamped to the configured bounds.
// Absent or nonsense bounds fall back to [1, 60] seconds.
func (c *Config) Interval() time.Duration {
	lo := c.Monitoring.MinInterval
	if lo < 1 {
		lo = 1
	}
	hi := c.Monitoring.MaxInterval
	if hi < 1 {
		hi = 60
	}
	if hi < lo {
		hi = lo
	}

	secs := c.Monitoring.DefaultInterval
	if secs < lo {
		secs = lo
	}
	if secs > hi {
		secs = hi
	}
	return time.Duration(secs) * time.Second
}

// AcquireMaxWait returns the metadata settle bound as a duration.
func (c *Config) AcquireMaxWait() time.Duration {
	secs := c.Monitoring.AcquireMaxWaitSeconds
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// DedupWindow returns the duplicate suppression window as a duration.
func (c *Config) DedupWindow() time.Duration {
	mins := c.Monitoring.DuplicateThresholdMinutes
	if mins < 1 {
		mins = 1
	}
	return time.Duration(mins) * time.Minute
}

// BackupInterval returns the backup cadence; zero means disabled.
func (c *Config) BackupInterval() time.Duration {
	if !c.Database.AutoBackup || c.Database.BackupIntervalDays <= 0 {
		return 0
	}
	return time.Duration(c.Database.BackupIntervalDays) * 24 * time.Hour
}

// AppName resolves an app model ID to a display name, falling back to the
// raw ID when no mapping exists.
func (c *Config) AppName(appID string) string {
	if name, ok := c.Apps.NameMapping[appID]; ok {
		return name
	}
	for id, name := range c.Apps.NameMapping {
		if strings.EqualFold(id, appID) {
			return name
		}
	}
	return appID
}

// AppIgnored reports whether playback from appID should be discarded.
func (c *Config) AppIgnored(appID string) bool {
	for _, ignored := range c.Apps.IgnoredApps {
		if strings.EqualFold(ignored, appID) {
			return true
		}
	}
	return false
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "mediatrail")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}
