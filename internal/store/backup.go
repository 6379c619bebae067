package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupKeepCount = 10

// MaybeBackup copies the database file into a backups directory next to it
// when the newest existing backup is older than interval. Returns the path of
// the backup written, or "" when none was needed. Old backups beyond a fixed
// retention count are pruned.
func (s *Store) MaybeBackup(interval time.Duration) (string, error) {
	if s.path == "" || strings.Contains(s.path, ":memory:") {
		return "", nil
	}

	backupDir := filepath.Join(filepath.Dir(s.path), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	latest, err := newestBackup(backupDir)
	if err != nil {
		return "", err
	}
	if !latest.IsZero() && time.Since(latest) < interval {
		return "", nil
	}

	// Fold the WAL into the main file so the copy is self-contained.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("failed to checkpoint before backup: %w", err)
	}

	name := fmt.Sprintf("media_history_%s.db", time.Now().Format("20060102_150405"))
	dest := filepath.Join(backupDir, name)
	if err := copyFile(s.path, dest); err != nil {
		return "", err
	}

	if err := pruneBackups(backupDir, backupKeepCount); err != nil {
		return dest, err
	}

	return dest, nil
}

// newestBackup returns the mod time of the most recent backup file, or the
// zero time when none exist.
func newestBackup(dir string) (time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var newest time.Time
	for _, entry := range entries {
		if !isBackupFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}

// pruneBackups removes the oldest backup files beyond keep.
func pruneBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	type backup struct {
		path string
		mod  time.Time
	}
	var backups []backup
	for _, entry := range entries {
		if !isBackupFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, entry.Name()), mod: info.ModTime()})
	}

	if len(backups) <= keep {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].mod.After(backups[j].mod) })
	for _, old := range backups[keep:] {
		if err := os.Remove(old.path); err != nil {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
	}
	return nil
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, "media_history_") && strings.HasSuffix(name, ".db")
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return out.Close()
}
