package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/afero"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]+`)

// SanitizeTarget replaces characters unsafe for filesystem paths
// Allows alphanumeric, dots, and hyphens. Replaces everything else with underscore.
func SanitizeTarget(target string) string {
	return unsafeChars.ReplaceAllString(target, "_")
}

// ReportPath generates a consistent file path for a saved report
// Format: {baseDir}/{target}_{YYYYMMDD}_{HHMMSS}.{ext}
func ReportPath(baseDir, target string, startedAt time.Time, ext string) string {
	sanitized := SanitizeTarget(target)
	timestamp := startedAt.Format("20060102_150405")
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.%s", sanitized, timestamp, ext))
}

// WriteReportFile writes data to path, creating parent directories.
func WriteReportFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := EnsureDir(fs, dir); err != nil {
			return err
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't exist
func EnsureDir(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}
