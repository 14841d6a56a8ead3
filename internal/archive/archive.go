// Package archive moves the state directory aside so the application starts
// from a clean slate without losing the old history.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveState moves the state directory to a timestamped sibling under
// archive/ and returns the new location.
func ArchiveState(stateDir string) (string, error) {
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		return "", fmt.Errorf("state directory does not exist: %s", stateDir)
	}

	parentDir := filepath.Dir(stateDir)
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("polyglot-%s", timestamp))

	// Add microseconds on collision
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("polyglot-%s", timestamp))
	}

	if err := os.Rename(stateDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive state directory: %w", err)
	}

	return archivePath, nil
}
