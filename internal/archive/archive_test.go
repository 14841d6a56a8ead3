package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveState(t *testing.T) {
	tmpDir := t.TempDir()

	// Create state directory with some content
	stateDir := filepath.Join(tmpDir, "polyglot")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatalf("Failed to create state directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "history.db"), []byte("db"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	archivePath, err := ArchiveState(stateDir)
	if err != nil {
		t.Fatalf("ArchiveState failed: %v", err)
	}

	// The original directory is gone
	if _, err := os.Stat(stateDir); !os.IsNotExist(err) {
		t.Error("State directory still exists after archiving")
	}

	// The archive carries the content
	if !strings.HasPrefix(filepath.Base(archivePath), "polyglot-") {
		t.Errorf("Archive name %q missing prefix", filepath.Base(archivePath))
	}
	if _, err := os.Stat(filepath.Join(archivePath, "history.db")); err != nil {
		t.Errorf("Archived file missing: %v", err)
	}
}

func TestArchiveState_NonExistentDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := ArchiveState(filepath.Join(tmpDir, "nonexistent"))
	if err == nil {
		t.Error("Expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveState_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()

	for i := 0; i < 2; i++ {
		stateDir := filepath.Join(tmpDir, "polyglot")
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			t.Fatalf("Failed to create state directory: %v", err)
		}
		if i == 1 {
			// Small delay to ensure different timestamps
			time.Sleep(10 * time.Millisecond)
		}
		if _, err := ArchiveState(stateDir); err != nil {
			t.Fatalf("ArchiveState failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}
