package history

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// exportFile is the on-disk JSON envelope. The version field allows future
// format changes without breaking old backups.
type exportFile struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

const exportVersion = 1

// Export writes the entries to path as indented JSON, newest first.
func Export(path string, entries []Entry) error {
	file := exportFile{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history export: %w", err)
	}
	return nil
}

// Import reads a history export back. Entries come out in file order, so an
// export followed by an import reproduces the original log.
func Import(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history export: %w", err)
	}

	var file exportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse history export: %w", err)
	}
	if file.Version != exportVersion {
		return nil, fmt.Errorf("unsupported history export version %d", file.Version)
	}

	return file.Entries, nil
}
