package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/snonux/polyglot/internal/backend"
)

// LocalModel is one model found on disk.
type LocalModel struct {
	Name    string
	Path    string
	Backend backend.Kind
	// SizeBytes is the file size for GGUF models, the summed directory
	// size for weight directories.
	SizeBytes int64
}

// Discover scans modelDir for loadable models. GGUF files match by
// extension; a directory counts as a weight checkout when it carries a
// config.json. Results come back sorted by name.
func Discover(modelDir string) ([]LocalModel, error) {
	entries, err := os.ReadDir(modelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	var found []LocalModel
	for _, entry := range entries {
		path := filepath.Join(modelDir, entry.Name())

		if entry.IsDir() {
			if _, err := os.Stat(filepath.Join(path, "config.json")); err != nil {
				continue
			}
			found = append(found, LocalModel{
				Name:      entry.Name(),
				Path:      path,
				Backend:   backend.KindTransformers,
				SizeBytes: dirSize(path),
			})
			continue
		}

		if !strings.EqualFold(filepath.Ext(entry.Name()), ".gguf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, LocalModel{
			Name:      entry.Name(),
			Path:      path,
			Backend:   backend.KindGGUF,
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

func dirSize(dir string) int64 {
	var total int64
	filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// FormatSize renders a byte count the way the download catalog does.
func FormatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// List prints the discovered models to w, grouped by backend.
func List(w io.Writer, modelDir string) error {
	found, err := Discover(modelDir)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintf(w, "No models found in %s\n", modelDir)
		return nil
	}

	fmt.Fprintln(w, "GGUF models:")
	printGroup(w, found, backend.KindGGUF)
	fmt.Fprintln(w, "\nFull-precision models:")
	printGroup(w, found, backend.KindTransformers)
	return nil
}

func printGroup(w io.Writer, found []LocalModel, kind backend.Kind) {
	any := false
	for _, model := range found {
		if model.Backend != kind {
			continue
		}
		fmt.Fprintf(w, "  %s (%s)\n", model.Name, FormatSize(model.SizeBytes))
		any = true
	}
	if !any {
		fmt.Fprintln(w, "  none")
	}
}
