// Package batch reads translation input files for the --batch CLI mode.
package batch

import (
	"fmt"
	"os"
	"strings"
)

// Entry is one line of a batch input file.
type Entry struct {
	Text string
	// SourceLang and TargetLang override the run-wide languages when the
	// line carries a "src>dst:" prefix.
	SourceLang string
	TargetLang string
}

// ReadBatchFile reads texts to translate from a file, one per line.
// Supported formats:
//   - plain text: "Good morning" (uses the run-wide language pair)
//   - with language pair: "en>fr: Good morning" (two-letter codes)
//
// Blank lines and lines starting with '#' are skipped.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []Entry
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// parseLine splits an optional "src>dst:" prefix off the text.
func parseLine(line string) (Entry, error) {
	colon := strings.Index(line, ":")
	arrow := strings.Index(line, ">")
	if colon > 0 && arrow > 0 && arrow < colon {
		pair := line[:colon]
		parts := strings.SplitN(pair, ">", 2)
		src := strings.TrimSpace(parts[0])
		dst := strings.TrimSpace(parts[1])
		text := strings.TrimSpace(line[colon+1:])

		// Only a pair of two-letter codes counts as a prefix; anything else
		// is ordinary text that happens to contain '>' and ':'.
		if len(src) == 2 && len(dst) == 2 && isAlpha(src) && isAlpha(dst) {
			if text == "" {
				return Entry{}, fmt.Errorf("no text after language pair %q", pair)
			}
			return Entry{Text: text, SourceLang: src, TargetLang: dst}, nil
		}
	}

	return Entry{Text: line}, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
