package history

import (
	"sync"
	"time"
)

// DefaultLimit is how many entries the session log keeps.
const DefaultLimit = 50

// Entry is one completed translation.
type Entry struct {
	ID          string    `json:"id"`
	SourceText  string    `json:"source_text"`
	Translation string    `json:"translation"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Backend     string    `json:"backend"`
	ModelPath   string    `json:"model_path,omitempty"`
	Explain     bool      `json:"explain,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Log is a bounded, newest-first translation log. Safe for concurrent use;
// workers append while the GUI reads.
type Log struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

// NewLog creates a log keeping at most limit entries. A non-positive limit
// falls back to DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Add prepends an entry, dropping the oldest when the log is full.
func (l *Log) Add(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// At returns the entry at position i (0 = newest).
func (l *Log) At(i int) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Len returns the number of entries in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Replace swaps the log contents for entries (newest first), trimming to the
// limit. Used when restoring from the store or an import.
func (l *Log) Replace(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(entries) > l.limit {
		entries = entries[:l.limit]
	}
	l.entries = make([]Entry, len(entries))
	copy(l.entries, entries)
}
