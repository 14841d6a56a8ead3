package translation

import (
	"time"

	"codeberg.org/snonux/polyglot/internal/backend"
)

// Request describes one translation to perform.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	// Explain asks the model for a chain-of-thought explanation alongside
	// the translation.
	Explain bool
}

// Result is the outcome of a completed translation.
type Result struct {
	Request     Request
	Translation string
	// Raw is the unprocessed model output, kept for the explanation view.
	Raw       string
	Backend   backend.Kind
	ModelPath string
	Duration  time.Duration
	CreatedAt time.Time
}
