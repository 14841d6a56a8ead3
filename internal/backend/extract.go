package backend

import (
	"regexp"
	"strings"
)

var (
	langMarkerRe = regexp.MustCompile(`<[a-z]{2}>`)
	eosMarkerRe  = regexp.MustCompile(`</?s>`)
)

// ExtractTranslation pulls the translated text out of raw model output. The
// full-precision runtime tends to echo the prompt and emit language markers
// around the answer, so the extraction works in stages: text following the
// target marker, then any marker-tagged line, then a "Translation in" label,
// and finally the cleaned raw output.
func ExtractTranslation(raw, targetCode string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	marker := "<" + targetCode + ">"

	// Text after the last target-language marker, up to the next marker. The
	// marker may be echoed from the prompt scaffold with its trailing colon.
	if idx := strings.LastIndex(text, marker); idx >= 0 {
		after := text[idx+len(marker):]
		if loc := langMarkerRe.FindStringIndex(after); loc != nil {
			after = after[:loc[0]]
		}
		after = strings.TrimPrefix(strings.TrimSpace(after), ":")
		if cleaned := cleanOutput(after); cleaned != "" {
			return cleaned
		}
	}

	// A line carrying any language marker usually holds the answer.
	for _, line := range strings.Split(text, "\n") {
		if langMarkerRe.MatchString(line) {
			if cleaned := cleanOutput(line); cleaned != "" {
				return cleaned
			}
		}
	}

	// "Translation in French: ..." style label.
	if idx := strings.Index(text, "Translation in"); idx >= 0 {
		rest := text[idx:]
		if colon := strings.IndexAny(rest, ":\n"); colon >= 0 {
			if cleaned := cleanOutput(rest[colon+1:]); cleaned != "" {
				return cleaned
			}
		}
	}

	return cleanOutput(text)
}

// cleanOutput strips language and end-of-sequence markers and trims space.
func cleanOutput(s string) string {
	s = langMarkerRe.ReplaceAllString(s, "")
	s = eosMarkerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
