package backend

import (
	"fmt"
	"sort"
	"strings"
)

// languages maps display names to the two-letter codes the Seed-X models were
// trained on.
var languages = map[string]string{
	"Arabic":           "ar",
	"Czech":            "cs",
	"Danish":           "da",
	"German":           "de",
	"English":          "en",
	"Spanish":          "es",
	"Finnish":          "fi",
	"French":           "fr",
	"Croatian":         "hr",
	"Hungarian":        "hu",
	"Indonesian":       "id",
	"Italian":          "it",
	"Japanese":         "ja",
	"Korean":           "ko",
	"Malay":            "ms",
	"Norwegian Bokmål": "nb",
	"Dutch":            "nl",
	"Norwegian":        "no",
	"Polish":           "pl",
	"Portuguese":       "pt",
	"Romanian":         "ro",
	"Russian":          "ru",
	"Swedish":          "sv",
	"Thai":             "th",
	"Turkish":          "tr",
	"Ukrainian":        "uk",
	"Vietnamese":       "vi",
	"Chinese":          "zh",
}

// LanguageNames returns all supported language display names, sorted.
func LanguageNames() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LanguageCode returns the two-letter code for a display name.
func LanguageCode(name string) (string, bool) {
	code, ok := languages[name]
	return code, ok
}

// LanguageName returns the display name for a two-letter code.
func LanguageName(code string) (string, bool) {
	for name, c := range languages {
		if c == strings.ToLower(code) {
			return name, true
		}
	}
	return "", false
}

// IsSupportedLanguage reports whether name is a known language display name.
func IsSupportedLanguage(name string) bool {
	_, ok := languages[name]
	return ok
}

// BuildPrompt formats the instruction the Seed-X models expect: the request in
// plain language followed by the target language marker. With explain set, the
// model is asked for a chain-of-thought explanation alongside the translation.
func BuildPrompt(text, sourceLang, targetLang string, explain bool) (string, error) {
	targetCode, ok := languages[targetLang]
	if !ok {
		return "", fmt.Errorf("unsupported target language: %q", targetLang)
	}
	if !IsSupportedLanguage(sourceLang) {
		return "", fmt.Errorf("unsupported source language: %q", sourceLang)
	}

	if explain {
		return fmt.Sprintf("Translate the following %s text into %s and explain it in detail:\n%s <%s>",
			sourceLang, targetLang, text, targetCode), nil
	}
	return fmt.Sprintf("Translate the following %s text into %s:\n%s <%s>",
		sourceLang, targetLang, text, targetCode), nil
}

// BuildCompletionPrompt is the variant for the full-precision runtime, which
// works better with an explicit completion scaffold: the answer slot is
// labeled so the translation can be recovered from the echoed output.
func BuildCompletionPrompt(text, sourceLang, targetLang string, explain bool) (string, error) {
	if explain {
		return BuildPrompt(text, sourceLang, targetLang, true)
	}

	targetCode, ok := languages[targetLang]
	if !ok {
		return "", fmt.Errorf("unsupported target language: %q", targetLang)
	}
	if !IsSupportedLanguage(sourceLang) {
		return "", fmt.Errorf("unsupported source language: %q", sourceLang)
	}

	return fmt.Sprintf("Translate from %s to %s:\n%s\n\nTranslation in %s <%s>:",
		sourceLang, targetLang, text, targetLang, targetCode), nil
}
