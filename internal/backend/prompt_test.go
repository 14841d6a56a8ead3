package backend

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		sourceLang string
		targetLang string
		explain    bool
		want       string
		wantErr    bool
	}{
		{
			name:       "plain translation",
			text:       "Hello, world!",
			sourceLang: "English",
			targetLang: "French",
			want:       "Translate the following English text into French:\nHello, world! <fr>",
		},
		{
			name:       "with explanation",
			text:       "Hello",
			sourceLang: "English",
			targetLang: "German",
			explain:    true,
			want:       "Translate the following English text into German and explain it in detail:\nHello <de>",
		},
		{
			name:       "unsupported target",
			text:       "Hello",
			sourceLang: "English",
			targetLang: "Klingon",
			wantErr:    true,
		},
		{
			name:       "unsupported source",
			text:       "Hello",
			sourceLang: "Klingon",
			targetLang: "French",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPrompt(tt.text, tt.sourceLang, tt.targetLang, tt.explain)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildPrompt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("BuildPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCompletionPrompt(t *testing.T) {
	got, err := BuildCompletionPrompt("Good morning", "English", "Japanese", false)
	if err != nil {
		t.Fatalf("BuildCompletionPrompt() error = %v", err)
	}
	want := "Translate from English to Japanese:\nGood morning\n\nTranslation in Japanese <ja>:"
	if got != want {
		t.Errorf("BuildCompletionPrompt() = %q, want %q", got, want)
	}

	// The explanation variant falls back to the instruction form.
	got, err = BuildCompletionPrompt("Good morning", "English", "Japanese", true)
	if err != nil {
		t.Fatalf("BuildCompletionPrompt() error = %v", err)
	}
	if !strings.Contains(got, "explain it in detail") {
		t.Errorf("explanation prompt missing instruction: %q", got)
	}
}

func TestLanguageLookups(t *testing.T) {
	names := LanguageNames()
	if len(names) != 28 {
		t.Errorf("LanguageNames() returned %d languages, want 28", len(names))
	}
	if !sortedStrings(names) {
		t.Error("LanguageNames() not sorted")
	}

	code, ok := LanguageCode("Norwegian Bokmål")
	if !ok || code != "nb" {
		t.Errorf("LanguageCode(Norwegian Bokmål) = %q, %v", code, ok)
	}

	name, ok := LanguageName("zh")
	if !ok || name != "Chinese" {
		t.Errorf("LanguageName(zh) = %q, %v", name, ok)
	}

	if _, ok := LanguageCode("Elvish"); ok {
		t.Error("LanguageCode(Elvish) should not resolve")
	}
	if _, ok := LanguageName("xx"); ok {
		t.Error("LanguageName(xx) should not resolve")
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
