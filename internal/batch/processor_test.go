package batch

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadBatchFile(t *testing.T) {
	content := `# morning greetings
Good morning

en>de: Good evening
ja>en: おはよう
Ratio is 1>2: unlikely
`
	entries, err := ReadBatchFile(writeBatchFile(t, content))
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	if entries[0].Text != "Good morning" || entries[0].SourceLang != "" {
		t.Errorf("plain entry = %+v", entries[0])
	}
	if entries[1].Text != "Good evening" || entries[1].SourceLang != "en" || entries[1].TargetLang != "de" {
		t.Errorf("prefixed entry = %+v", entries[1])
	}
	if entries[2].SourceLang != "ja" || entries[2].TargetLang != "en" {
		t.Errorf("prefixed entry = %+v", entries[2])
	}
	// '>' and ':' without a valid code pair stay ordinary text.
	if entries[3].Text != "Ratio is 1>2: unlikely" || entries[3].SourceLang != "" {
		t.Errorf("ambiguous entry = %+v", entries[3])
	}
}

func TestReadBatchFileCRLF(t *testing.T) {
	entries, err := ReadBatchFile(writeBatchFile(t, "One\r\nTwo\r\n"))
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "One" || entries[1].Text != "Two" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestReadBatchFileErrors(t *testing.T) {
	if _, err := ReadBatchFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("ReadBatchFile() of missing file should fail")
	}

	if _, err := ReadBatchFile(writeBatchFile(t, "en>fr:\n")); err == nil {
		t.Error("language pair without text should fail")
	}
}

func TestReadBatchFileEmpty(t *testing.T) {
	entries, err := ReadBatchFile(writeBatchFile(t, "\n# only comments\n\n"))
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty file", len(entries))
	}
}
