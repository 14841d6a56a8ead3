// Package testutil holds helpers shared by tests across packages: fixture
// model files and a scriptable engine handler.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestGGUFModel creates a dummy quantized model file and returns its path.
func CreateTestGGUFModel(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "seed-x-test.Q4_K_M.gguf")
	CreateTestFile(t, path, []byte("GGUF"))
	return path
}

// CreateTestWeightsDir creates a dummy full-precision model directory and
// returns its path.
func CreateTestWeightsDir(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "seed-x-test")
	CreateTestFile(t, filepath.Join(path, "config.json"), []byte("{}"))
	CreateTestFile(t, filepath.Join(path, "tokenizer.json"), []byte("{}"))
	return path
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
