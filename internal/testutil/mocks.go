package testutil

import (
	"context"
	"fmt"

	"codeberg.org/snonux/polyglot/internal/backend"
)

// MockHandler is a scriptable backend.Handler for tests that need a manager
// without an engine process.
type MockHandler struct {
	Backend backend.Kind
	// Output is returned from Generate; defaults to a marker-tagged French
	// translation when empty.
	Output  string
	LoadErr error
	GenErr  error

	Loaded  bool
	Path    string
	Calls   []string
	Prompts []string
}

// NewMockHandler creates a GGUF-flavored mock handler.
func NewMockHandler() *MockHandler {
	return &MockHandler{Backend: backend.KindGGUF}
}

func (m *MockHandler) Load(ctx context.Context, path string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("Load %s", path))
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.Loaded = true
	m.Path = path
	return nil
}

func (m *MockHandler) Generate(ctx context.Context, prompt string, params backend.Params) (string, error) {
	m.Calls = append(m.Calls, "Generate")
	m.Prompts = append(m.Prompts, prompt)
	if m.GenErr != nil {
		return "", m.GenErr
	}
	if m.Output != "" {
		return m.Output, nil
	}
	return "<fr>Bonjour", nil
}

func (m *MockHandler) Unload() error {
	m.Calls = append(m.Calls, "Unload")
	m.Loaded = false
	m.Path = ""
	return nil
}

func (m *MockHandler) Info() backend.ModelInfo {
	return backend.ModelInfo{Loaded: m.Loaded, Backend: m.Backend, Path: m.Path}
}

func (m *MockHandler) Kind() backend.Kind { return m.Backend }
