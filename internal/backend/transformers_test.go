package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempWeightsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create config.json: %v", err)
	}
	return dir
}

func TestValidateWeightsDir(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantKind LoadFailureKind
		wantErr  bool
	}{
		{
			name:    "valid weights directory",
			path:    func(t *testing.T) string { return writeTempWeightsDir(t) },
			wantErr: false,
		},
		{
			name:     "gguf file rejected",
			path:     func(t *testing.T) string { return writeTempModel(t, "model.gguf") },
			wantKind: LoadUnsupportedFormat,
			wantErr:  true,
		},
		{
			name:     "missing directory",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantKind: LoadFileNotFound,
			wantErr:  true,
		},
		{
			name:     "directory without config.json",
			path:     func(t *testing.T) string { return t.TempDir() },
			wantKind: LoadUnsupportedFormat,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWeightsDir(tt.path(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateWeightsDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !IsModelLoadError(err, tt.wantKind) {
				t.Errorf("validateWeightsDir() error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestTransformersHandlerGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			http.NotFound(w, r)
			return
		}
		resp := map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"model":   "seed-x",
			"choices": []map[string]interface{}{{"text": "<fr>Bonjour</s>", "index": 0}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	handler := NewTransformersHandler(config)

	if err := handler.Load(context.Background(), writeTempWeightsDir(t)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer handler.Unload()

	got, err := handler.Generate(context.Background(), "prompt", DefaultParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// The handler returns raw output; marker extraction happens downstream.
	if got != "<fr>Bonjour</s>" {
		t.Errorf("Generate() = %q", got)
	}

	if ExtractTranslation(got, "fr") != "Bonjour" {
		t.Errorf("ExtractTranslation() = %q, want %q", ExtractTranslation(got, "fr"), "Bonjour")
	}
}

func TestTransformersHandlerInfo(t *testing.T) {
	handler := NewTransformersHandler(DefaultConfig())

	info := handler.Info()
	if info.Loaded {
		t.Error("Info().Loaded = true before Load()")
	}
	if info.Backend != KindTransformers {
		t.Errorf("Info().Backend = %v, want %v", info.Backend, KindTransformers)
	}

	if _, err := handler.Generate(context.Background(), "prompt", DefaultParams()); err == nil {
		t.Error("Generate() without a loaded model should fail")
	}
}
