package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempModel(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("GGUF"), 0644); err != nil {
		t.Fatalf("Failed to create model file: %v", err)
	}
	return path
}

func TestValidateGGUFPath(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantKind LoadFailureKind
		wantErr  bool
	}{
		{
			name:    "valid quantized file",
			path:    func(t *testing.T) string { return writeTempModel(t, "seed-x-q4_k_m.gguf") },
			wantErr: false,
		},
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.gguf") },
			wantKind: LoadFileNotFound,
			wantErr:  true,
		},
		{
			name:     "wrong extension",
			path:     func(t *testing.T) string { return writeTempModel(t, "model.safetensors") },
			wantKind: LoadUnsupportedFormat,
			wantErr:  true,
		},
		{
			name:     "bf16 export rejected",
			path:     func(t *testing.T) string { return writeTempModel(t, "seed-x-BF16.gguf") },
			wantKind: LoadUnsupportedFormat,
			wantErr:  true,
		},
		{
			name:     "directory rejected",
			path:     func(t *testing.T) string { return t.TempDir() },
			wantKind: LoadUnsupportedFormat,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGGUFPath(tt.path(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateGGUFPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !IsModelLoadError(err, tt.wantKind) {
				t.Errorf("validateGGUFPath() error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestGGUFHandlerGenerate(t *testing.T) {
	var gotReq completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/completion" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(completionResponse{Content: " Bonjour le monde "})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	handler := NewGGUFHandler(config)

	modelPath := writeTempModel(t, "seed-x-q4_k_m.gguf")
	if err := handler.Load(context.Background(), modelPath); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer handler.Unload()

	params := DefaultParams()
	got, err := handler.Generate(context.Background(), "prompt", params)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Bonjour le monde" {
		t.Errorf("Generate() = %q, want %q", got, "Bonjour le monde")
	}

	// The native endpoint must receive the full parameter set.
	if gotReq.TopK != params.TopK {
		t.Errorf("request top_k = %d, want %d", gotReq.TopK, params.TopK)
	}
	if gotReq.RepeatPenalty != params.RepeatPenalty {
		t.Errorf("request repeat_penalty = %v, want %v", gotReq.RepeatPenalty, params.RepeatPenalty)
	}
	if gotReq.NPredict != params.MaxTokens {
		t.Errorf("request n_predict = %d, want %d", gotReq.NPredict, params.MaxTokens)
	}
	if len(gotReq.Stop) != 2 {
		t.Errorf("request stop = %v, want two stop sequences", gotReq.Stop)
	}
}

func TestGGUFHandlerGenerateErrors(t *testing.T) {
	handler := NewGGUFHandler(DefaultConfig())

	if _, err := handler.Generate(context.Background(), "prompt", DefaultParams()); err == nil {
		t.Error("Generate() without a loaded model should fail")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	handler = NewGGUFHandler(config)
	if err := handler.Load(context.Background(), writeTempModel(t, "m.gguf")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err := handler.Generate(context.Background(), "prompt", DefaultParams())
	if err == nil {
		t.Fatal("Generate() against failing server should fail")
	}
	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Errorf("Generate() error = %v, want InferenceError", err)
	} else if infErr.Backend != KindGGUF {
		t.Errorf("InferenceError backend = %v, want %v", infErr.Backend, KindGGUF)
	}
}

func TestGGUFHandlerUnloadIdempotent(t *testing.T) {
	handler := NewGGUFHandler(DefaultConfig())
	if err := handler.Unload(); err != nil {
		t.Errorf("Unload() on unloaded handler error = %v", err)
	}
	if err := handler.Unload(); err != nil {
		t.Errorf("second Unload() error = %v", err)
	}
	if info := handler.Info(); info.Loaded {
		t.Error("Info().Loaded = true after Unload()")
	}
}
