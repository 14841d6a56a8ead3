package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/polyglot/internal/backend"
	"codeberg.org/snonux/polyglot/internal/testutil"
)

func TestModelByID(t *testing.T) {
	model, ok := ModelByID("seed-x-ppo-7b-q4")
	if !ok {
		t.Fatal("catalog missing seed-x-ppo-7b-q4")
	}
	if model.Backend != backend.KindGGUF {
		t.Errorf("Backend = %v, want %v", model.Backend, backend.KindGGUF)
	}
	if model.FileName == "" {
		t.Error("GGUF preset must have a file name")
	}

	if _, ok := ModelByID("nonexistent"); ok {
		t.Error("ModelByID(nonexistent) should not resolve")
	}
}

func TestCatalogCoversBothBackends(t *testing.T) {
	models := Models("")

	var gguf, transformers int
	for _, model := range models {
		switch model.Backend {
		case backend.KindGGUF:
			gguf++
		case backend.KindTransformers:
			transformers++
			for _, want := range []string{"config.json", "model.safetensors", "tokenizer.json"} {
				found := false
				for _, file := range model.Files {
					if file == want {
						found = true
					}
				}
				if !found {
					t.Errorf("weight preset %s missing %s", model.ID, want)
				}
			}
		}
	}
	if gguf == 0 || transformers == 0 {
		t.Errorf("catalog has %d GGUF and %d Transformers presets", gguf, transformers)
	}
}

func TestModelsMarksDownloaded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Seed-X-PPO-7B.Q4_K_M.gguf"), []byte("GGUF"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, model := range Models(dir) {
		switch model.ID {
		case "seed-x-ppo-7b-q4":
			if !model.Downloaded {
				t.Error("present GGUF preset not marked downloaded")
			}
			if model.LocalPath == "" {
				t.Error("downloaded preset missing local path")
			}
		default:
			if model.Downloaded {
				t.Errorf("preset %s wrongly marked downloaded", model.ID)
			}
		}
	}
}

func TestDownloadSingleFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model-bytes"))
	}))
	defer server.Close()

	d := NewDownloader()
	d.BaseURL = server.URL

	model, _ := ModelByID("seed-x-ppo-7b-q4")
	dir := t.TempDir()

	var lastReceived int64
	path, err := d.Download(context.Background(), model, dir, func(file string, received, total int64) {
		lastReceived = received
	})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != "model-bytes" {
		t.Errorf("downloaded content = %q", data)
	}
	if lastReceived != int64(len("model-bytes")) {
		t.Errorf("progress received = %d", lastReceived)
	}

	// No partial file left behind.
	testutil.AssertFileNotExists(t, path+".partial")
}

func TestDownloadWeightDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content-of-" + filepath.Base(r.URL.Path)))
	}))
	defer server.Close()

	d := NewDownloader()
	d.BaseURL = server.URL

	model, _ := ModelByID("seed-x-ppo-7b")
	dir := t.TempDir()

	path, err := d.Download(context.Background(), model, dir, nil)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	for _, file := range requiredWeightFiles {
		if _, err := os.Stat(filepath.Join(path, file)); err != nil {
			t.Errorf("missing weight file %s: %v", file, err)
		}
	}

	// The completed checkout is now marked downloaded.
	models := Models(dir)
	for _, m := range models {
		if m.ID == model.ID && !m.Downloaded {
			t.Error("completed weight preset not marked downloaded")
		}
	}
}

func TestDownloadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDownloader()
	d.BaseURL = server.URL

	model, _ := ModelByID("seed-x-ppo-7b-q4")
	dir := t.TempDir()

	_, err := d.Download(context.Background(), model, dir, nil)
	if err == nil {
		t.Fatal("Download() from failing server should fail")
	}
	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Errorf("error = %v, want DownloadError", err)
	}

	// Nothing left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed download left %d files behind", len(entries))
	}
}

func TestDownloadSkipsExistingFile(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	d := NewDownloader()
	d.BaseURL = server.URL

	model, _ := ModelByID("seed-x-ppo-7b-q4")
	dir := t.TempDir()
	existing := filepath.Join(dir, model.FileName)
	if err := os.WriteFile(existing, []byte("already-here"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := d.Download(context.Background(), model, dir, nil)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if requests != 0 {
		t.Errorf("server hit %d times for an already-present model", requests)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "already-here" {
		t.Errorf("existing file overwritten: %q", data)
	}
}

func TestDefaultModelDir(t *testing.T) {
	dir, err := DefaultModelDir()
	if err != nil {
		t.Fatalf("DefaultModelDir() error = %v", err)
	}
	if filepath.Base(dir) != "models" {
		t.Errorf("DefaultModelDir() = %q", dir)
	}
}
