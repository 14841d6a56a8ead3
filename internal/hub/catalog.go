package hub

import (
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/polyglot/internal/backend"
)

const hubBaseURL = "https://huggingface.co"

// requiredWeightFiles are the files a full-precision Seed-X checkout needs
// before the Transformers runtime will accept it.
var requiredWeightFiles = []string{
	"config.json",
	"generation_config.json",
	"model.safetensors",
	"tokenizer.json",
	"tokenizer_config.json",
	"special_tokens_map.json",
	"tokenizer.model",
}

// ModelOption is one downloadable model preset.
type ModelOption struct {
	ID          string
	Name        string
	Backend     backend.Kind
	Repo        string
	// FileName is set for single-file GGUF presets.
	FileName string
	// Files is set for multi-file weight directory presets.
	Files       []string
	SizeLabel   string
	Description string

	Downloaded bool
	LocalPath  string
}

var modelCatalog = []ModelOption{
	{
		ID:          "seed-x-ppo-7b-q4",
		Name:        "Seed-X PPO 7B (Q4_K_M)",
		Backend:     backend.KindGGUF,
		Repo:        "mradermacher/Seed-X-PPO-7B-GGUF",
		FileName:    "Seed-X-PPO-7B.Q4_K_M.gguf",
		SizeLabel:   "~4.5 GB",
		Description: "Quantized, good balance of quality and memory use.",
	},
	{
		ID:          "seed-x-ppo-7b-q8",
		Name:        "Seed-X PPO 7B (Q8_0)",
		Backend:     backend.KindGGUF,
		Repo:        "mradermacher/Seed-X-PPO-7B-GGUF",
		FileName:    "Seed-X-PPO-7B.Q8_0.gguf",
		SizeLabel:   "~8 GB",
		Description: "Near-lossless quantization, needs more memory.",
	},
	{
		ID:          "seed-x-ppo-7b",
		Name:        "Seed-X PPO 7B (full precision)",
		Backend:     backend.KindTransformers,
		Repo:        "ByteDance-Seed/Seed-X-PPO-7B",
		Files:       requiredWeightFiles,
		SizeLabel:   "~15 GB",
		Description: "Full-precision weights for the Transformers runtime.",
	},
}

// Models returns the catalog with downloaded presets marked against the
// given model directory.
func Models(modelDir string) []ModelOption {
	models := make([]ModelOption, len(modelCatalog))
	copy(models, modelCatalog)
	markDownloaded(models, modelDir)
	return models
}

// ModelByID looks up a catalog preset.
func ModelByID(id string) (ModelOption, bool) {
	for _, model := range modelCatalog {
		if model.ID == id {
			return model, true
		}
	}
	return ModelOption{}, false
}

// localPathFor returns where the preset lives under modelDir once downloaded:
// the file itself for GGUF presets, a directory for weight presets.
func localPathFor(m ModelOption, modelDir string) string {
	if m.FileName != "" {
		return filepath.Join(modelDir, m.FileName)
	}
	return filepath.Join(modelDir, m.ID)
}

// fileURL builds the Hugging Face resolve URL for a file in the repo.
func fileURL(repo, file string) string {
	return fmt.Sprintf("%s/%s/resolve/main/%s", hubBaseURL, repo, file)
}

func markDownloaded(models []ModelOption, modelDir string) {
	if modelDir == "" {
		return
	}
	for i := range models {
		path := localPathFor(models[i], modelDir)
		if isComplete(models[i], path) {
			models[i].Downloaded = true
			models[i].LocalPath = path
		}
	}
}

// isComplete reports whether the preset is fully present at path.
func isComplete(m ModelOption, path string) bool {
	if m.FileName != "" {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	}
	for _, file := range m.Files {
		if _, err := os.Stat(filepath.Join(path, file)); err != nil {
			return false
		}
	}
	return len(m.Files) > 0
}

// DefaultModelDir is where downloads land unless configured otherwise.
func DefaultModelDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".polyglot", "models"), nil
}
