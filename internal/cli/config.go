package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings are the persisted preferences. They live in ~/.polyglot.yaml and
// survive restarts; flags and POLYGLOT_* environment variables override them
// for a single run.
type Settings struct {
	Backend      string
	ModelPath    string
	ModelDir     string
	SourceLang   string
	TargetLang   string
	Explain      bool
	MaxTokens    int
	Temperature  float64
	ContextSize  int
	Threads      int
	GPULayers    int
	HistoryLimit int
}

// LoadSettings reads the effective settings from viper after InitConfig and
// flag binding have run.
func LoadSettings() Settings {
	s := Settings{
		Backend:      viper.GetString("backend"),
		ModelPath:    viper.GetString("model.path"),
		ModelDir:     viper.GetString("model.directory"),
		SourceLang:   viper.GetString("languages.source"),
		TargetLang:   viper.GetString("languages.target"),
		Explain:      viper.GetBool("generation.explain"),
		MaxTokens:    viper.GetInt("generation.max_tokens"),
		Temperature:  viper.GetFloat64("generation.temperature"),
		ContextSize:  viper.GetInt("engine.ctx_size"),
		Threads:      viper.GetInt("engine.threads"),
		GPULayers:    viper.GetInt("engine.gpu_layers"),
		HistoryLimit: viper.GetInt("history.limit"),
	}

	if s.Backend == "" {
		s.Backend = "gguf"
	}
	if s.SourceLang == "" {
		s.SourceLang = "English"
	}
	if s.TargetLang == "" {
		s.TargetLang = "Chinese"
	}
	if s.MaxTokens == 0 {
		s.MaxTokens = 512
	}
	if s.HistoryLimit == 0 {
		s.HistoryLimit = 50
	}
	return s
}

// SaveSettings writes the settings back to the config file so the next run
// starts where this one left off.
func SaveSettings(s Settings) error {
	viper.Set("backend", s.Backend)
	viper.Set("model.path", s.ModelPath)
	viper.Set("model.directory", s.ModelDir)
	viper.Set("languages.source", s.SourceLang)
	viper.Set("languages.target", s.TargetLang)
	viper.Set("generation.explain", s.Explain)
	viper.Set("generation.max_tokens", s.MaxTokens)
	viper.Set("generation.temperature", s.Temperature)
	viper.Set("engine.ctx_size", s.ContextSize)
	viper.Set("engine.threads", s.Threads)
	viper.Set("engine.gpu_layers", s.GPULayers)
	viper.Set("history.limit", s.HistoryLimit)

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".polyglot.yaml")
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// StateDir returns the application state directory, creating it if needed.
// History and logs live here.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".local", "state", "polyglot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}
