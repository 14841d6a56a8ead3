package cli

import (
	"testing"

	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal/testutil"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "polyglot [text]" {
		t.Errorf("Use = %q", cmd.Use)
	}

	for _, name := range []string{"backend", "model", "from", "to", "explain",
		"batch", "list-models", "download", "archive", "max-tokens", "temperature"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Error("persistent flag --config not registered")
	}
}

func TestFlagParsing(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if err := cmd.ParseFlags([]string{"--to", "French", "--backend", "transformers", "--explain"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if flags.TargetLang != "French" {
		t.Errorf("TargetLang = %q, want French", flags.TargetLang)
	}
	if flags.Backend != "transformers" {
		t.Errorf("Backend = %q, want transformers", flags.Backend)
	}
	if !flags.Explain {
		t.Error("Explain not set")
	}
}

func TestNewFlagsDefaults(t *testing.T) {
	flags := NewFlags()

	if flags.Backend != "gguf" {
		t.Errorf("default Backend = %q, want gguf", flags.Backend)
	}
	if flags.SourceLang != "English" || flags.TargetLang != "Chinese" {
		t.Errorf("default languages = %q -> %q", flags.SourceLang, flags.TargetLang)
	}
	if flags.MaxTokens != 512 || flags.Temperature != 0.1 {
		t.Errorf("default generation = %d tokens, temp %v", flags.MaxTokens, flags.Temperature)
	}
	if flags.ContextSize != 2048 || flags.Threads != 8 || flags.GPULayers != -1 {
		t.Errorf("default engine = ctx %d, threads %d, gpu %d",
			flags.ContextSize, flags.Threads, flags.GPULayers)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	s := LoadSettings()
	if s.Backend != "gguf" {
		t.Errorf("Backend = %q, want gguf", s.Backend)
	}
	if s.SourceLang != "English" || s.TargetLang != "Chinese" {
		t.Errorf("languages = %q -> %q", s.SourceLang, s.TargetLang)
	}
	if s.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", s.MaxTokens)
	}
	if s.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", s.HistoryLimit)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgFile := dir + "/.polyglot.yaml"
	viper.SetConfigFile(cfgFile)

	in := Settings{
		Backend:      "transformers",
		ModelPath:    "/models/seed-x",
		ModelDir:     "/models",
		SourceLang:   "German",
		TargetLang:   "Japanese",
		Explain:      true,
		MaxTokens:    256,
		Temperature:  0.2,
		ContextSize:  4096,
		Threads:      4,
		GPULayers:    0,
		HistoryLimit: 25,
	}
	if err := SaveSettings(in); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	testutil.AssertFileExists(t, cfgFile)
	testutil.AssertFileContains(t, cfgFile, "transformers")

	viper.Reset()
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	out := LoadSettings()
	if out != in {
		t.Errorf("settings round trip changed %+v into %+v", in, out)
	}
}
