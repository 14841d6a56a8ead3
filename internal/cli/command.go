package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polyglot [text]",
		Short: "Local LLM translator",
		Long: `polyglot translates text between 28 languages using a local Seed-X model.

It runs the model through one of two interchangeable engines: a quantized
GGUF engine (llama.cpp) or a full-precision Transformers runtime.

Examples:
  polyglot                                  # Launch interactive GUI (default)
  polyglot "Good morning" --to French       # Translate via CLI
  polyglot --batch texts.txt --to German    # Translate a file line by line
  polyglot --download seed-x-ppo-7b-q4      # Fetch a model from Hugging Face
  polyglot --list-models                    # Show locally installed models`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.polyglot.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Backend, "backend", "b", flags.Backend, "Inference backend (gguf or transformers)")
	cmd.Flags().StringVarP(&flags.ModelPath, "model", "m", "", "Model to load (.gguf file or weight directory)")
	cmd.Flags().StringVar(&flags.ModelDir, "model-dir", "", "Directory holding downloaded models")
	cmd.Flags().StringVar(&flags.SourceLang, "from", flags.SourceLang, "Source language")
	cmd.Flags().StringVar(&flags.TargetLang, "to", flags.TargetLang, "Target language")
	cmd.Flags().BoolVar(&flags.Explain, "explain", false, "Ask the model to explain the translation")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate texts from file (one per line)")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List locally installed models")
	cmd.Flags().StringVar(&flags.Download, "download", "", "Download a model preset by ID")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Archive the state directory and exit")

	// Generation flags
	cmd.Flags().IntVar(&flags.MaxTokens, "max-tokens", flags.MaxTokens, "Maximum tokens to generate")
	cmd.Flags().Float64Var(&flags.Temperature, "temperature", flags.Temperature, "Sampling temperature")

	// Engine flags
	cmd.Flags().IntVar(&flags.ContextSize, "ctx-size", flags.ContextSize, "Engine context window size")
	cmd.Flags().IntVar(&flags.Threads, "threads", flags.Threads, "Engine CPU threads")
	cmd.Flags().IntVar(&flags.GPULayers, "gpu-layers", flags.GPULayers, "Layers to offload to GPU (-1 for all)")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("model.path", cmd.Flags().Lookup("model"))
	viper.BindPFlag("model.directory", cmd.Flags().Lookup("model-dir"))
	viper.BindPFlag("languages.source", cmd.Flags().Lookup("from"))
	viper.BindPFlag("languages.target", cmd.Flags().Lookup("to"))
	viper.BindPFlag("generation.explain", cmd.Flags().Lookup("explain"))
	viper.BindPFlag("generation.max_tokens", cmd.Flags().Lookup("max-tokens"))
	viper.BindPFlag("generation.temperature", cmd.Flags().Lookup("temperature"))
	viper.BindPFlag("engine.ctx_size", cmd.Flags().Lookup("ctx-size"))
	viper.BindPFlag("engine.threads", cmd.Flags().Lookup("threads"))
	viper.BindPFlag("engine.gpu_layers", cmd.Flags().Lookup("gpu-layers"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".polyglot" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".polyglot")
	}

	// Environment variables
	viper.SetEnvPrefix("POLYGLOT")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
