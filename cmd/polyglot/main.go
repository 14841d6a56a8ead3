package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/polyglot/internal/archive"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Handle --archive flag
	if flags.Archive {
		stateDir, err := cli.StateDir()
		if err != nil {
			return err
		}
		archivePath, err := archive.ArchiveState(stateDir)
		if err != nil {
			return fmt.Errorf("failed to archive state: %w", err)
		}
		fmt.Printf("State archived to %s\n", archivePath)
		return nil
	}

	// Settings come from the config file and environment, overridden by any
	// flags set on this run.
	settings := cli.LoadSettings()

	proc := processor.NewProcessor(flags, settings)
	ctx := context.Background()

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListLocalModels()
	}

	// Handle --download flag
	if flags.Download != "" {
		return proc.DownloadModel(ctx, flags.Download)
	}

	// Handle batch processing
	if flags.BatchFile != "" {
		return proc.ProcessBatch(ctx)
	}

	// Handle single text translation
	if len(args) > 0 {
		return proc.ProcessSingleText(ctx, args[0])
	}

	// No input provided - launch GUI mode by default
	return proc.RunGUIMode()
}
