package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/skitter/internal/config"
)

// defaultConfigFile is where `skitter init` writes by default.
const defaultConfigFile = "skitter.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample skitter configuration file",
		Long: `Init writes a configuration file with every setting at its default value.
The format follows the file extension: .json writes JSON, anything else YAML.

Examples:
  # Create skitter.yaml in the current directory
  skitter init

  # Write the per-user configuration
  skitter init -o ~/.config/skitter/config.yaml

  # Force overwrite an existing file
  skitter init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", defaultConfigFile, "Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := config.NewLoader().SaveToFile(config.SampleConfig(), outputPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nSet SKITTER_ROOT_URL or edit root_url, then run:")
	fmt.Fprintf(out, "  skitter crawl --config %s\n", outputPath)

	return nil
}
