package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/cragscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/cragscan.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new cragscan configuration file",
		Long: `Initialize creates a new .cragscan configuration file in the current directory.

The generated file includes:
- The default crawl root
- Concurrency, rate, and timeout settings with their defaults
- Output and SQLite options
- Commented login overrides

Examples:
  # Create .cragscan in current directory
  cragscan init

  # Create config file at a specific path
  cragscan init -o myconfig.yaml

  # Force overwrite existing file
  cragscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
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

	content, err := configTemplate.ReadFile("templates/cragscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - The root area to crawl")
	fmt.Fprintln(out, "  - Concurrency and request rate")
	fmt.Fprintln(out, "  - Output directory and SQLite storage")
	fmt.Fprintf(out, "\nCredentials go in the environment (%s, %s) or a .env file.\n",
		config.EnvEmail, config.EnvPassword)

	return nil
}
