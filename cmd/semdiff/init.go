package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/semdiff/semdiff/internal/config"
)

//go:embed templates/semdiff.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Init writes a documented semdiff.yaml configuration file to the XDG
config directory, where serve and compare pick it up automatically.

The generated file includes:
- Every available option with its default value
- Documentation comments for each section
- A reminder that the API key lives in the environment, not the file

Examples:
  # Create the config in the XDG config directory
  semdiff init

  # Create the config at a specific path
  semdiff init -o ./semdiff.yaml

  # Force overwrite an existing file
  semdiff init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", defaultInitPath(),
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// defaultInitPath is where init writes unless --output overrides it.
func defaultInitPath() string {
	return filepath.Join(config.XDGConfigDir(), config.DefaultConfigFile)
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

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/semdiff.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nThe model API key is not stored in this file. Export it instead:")
	fmt.Printf("  export %s=<your key>\n", config.DefaultAPIKeyEnv)

	return nil
}
