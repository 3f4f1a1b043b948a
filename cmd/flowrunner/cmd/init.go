package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/flowrunner/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a flowrunner project in the current directory",
	Long: `Initialize writes a default .flowrunner.yaml configuration file and
creates the logs directory.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}

func runInit(_ *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	configPath := filepath.Join(cwd, ".flowrunner.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration already exists, use --force to overwrite")
	}

	if err := config.WriteDefault(configPath); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(cwd, config.Default().Logs.Dir), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	fmt.Println("Initialized flowrunner project in", cwd)
	fmt.Println("Configuration file: .flowrunner.yaml")
	fmt.Println("Run 'flowrunner doctor' to verify setup")

	return nil
}
