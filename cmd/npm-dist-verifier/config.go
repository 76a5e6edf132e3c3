package main

import (
	"fmt"

	"github.com/open-edge-platform/npm-dist-verifier/internal/config"
	"github.com/spf13/cobra"
)

// createConfigCommand creates the config subcommand
func createConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage global configuration for the npm distribution verifier.

Available commands:
  init    Initialize a new configuration file with default values`,
	}

	// Add only the init subcommand
	configCmd.AddCommand(createConfigInitCommand())

	return configCmd
}

// createConfigInitCommand creates the config init subcommand
func createConfigInitCommand() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init [config-file]",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new configuration file with default values.

If no path is specified, the config will be created in the current directory as npm-dist-verifier.yml

Examples:
  # Create config in current directory
  npm-dist-verifier config init

  # Create config at specific location
  npm-dist-verifier config init /etc/npm-dist-verifier/config.yml

  # Create config in user's home directory
  npm-dist-verifier config init ~/.npm-dist-verifier/config.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeConfigInit,
	}

	return initCmd
}

// executeConfigInit handles the config init command logic
func executeConfigInit(cmd *cobra.Command, args []string) error {
	configPath := "npm-dist-verifier.yml"
	if len(args) > 0 {
		configPath = args[0]
	}

	// Create default config
	defaultConfig := config.DefaultGlobalConfig()

	// Save to file with descriptive comments
	if err := defaultConfig.SaveGlobalConfigWithComments(configPath); err != nil {
		return fmt.Errorf("failed to save config file: %v", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Printf("\nDefault configuration settings:\n")
	fmt.Printf("  Manifest Path: %s\n", defaultConfig.ManifestPath)
	fmt.Printf("  Packages Directory: %s\n", defaultConfig.PackagesDir)
	fmt.Printf("  Binary Extension: %s\n", defaultConfig.BinaryExtension)
	fmt.Printf("  Registry Retries: %d\n", defaultConfig.Registry.Retries)
	fmt.Printf("  Registry Delay: %ds\n", defaultConfig.Registry.DelaySeconds)
	fmt.Printf("  Log Level: %s\n", defaultConfig.Logging.Level)
	fmt.Printf("  Log File: %s\n", defaultConfig.Logging.File)
	fmt.Printf("\nEdit the configuration file to customize these settings.\n")

	return nil
}
