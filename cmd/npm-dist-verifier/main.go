package main

import (
	"fmt"
	"os"

	"github.com/open-edge-platform/npm-dist-verifier/internal/config"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/security"
	"github.com/spf13/cobra"
)

// Command-line flags that can override config file settings
var (
	configFile string = "" // Path to config file
	logLevel   string = "" // Empty means use config file value
)

func main() {
	// Initialize global configuration first
	configFilePath := configFile
	if configFilePath == "" {
		configFilePath = config.FindConfigFile()
	}

	globalConfig, err := config.LoadGlobalConfig(configFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Set global config singleton
	config.SetGlobal(globalConfig)

	// Setup logger with configured level and optional file tee
	_, cleanup, err := logger.InitWithConfig(logger.Config{
		Level:    globalConfig.Logging.Level,
		FilePath: globalConfig.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create and execute root command
	rootCmd := createRootCommand()
	security.AttachRecursive(rootCmd, security.DefaultLimits())

	// Handle log level override after flag parsing
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			// Update both the local config and the global singleton
			globalConfig.Logging.Level = logLevel
			config.SetGlobal(globalConfig) // Update singleton with new log level
			logger.SetLogLevel(logLevel)
		}
	}

	// Log configuration info using global config functions
	log := logger.Logger()
	if configFilePath != "" {
		log.Infof("Using configuration from: %s", configFilePath)
	}
	log.Debugf("Config: manifest=%s, packages_dir=%s, binary_extension=%s, retries=%d, delay=%ds",
		config.ManifestPath(), config.PackagesDir(), config.BinaryExtension(),
		config.RegistryRetries(), config.RegistryDelaySeconds())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// createRootCommand creates and configures the root cobra command with all subcommands
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "npm-dist-verifier",
		Short: "Verifier for multi-platform native npm distributions",
		Long: `npm-dist-verifier checks that a multi-platform native npm distribution
is internally consistent before publishing and resolvable on the public
registry afterwards.

The root package pins one platform-specific sub-package per target through
optionalDependencies; each sub-package directory carries its own descriptor
and usually a compiled native artifact.

Use 'npm-dist-verifier local' before publishing to reconcile the manifest
against the generated sub-packages, and 'npm-dist-verifier registry' after
publishing to confirm every package/version pair has propagated.`,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")

	// Add all subcommands
	rootCmd.AddCommand(createLocalCommand())
	rootCmd.AddCommand(createRegistryCommand())
	rootCmd.AddCommand(createVersionCommand())
	rootCmd.AddCommand(createConfigCommand())
	rootCmd.AddCommand(createInstallCompletionCommand())

	return rootCmd
}
