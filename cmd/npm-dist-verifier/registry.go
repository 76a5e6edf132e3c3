package main

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/open-edge-platform/npm-dist-verifier/internal/config"
	"github.com/open-edge-platform/npm-dist-verifier/internal/manifest"
	"github.com/open-edge-platform/npm-dist-verifier/internal/registry"
	"github.com/open-edge-platform/npm-dist-verifier/internal/report"
	"github.com/spf13/cobra"
)

// Registry command flags
var (
	versionOverride string = "" // Empty means use the manifest's version field
	retries         int    = -1 // -1 means use config file value
	delaySeconds    int    = -1 // -1 means use config file value
)

// createRegistryCommand creates the registry subcommand
func createRegistryCommand() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Confirm every published package has propagated to the registry",
		Long: `Confirm that the root package and every declared platform sub-package
resolve to the target version on the public registry.

Publishing is eventually consistent: each package is probed repeatedly with a
fixed delay until it resolves or the retry budget is exhausted. The first
unresolvable package aborts the remaining checks.`,
		RunE: executeRegistry,
	}

	registryCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "",
		"Path to the root package.json")
	registryCmd.Flags().StringVar(&versionOverride, "version", "",
		"Target version to probe (default: the manifest's version field)")
	registryCmd.Flags().IntVar(&retries, "retries", -1,
		"Lookup attempts per package before giving up")
	registryCmd.Flags().IntVar(&delaySeconds, "delay", -1,
		"Delay in seconds between attempts")
	registryCmd.Flags().StringVar(&reportPath, "report", "",
		"Write a JSON verification report to this file")

	return registryCmd
}

// executeRegistry handles the registry reconciliation command logic
func executeRegistry(cmd *cobra.Command, args []string) error {
	// Parse command-line flags and override global config
	if cmd.Flags().Changed("manifest") {
		currentConfig := config.Global()
		currentConfig.ManifestPath = manifestPath
		config.SetGlobal(currentConfig)
	}
	if cmd.Flags().Changed("retries") {
		currentConfig := config.Global()
		currentConfig.Registry.Retries = retries
		config.SetGlobal(currentConfig)
	}
	if cmd.Flags().Changed("delay") {
		currentConfig := config.Global()
		currentConfig.Registry.DelaySeconds = delaySeconds
		config.SetGlobal(currentConfig)
	}

	// Manifest versions are semver-checked on load; the override must pass
	// the same gate before it reaches the registry lookup.
	if versionOverride != "" {
		if _, err := semver.StrictNewVersion(versionOverride); err != nil {
			return fmt.Errorf("version override %q is not valid semver: %w", versionOverride, err)
		}
	}

	m, err := manifest.Load(config.ManifestPath())
	if err != nil {
		return err
	}

	probeCfg := registry.ProbeConfig{
		Retries:      config.RegistryRetries(),
		DelaySeconds: config.RegistryDelaySeconds(),
	}

	targetVersion := versionOverride
	if targetVersion == "" {
		targetVersion = m.Version
	}

	verifyErr := registry.VerifyPublished(m, versionOverride, probeCfg)

	if reportPath != "" {
		rep := report.NewRegistryReport(targetVersion, verifyErr == nil)
		if err := rep.WriteToFile(reportPath); err != nil {
			return err
		}
	}

	return verifyErr
}
