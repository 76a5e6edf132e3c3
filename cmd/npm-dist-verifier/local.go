package main

import (
	"fmt"

	"github.com/open-edge-platform/npm-dist-verifier/internal/artifact"
	"github.com/open-edge-platform/npm-dist-verifier/internal/config"
	"github.com/open-edge-platform/npm-dist-verifier/internal/manifest"
	"github.com/open-edge-platform/npm-dist-verifier/internal/reconcile"
	"github.com/open-edge-platform/npm-dist-verifier/internal/report"
	"github.com/open-edge-platform/npm-dist-verifier/internal/scanner"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Local command flags
var (
	manifestPath  string = "" // Empty means use config file value
	packagesDir   string = "" // Empty means use config file value
	binaryExt     string = "" // Empty means use config file value
	checkTarballs bool   = false
	pubkeyPath    string = ""
	reportPath    string = ""
)

// createLocalCommand creates the local subcommand
func createLocalCommand() *cobra.Command {
	localCmd := &cobra.Command{
		Use:   "local",
		Short: "Reconcile the manifest against the generated sub-packages",
		Long: `Reconcile the root package manifest against the generated per-platform
sub-package directories before publishing.

The check fails when a declared sub-package was not generated, an undeclared
package was generated, a generated descriptor carries the wrong version, or a
sub-package ships no native artifact. All defects are reported in one run.`,
		RunE: executeLocal,
	}

	localCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "",
		"Path to the root package.json")
	localCmd.Flags().StringVarP(&packagesDir, "packages-dir", "p", "",
		"Directory holding the generated sub-packages")
	localCmd.Flags().StringVar(&binaryExt, "binary-ext", "",
		"File extension that marks a compiled native artifact")
	localCmd.Flags().BoolVar(&checkTarballs, "check-tarballs", false,
		"Also require every packed tarball to ship a native artifact")
	localCmd.Flags().StringVar(&pubkeyPath, "pubkey", "",
		"Armored public key; require a valid detached signature on every binary")
	localCmd.Flags().StringVar(&reportPath, "report", "",
		"Write a JSON verification report to this file")

	return localCmd
}

// executeLocal handles the local reconciliation command logic
func executeLocal(cmd *cobra.Command, args []string) error {
	// Parse command-line flags and override global config
	if cmd.Flags().Changed("manifest") {
		currentConfig := config.Global()
		currentConfig.ManifestPath = manifestPath
		config.SetGlobal(currentConfig)
	}
	if cmd.Flags().Changed("packages-dir") {
		currentConfig := config.Global()
		currentConfig.PackagesDir = packagesDir
		config.SetGlobal(currentConfig)
	}
	if cmd.Flags().Changed("binary-ext") {
		currentConfig := config.Global()
		currentConfig.BinaryExtension = binaryExt
		config.SetGlobal(currentConfig)
	}

	log := logger.Logger()

	m, err := manifest.Load(config.ManifestPath())
	if err != nil {
		return err
	}

	idx, err := scanner.Scan(config.PackagesDir(), config.BinaryExtension())
	if err != nil {
		return err
	}

	result := reconcile.Reconcile(m.OptionalDependencies, idx)

	if reportPath != "" {
		rep := report.NewLocalReport(m.Version, result)
		if err := rep.WriteToFile(reportPath); err != nil {
			return err
		}
	}

	if !result.OK {
		fmt.Println(result.Render())
		return result.Err()
	}

	// Supplementary artifact checks run only once the package sets agree.
	if checkTarballs {
		for _, dep := range m.OptionalDependencies {
			if err := artifact.VerifyPackedTarballs(idx[dep.Name].Dir, config.BinaryExtension()); err != nil {
				return fmt.Errorf("tarball check: %w", err)
			}
		}
		log.Infof("Packed tarballs verified for %d packages", len(m.OptionalDependencies))
	}
	if pubkeyPath != "" {
		for _, dep := range m.OptionalDependencies {
			if err := artifact.VerifySignedBinaries(idx[dep.Name].Dir, config.BinaryExtension(), pubkeyPath); err != nil {
				return fmt.Errorf("signature check: %w", err)
			}
		}
		log.Infof("Binary signatures verified for %d packages", len(m.OptionalDependencies))
	}

	log.Infof("Local reconciliation passed: %d packages match %s@%s",
		len(m.OptionalDependencies), m.Name, m.Version)
	return nil
}
