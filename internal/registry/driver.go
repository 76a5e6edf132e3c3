package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/open-edge-platform/npm-dist-verifier/internal/manifest"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/schollz/progressbar/v3"
)

// VerifyPublished probes the root package and every declared optional
// dependency against the same target version: all platform sub-packages are
// released in lockstep with the root package. The version override takes
// precedence over the manifest's own version field.
func VerifyPublished(m *manifest.Manifest, versionOverride string, cfg ProbeConfig) error {
	return verifyPublished(m, versionOverride, NewProber(cfg))
}

func verifyPublished(m *manifest.Manifest, versionOverride string, prober *Prober) error {
	log := logger.Logger()

	targetVersion := versionOverride
	if targetVersion == "" {
		targetVersion = m.Version
	}

	// Root first, then declared order.
	names := make([]string, 0, 1+len(m.OptionalDependencies))
	names = append(names, m.Name)
	for _, dep := range m.OptionalDependencies {
		names = append(names, dep.Name)
	}

	runID := uuid.New().String()[:8]
	log.Infof("Registry reconciliation run %s: %d packages at version %s",
		runID, len(names), targetVersion)

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionSpinnerType(10),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	for _, name := range names {
		bar.Describe("checking " + name)
		log.Infof("checking %s@%s", name, targetVersion)

		// Fail fast: this is a pipeline gate, not a best-effort report.
		if err := prober.Probe(name, targetVersion); err != nil {
			log.Errorf("registry reconciliation run %s failed: %v", runID, err)
			return fmt.Errorf("registry reconciliation: %w", err)
		}

		log.Infof("%s@%s ok", name, targetVersion)
		if err := bar.Add(1); err != nil {
			log.Errorf("failed to add to progress bar: %v", err)
		}
	}

	if err := bar.Finish(); err != nil {
		log.Errorf("failed to finish progress bar: %v", err)
	}
	log.Infof("Registry reconciliation run %s succeeded", runID)
	return nil
}
