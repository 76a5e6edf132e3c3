package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/open-edge-platform/npm-dist-verifier/internal/reconcile"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
)

const SchemaVersion = "1.0"

// VerificationReport is the machine-readable record of one verification run,
// consumed by downstream pipeline stages.
type VerificationReport struct {
	SchemaVersion     string                      `json:"schema_version"`
	ReportID          string                      `json:"report_id"`
	GeneratedAt       string                      `json:"generated_at"`
	Mode              string                      `json:"mode"`
	TargetVersion     string                      `json:"target_version"`
	Missing           []string                    `json:"missing"`
	Extra             []string                    `json:"extra"`
	VersionMismatches []reconcile.VersionMismatch `json:"version_mismatches"`
	MissingBinaries   []string                    `json:"missing_binaries"`
	OK                bool                        `json:"ok"`
}

// NewLocalReport builds a report from a local reconciliation result.
func NewLocalReport(targetVersion string, r reconcile.Result) VerificationReport {
	return VerificationReport{
		SchemaVersion:     SchemaVersion,
		ReportID:          uuid.New().String(),
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		Mode:              "local",
		TargetVersion:     targetVersion,
		Missing:           emptyIfNil(r.Missing),
		Extra:             emptyIfNil(r.Extra),
		VersionMismatches: r.VersionMismatches,
		MissingBinaries:   emptyIfNil(r.MissingBinaries),
		OK:                r.OK,
	}
}

// NewRegistryReport builds a report for a registry reconciliation run, which
// either fully succeeds or aborts on the first unresolved package.
func NewRegistryReport(targetVersion string, ok bool) VerificationReport {
	return VerificationReport{
		SchemaVersion:     SchemaVersion,
		ReportID:          uuid.New().String(),
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		Mode:              "registry",
		TargetVersion:     targetVersion,
		Missing:           []string{},
		Extra:             []string{},
		VersionMismatches: []reconcile.VersionMismatch{},
		MissingBinaries:   []string{},
		OK:                ok,
	}
}

// WriteToFile writes the report to the specified output file.
func (vr VerificationReport) WriteToFile(outputFile string) error {
	log := logger.Logger()
	log.Infof("Writing verification report to: %s", outputFile)

	reportJSON, err := json.MarshalIndent(vr, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling report to JSON: %w", err)
	}

	if err := os.WriteFile(outputFile, reportJSON, 0o644); err != nil {
		return fmt.Errorf("error writing report file: %w", err)
	}

	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
