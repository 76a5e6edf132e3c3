package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/open-edge-platform/npm-dist-verifier/internal/reconcile"
)

func TestNewLocalReportCarriesResult(t *testing.T) {
	r := reconcile.Result{
		Missing:         []string{"pkgC"},
		MissingBinaries: []string{"pkgA"},
		VersionMismatches: []reconcile.VersionMismatch{
			{Name: "pkgA", Expected: "1.2.3", Actual: "1.2.2"},
		},
		OK: false,
	}

	rep := NewLocalReport("1.2.3", r)
	if rep.Mode != "local" || rep.TargetVersion != "1.2.3" || rep.OK {
		t.Errorf("unexpected report header: %+v", rep)
	}
	if rep.ReportID == "" || rep.GeneratedAt == "" {
		t.Error("report id and timestamp must be populated")
	}
	if len(rep.Missing) != 1 || rep.Missing[0] != "pkgC" {
		t.Errorf("missing not carried over: %v", rep.Missing)
	}
	// nil slices must serialize as [] rather than null
	if rep.Extra == nil {
		t.Error("expected empty slice for extra, got nil")
	}
}

func TestWriteToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	rep := NewRegistryReport("2.0.0", true)
	if err := rep.WriteToFile(path); err != nil {
		t.Fatalf("writing report: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	var decoded VerificationReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Mode != "registry" || !decoded.OK || decoded.TargetVersion != "2.0.0" {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
	if decoded.SchemaVersion != SchemaVersion {
		t.Errorf("schema version mismatch: %s", decoded.SchemaVersion)
	}
}
