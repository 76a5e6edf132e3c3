package reconcile

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/open-edge-platform/npm-dist-verifier/internal/manifest"
	"github.com/open-edge-platform/npm-dist-verifier/internal/scanner"
)

// VersionMismatch records a declared package whose generated descriptor
// carries a different version.
type VersionMismatch struct {
	Name     string
	Expected string
	Actual   string
}

// Result is the outcome of reconciling declared dependencies against the
// scanned package index. Missing and Extra are sorted lexicographically;
// VersionMismatches and MissingBinaries follow manifest declaration order.
type Result struct {
	Missing           []string
	Extra             []string
	VersionMismatches []VersionMismatch
	MissingBinaries   []string
	OK                bool
}

// Reconcile compares the declared dependency list with the generated-package
// index. It is a pure function of its inputs: no I/O, deterministic output.
// Every check is evaluated independently per package, so one run reports a
// package that is both version-mismatched and missing its binary.
func Reconcile(declared []manifest.Dependency, idx scanner.Index) Result {
	result := Result{}

	declaredNames := make(map[string]struct{}, len(declared))
	for _, dep := range declared {
		declaredNames[dep.Name] = struct{}{}

		pkg, found := idx[dep.Name]
		if !found {
			result.Missing = append(result.Missing, dep.Name)
			continue
		}

		if pkg.Version != dep.Version {
			result.VersionMismatches = append(result.VersionMismatches, VersionMismatch{
				Name:     dep.Name,
				Expected: dep.Version,
				Actual:   pkg.Version,
			})
		}
		if !pkg.HasBinary {
			result.MissingBinaries = append(result.MissingBinaries, dep.Name)
		}
	}

	for name := range idx {
		if _, ok := declaredNames[name]; !ok {
			result.Extra = append(result.Extra, name)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Extra)

	result.OK = len(result.Missing) == 0 &&
		len(result.Extra) == 0 &&
		len(result.VersionMismatches) == 0 &&
		len(result.MissingBinaries) == 0

	return result
}

// Err converts a failed result into a single aggregated error naming every
// non-empty category, so one run surfaces every defect. It returns nil when
// the result is OK.
func (r Result) Err() error {
	if r.OK {
		return nil
	}

	var parts []string
	if len(r.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing packages: %s", strings.Join(r.Missing, ", ")))
	}
	if len(r.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("undeclared packages: %s", strings.Join(r.Extra, ", ")))
	}
	if len(r.VersionMismatches) > 0 {
		mismatches := make([]string, 0, len(r.VersionMismatches))
		for _, vm := range r.VersionMismatches {
			mismatches = append(mismatches,
				fmt.Sprintf("%s (expected %s, got %s)", vm.Name, vm.Expected, vm.Actual))
		}
		parts = append(parts, fmt.Sprintf("version mismatches: %s", strings.Join(mismatches, ", ")))
	}
	if len(r.MissingBinaries) > 0 {
		parts = append(parts, fmt.Sprintf("packages without binary: %s", strings.Join(r.MissingBinaries, ", ")))
	}

	return fmt.Errorf("local reconciliation failed: %s", strings.Join(parts, "; "))
}

// Render formats the defects as a table for CLI display. It returns an empty
// string when the result is OK.
func (r Result) Render() string {
	if r.OK {
		return ""
	}

	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Defect", "Package", "Detail"})

	for _, name := range r.Missing {
		t.AppendRow(table.Row{"missing", name, "declared but not generated"})
	}
	for _, name := range r.Extra {
		t.AppendRow(table.Row{"extra", name, "generated but not declared"})
	}
	for _, vm := range r.VersionMismatches {
		t.AppendRow(table.Row{"version mismatch", vm.Name,
			fmt.Sprintf("expected %s, got %s", vm.Expected, vm.Actual)})
	}
	for _, name := range r.MissingBinaries {
		t.AppendRow(table.Row{"no binary", name, "no native artifact in package directory"})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.String()
}
