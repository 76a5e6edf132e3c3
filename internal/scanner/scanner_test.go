package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

// writePackage lays out a sub-package directory with a descriptor and
// optional extra files.
func writePackage(t *testing.T, root, dir, name, version string, extras ...string) {
	t.Helper()
	pkgDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("creating package dir: %v", err)
	}
	descriptor := `{"name": "` + name + `", "version": "` + version + `"}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(descriptor), 0o644); err != nil {
		t.Fatalf("writing descriptor: %v", err)
	}
	for _, extra := range extras {
		if err := os.WriteFile(filepath.Join(pkgDir, extra), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing extra file: %v", err)
		}
	}
}

func TestScanBinaryDetection(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "linux-x64-gnu", "tool-linux-x64-gnu", "1.2.3", "tool.linux-x64-gnu.node")
	writePackage(t, root, "darwin-arm64", "tool-darwin-arm64", "1.2.3")

	idx, err := Scan(root, ".node")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(idx))
	}

	if pkg := idx["tool-linux-x64-gnu"]; !pkg.HasBinary {
		t.Error("expected linux package to have a binary")
	}
	if pkg := idx["tool-darwin-arm64"]; pkg.HasBinary {
		t.Error("expected darwin package to have no binary")
	}
}

func TestScanMissingRootIsEmpty(t *testing.T) {
	idx, err := Scan(filepath.Join(t.TempDir(), "never-generated"), ".node")
	if err != nil {
		t.Fatalf("missing root must not error, got: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("expected empty index, got %d entries", len(idx))
	}
}

func TestScanSkipsNonPackageDirectories(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "pkg", "tool-linux-x64-gnu", "1.2.3")

	// A directory with no descriptor and one with a broken descriptor.
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}
	brokenDir := filepath.Join(root, "broken")
	if err := os.MkdirAll(brokenDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(brokenDir, "package.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A stray regular file at the top level is ignored too.
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("docs"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := Scan(root, ".node")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(idx) != 1 {
		t.Errorf("expected only the valid package, got %d entries", len(idx))
	}
}

func TestScanLastSeenWinsOnDuplicateNames(t *testing.T) {
	root := t.TempDir()
	// Two directories declaring the same package name; directory order is
	// lexicographic so "b-copy" is scanned after "a-copy".
	writePackage(t, root, "a-copy", "tool-linux-x64-gnu", "1.0.0")
	writePackage(t, root, "b-copy", "tool-linux-x64-gnu", "2.0.0")

	idx, err := Scan(root, ".node")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	pkg, ok := idx["tool-linux-x64-gnu"]
	if !ok {
		t.Fatal("expected package to be indexed")
	}
	if pkg.Version != "2.0.0" {
		t.Errorf("expected last-seen version 2.0.0, got %s", pkg.Version)
	}
}

func TestScanRecordsSourceDirectory(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "win32-x64", "tool-win32-x64", "1.2.3")

	idx, err := Scan(root, ".node")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	pkg := idx["tool-win32-x64"]
	if pkg.Dir != filepath.Join(root, "win32-x64") {
		t.Errorf("unexpected source directory: %s", pkg.Dir)
	}
}
