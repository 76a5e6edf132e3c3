package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckSymlink_RegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "regular.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	// Regular files pass under every policy
	policies := []SymlinkPolicy{RejectSymlinks, ResolveSymlinks, AllowSymlinks}
	for _, policy := range policies {
		safeInfo, err := CheckSymlink(path, policy)
		if err != nil {
			t.Errorf("CheckSymlink failed for regular file with policy %d: %v", policy, err)
			continue
		}

		if safeInfo.IsSymlink {
			t.Errorf("regular file incorrectly identified as symlink")
		}

		if safeInfo.ResolvedPath != path {
			t.Errorf("resolved path should equal original for regular file: expected %s, got %s", path, safeInfo.ResolvedPath)
		}
	}
}

func TestCheckSymlink_SymlinkReject(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	symlinkPath := filepath.Join(tmpDir, "link.json")
	if err := os.Symlink(target, symlinkPath); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	_, err := CheckSymlink(symlinkPath, RejectSymlinks)
	if err == nil {
		t.Fatalf("expected error when rejecting symlinks, got nil")
	}
	if !strings.Contains(err.Error(), "symlinks are not allowed") {
		t.Errorf("expected 'symlinks are not allowed' error, got: %v", err)
	}
}

func TestCheckSymlink_SymlinkResolve(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	symlinkPath := filepath.Join(tmpDir, "link.json")
	if err := os.Symlink(target, symlinkPath); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	safeInfo, err := CheckSymlink(symlinkPath, ResolveSymlinks)
	if err != nil {
		t.Fatalf("unexpected error when resolving symlinks: %v", err)
	}

	if !safeInfo.IsSymlink {
		t.Errorf("symlink not correctly identified")
	}

	if safeInfo.OriginalPath != symlinkPath {
		t.Errorf("original path mismatch: expected %s, got %s", symlinkPath, safeInfo.OriginalPath)
	}

	// Resolved path should be the absolute path of the target
	expectedResolvedPath, _ := filepath.Abs(target)
	actualResolvedPath, _ := filepath.Abs(safeInfo.ResolvedPath)
	if actualResolvedPath != expectedResolvedPath {
		t.Errorf("resolved path mismatch: expected %s, got %s", expectedResolvedPath, actualResolvedPath)
	}
}

func TestCheckSymlink_BrokenSymlink(t *testing.T) {
	tmpDir := t.TempDir()

	nonExistentTarget := filepath.Join(tmpDir, "nonexistent.json")
	symlinkPath := filepath.Join(tmpDir, "broken.symlink")

	if err := os.Symlink(nonExistentTarget, symlinkPath); err != nil {
		t.Fatalf("failed to create broken symlink: %v", err)
	}

	_, err := CheckSymlink(symlinkPath, ResolveSymlinks)
	if err == nil {
		t.Fatal("expected error for broken symlink with ResolveSymlinks policy")
	}

	// Failure may surface at resolution or at target stat
	errMsg := err.Error()
	if !strings.Contains(errMsg, "failed to resolve symlink") &&
		!strings.Contains(errMsg, "failed to access symlink target") {
		t.Errorf("expected symlink resolution error, got: %v", err)
	}
}

func TestCheckSymlink_NonExistentFile(t *testing.T) {
	_, err := CheckSymlink("/definitely/does/not/exist.json", RejectSymlinks)
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
	if !strings.Contains(err.Error(), "failed to get file info") {
		t.Errorf("expected 'failed to get file info' error, got: %v", err)
	}
}

func TestCheckSymlink_InvalidPolicy(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "any.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	_, err := CheckSymlink(path, SymlinkPolicy(999))
	if err == nil {
		t.Fatal("expected error for invalid policy")
	}
	if !strings.Contains(err.Error(), "invalid symlink policy") {
		t.Errorf("expected 'invalid symlink policy' error, got: %v", err)
	}
}

func TestSafeReadFile_RegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "manifest.json")
	expectedContent := `{"name": "demo", "version": "1.0.0"}`
	if err := os.WriteFile(path, []byte(expectedContent), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	content, err := SafeReadFile(path, RejectSymlinks)
	if err != nil {
		t.Fatalf("SafeReadFile failed: %v", err)
	}

	if string(content) != expectedContent {
		t.Errorf("content mismatch: expected %s, got %s", expectedContent, string(content))
	}
}

func TestSafeReadFile_SymlinkRejected(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	symlinkPath := filepath.Join(tmpDir, "link.json")
	if err := os.Symlink(target, symlinkPath); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	if _, err := SafeReadFile(symlinkPath, RejectSymlinks); err == nil {
		t.Error("expected error when reading symlink with RejectSymlinks policy")
	}
}

func TestSafeWriteFile_RegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "report.json")

	content := []byte(`{"ok": true}`)

	if err := SafeWriteFile(filePath, content, 0600, RejectSymlinks); err != nil {
		t.Fatalf("SafeWriteFile failed: %v", err)
	}

	readContent, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}

	if string(readContent) != string(content) {
		t.Errorf("content mismatch: expected %s, got %s", content, readContent)
	}
}

func TestSafeWriteFile_SymlinkDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	realDir := filepath.Join(tmpDir, "real")
	symlinkDir := filepath.Join(tmpDir, "symlink")

	if err := os.Mkdir(realDir, 0700); err != nil {
		t.Fatalf("failed to create real directory: %v", err)
	}

	if err := os.Symlink(realDir, symlinkDir); err != nil {
		t.Fatalf("failed to create directory symlink: %v", err)
	}

	filePath := filepath.Join(symlinkDir, "report.json")
	content := []byte(`{"ok": true}`)

	if err := SafeWriteFile(filePath, content, 0600, RejectSymlinks); err == nil {
		t.Error("expected error when writing through symlinked directory with RejectSymlinks policy")
	}

	if err := SafeWriteFile(filePath, content, 0600, ResolveSymlinks); err != nil {
		t.Errorf("SafeWriteFile should work with ResolveSymlinks policy: %v", err)
	}
}
