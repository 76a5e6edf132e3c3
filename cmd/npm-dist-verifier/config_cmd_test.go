package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecuteConfigInit_CreatesFile(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "my-config.yml")

	cmd := createConfigCommand()
	// Run: npm-dist-verifier config init <path>
	cmd.SetArgs([]string{"init", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute config init failed: %v", err)
	}

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file to be created at %s, got error: %v", target, err)
	}

	contents, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	text := string(contents)
	if !strings.Contains(text, "# npm-dist-verifier - Global Configuration") {
		t.Fatalf("generated config missing header comments: %s", text)
	}

	if !strings.Contains(text, "binary_extension: \".node\"") {
		t.Fatalf("generated config missing binary_extension entry: %s", text)
	}

	if !strings.Contains(text, "retries: 18") {
		t.Fatalf("generated config missing registry retries entry: %s", text)
	}
}

func TestExecuteConfigInit_DefaultPath(t *testing.T) {
	tmp := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("failed to change working directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})

	cmd := createConfigCommand()
	cmd.SetArgs([]string{"init"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute config init failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmp, "npm-dist-verifier.yml")); err != nil {
		t.Fatalf("expected default config file in working directory: %v", err)
	}
}
