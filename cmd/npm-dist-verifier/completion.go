package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// completionTarget describes where one shell's completion script lives
// (relative to the home directory) and how to generate it.
type completionTarget struct {
	dir      string
	fileName string
	generate func(root *cobra.Command, buf *bytes.Buffer) error
}

var completionTargets = map[string]completionTarget{
	"bash": {
		dir:      ".bash_completion.d",
		fileName: "npm-dist-verifier.bash",
		generate: func(root *cobra.Command, buf *bytes.Buffer) error {
			return root.GenBashCompletion(buf)
		},
	},
	"zsh": {
		dir:      ".zsh/completion",
		fileName: "_npm-dist-verifier",
		generate: func(root *cobra.Command, buf *bytes.Buffer) error {
			return root.GenZshCompletion(buf)
		},
	},
	"fish": {
		dir:      ".config/fish/completions",
		fileName: "npm-dist-verifier.fish",
		generate: func(root *cobra.Command, buf *bytes.Buffer) error {
			return root.GenFishCompletion(buf, true)
		},
	},
}

// createInstallCompletionCommand creates the install-completion subcommand
func createInstallCompletionCommand() *cobra.Command {
	installCompletionCmd := &cobra.Command{
		Use:   "install-completion",
		Short: "Install shell completion script",
		Long: `Install shell completion script for Bash, Zsh, or Fish.
Automatically detects your shell and installs the appropriate completion script.`,
		RunE: executeInstallCompletion,
	}

	installCompletionCmd.Flags().String("shell", "", "Specify shell type (bash, zsh, fish)")
	installCompletionCmd.Flags().Bool("force", false, "Force overwrite existing completion files")

	return installCompletionCmd
}

// executeInstallCompletion handles installation of shell completion scripts
func executeInstallCompletion(cmd *cobra.Command, args []string) error {
	shellType, err := cmd.Flags().GetString("shell")
	if err != nil {
		return err
	}
	userForce, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if shellType == "" {
		shellType, err = detectShell()
		if err != nil {
			return err
		}
	}

	target, ok := completionTargets[shellType]
	if !ok {
		return fmt.Errorf("unsupported shell type: %s", shellType)
	}

	var buf bytes.Buffer
	if err := target.generate(cmd.Root(), &buf); err != nil {
		return fmt.Errorf("error generating %s completion: %w", shellType, err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %v", err)
	}

	completionDir := filepath.Join(homeDir, target.dir)
	if _, err := os.Stat(completionDir); os.IsNotExist(err) {
		if err := os.MkdirAll(completionDir, 0700); err != nil {
			return fmt.Errorf("could not create directory %s: %v", completionDir, err)
		}
	}

	// Bash completions may go system-wide when explicitly requested
	// (export NPM_DIST_VERIFIER_COMPLETION_SCOPE=system) and writable.
	if shellType == "bash" && os.Getenv("NPM_DIST_VERIFIER_COMPLETION_SCOPE") == "system" {
		systemDir := "/etc/bash_completion.d"
		if _, err := os.Stat(systemDir); !os.IsNotExist(err) && dirWritable(systemDir) {
			completionDir = systemDir
		}
	}

	targetPath := filepath.Join(completionDir, target.fileName)
	if _, err := os.Stat(targetPath); err == nil && !userForce {
		return fmt.Errorf("completion file already exists at %s. Use --force to overwrite", targetPath)
	}

	if err := os.WriteFile(targetPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("could not write completion file: %v", err)
	}

	fmt.Printf("Shell completion installed for %s at %s\n", shellType, targetPath)
	fmt.Printf("Refer to the README.md file for further instructions to activate the installed completion file based on your shell type.\n")

	return nil
}

// detectShell maps $SHELL onto a supported completion target.
func detectShell() (string, error) {
	shellEnv := os.Getenv("SHELL")
	if shellEnv == "" {
		return "", fmt.Errorf("could not detect shell. Please specify with --shell flag")
	}
	for name := range completionTargets {
		if strings.Contains(shellEnv, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("unsupported shell: %s. Please specify shell with --shell flag", shellEnv)
}

// dirWritable checks if the specified directory is writable by attempting to create and remove a temporary file.
func dirWritable(p string) bool {
	tf, err := os.CreateTemp(p, ".probe-*")
	if err != nil {
		return false
	}
	tf.Close()
	_ = os.Remove(tf.Name())
	return true
}
