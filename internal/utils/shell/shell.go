package shell

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
)

// commandMap whitelists the external commands this tool is allowed to run,
// pinned to their expected install locations.
var commandMap = map[string]string{
	"bash": "/usr/bin/bash",
	"node": "/usr/bin/node",
	"npm":  "/usr/bin/npm",
	"sh":   "/bin/sh",
}

// IsCommandExist checks if a command is resolvable on the host
func IsCommandExist(cmd string) bool {
	output, _ := exec.Command("bash", "-c", "command -v "+cmd).Output()
	return len(bytes.TrimSpace(output)) > 0
}

func verifyCmdWithFullPath(cmd string) (string, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return cmd, nil
	}
	bin := fields[0]
	fullPath, ok := commandMap[bin]
	if !ok {
		return "", fmt.Errorf("command %s not found in commandMap", bin)
	}
	fields[0] = fullPath
	return strings.Join(fields, " "), nil
}

// GetFullCmdStr prepares a command string with environment prefixes and the
// whitelisted full binary path.
func GetFullCmdStr(cmdStr string, envVal []string) (string, error) {
	log := logger.Logger()

	fullPathCmdStr, err := verifyCmdWithFullPath(cmdStr)
	if err != nil {
		return "", fmt.Errorf("failed to verify command with full path: %w", err)
	}

	envValStr := ""
	for _, env := range envVal {
		envValStr += env + " "
	}

	fullCmdStr := envValStr + fullPathCmdStr
	log.Debugf("Exec: [" + fullPathCmdStr + "]")

	return fullCmdStr, nil
}

// ExecCmd executes a command and returns its combined output
func ExecCmd(cmdStr string, envVal []string) (string, error) {
	log := logger.Logger()
	fullCmdStr, err := GetFullCmdStr(cmdStr, envVal)
	if err != nil {
		return "", fmt.Errorf("failed to get full command string: %w", err)
	}

	cmd := exec.Command("bash", "-c", fullCmdStr)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Debugf(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", fullCmdStr, err)
	}
	if outputStr != "" {
		log.Debugf(outputStr)
	}
	return outputStr, nil
}
