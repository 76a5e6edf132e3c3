package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/shell"
)

// Lookup resolves the version string(s) the registry associates with
// name@version and returns the raw resolver output. Implementations may fail
// transiently; the prober treats every failure as retryable.
type Lookup func(name, version string) (string, error)

// NPMLookup asks the npm resolver what version name@version resolves to.
// The npm CLI is the supported client for the registry's read path; its
// output is normalized by the prober.
func NPMLookup(name, version string) (string, error) {
	out, err := shell.ExecCmd(fmt.Sprintf("npm view %s@%s version --json", name, version), nil)
	if err != nil {
		return "", fmt.Errorf("npm view %s@%s: %w", name, version, err)
	}
	return out, nil
}

// normalizeVersion reduces raw resolver output to a single version string.
// A JSON list resolves to its first element, a JSON scalar to its string
// form, and anything else to the trimmed text with surrounding quotes
// stripped. An empty result stays empty.
func normalizeVersion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return list[0]
	}

	var scalar string
	if err := json.Unmarshal([]byte(trimmed), &scalar); err == nil {
		return scalar
	}

	return strings.Trim(trimmed, `"`)
}
