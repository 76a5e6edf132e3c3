package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-edge-platform/npm-dist-verifier/internal/artifact"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
)

// Package is one discovered per-platform sub-package.
type Package struct {
	Name      string
	Version   string
	HasBinary bool
	Dir       string
}

// Index maps package name to the discovered package. Duplicate names across
// directories are not expected; when they occur the last one scanned wins.
type Index map[string]Package

// Scan enumerates the immediate subdirectories of root and indexes every one
// that carries a readable package descriptor. Directories without a
// descriptor are skipped: the output tree routinely holds non-package
// artifacts next to the sub-packages. A missing root directory is not an
// error, it simply means nothing was generated yet.
func Scan(root, binaryExt string) (Index, error) {
	log := logger.Logger()

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("Packages directory %s does not exist; nothing generated yet", root)
			return Index{}, nil
		}
		return nil, fmt.Errorf("reading packages directory %s: %w", root, err)
	}

	index := Index{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		pkg, ok := readPackage(dir, binaryExt)
		if !ok {
			log.Debugf("Skipping %s: no readable package descriptor", dir)
			continue
		}
		index[pkg.Name] = pkg
	}

	return index, nil
}

// readPackage loads the descriptor of a single sub-package directory.
// The descriptor being readable and parseable is the sole admission
// criterion; there is no naming convention on the directory itself.
func readPackage(dir, binaryExt string) (Package, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return Package{}, false
	}

	var descriptor struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return Package{}, false
	}
	if descriptor.Name == "" {
		return Package{}, false
	}

	return Package{
		Name:      descriptor.Name,
		Version:   descriptor.Version,
		HasBinary: dirHasBinary(dir, binaryExt),
		Dir:       dir,
	}, true
}

// dirHasBinary reports whether any regular file in dir carries the
// platform-binary extension.
func dirHasBinary(dir, binaryExt string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if artifact.IsBinary(entry.Name(), binaryExt) {
			return true
		}
	}
	return false
}
