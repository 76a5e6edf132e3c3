package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/security"
	"github.com/open-edge-platform/npm-dist-verifier/internal/validate"
)

// Dependency is one optionalDependencies entry: a platform sub-package name
// pinned to an exact version.
type Dependency struct {
	Name    string
	Version string
}

// Manifest is the subset of the root package.json this tool relies on.
// OptionalDependencies preserves the declaration order of the JSON document:
// mismatch reporting and registry probing are both defined in that order.
type Manifest struct {
	Name                 string
	Version              string
	OptionalDependencies []Dependency
}

// Load reads, schema-validates and parses the root package manifest.
// Read failures are fatal; there is no retry at this layer.
func Load(path string) (*Manifest, error) {
	log := logger.Logger()

	data, err := security.SafeReadFile(path, security.ResolveSymlinks)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	log.Debugf("Loaded manifest %s@%s with %d optional dependencies",
		m.Name, m.Version, len(m.OptionalDependencies))
	return m, nil
}

// Parse validates and decodes manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	if err := validate.ValidateManifestJSON(data); err != nil {
		return nil, err
	}

	var doc struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}

	deps, err := orderedOptionalDeps(data)
	if err != nil {
		return nil, fmt.Errorf("parsing optionalDependencies: %w", err)
	}

	m := &Manifest{
		Name:                 doc.Name,
		Version:              doc.Version,
		OptionalDependencies: deps,
	}

	if err := m.checkVersions(); err != nil {
		return nil, err
	}

	return m, nil
}

// checkVersions requires every version in the manifest to be strict semver.
// Pinned sub-package versions that drift from the root version are expected
// to be caught by reconciliation, not here.
func (m *Manifest) checkVersions() error {
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("root version %q is not valid semver: %w", m.Version, err)
	}
	for _, dep := range m.OptionalDependencies {
		if _, err := semver.StrictNewVersion(dep.Version); err != nil {
			return fmt.Errorf("dependency %s pins version %q which is not valid semver: %w",
				dep.Name, dep.Version, err)
		}
	}
	return nil
}

// orderedOptionalDeps extracts the optionalDependencies object preserving the
// document's key order. encoding/json maps are unordered, so the object is
// walked token by token instead.
func orderedOptionalDeps(data []byte) ([]Dependency, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in manifest object", keyTok)
		}

		if key != "optionalDependencies" {
			// Skip this member's value wholesale.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, fmt.Errorf("optionalDependencies is not a JSON object")
		}

		var deps []Dependency
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, ok := nameTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected token %v in optionalDependencies", nameTok)
			}

			var version string
			if err := dec.Decode(&version); err != nil {
				return nil, fmt.Errorf("dependency %s: version is not a string: %w", name, err)
			}

			deps = append(deps, Dependency{Name: name, Version: version})
		}

		return deps, nil
	}

	// No optionalDependencies member at all; an empty set is legal.
	return nil, nil
}
