package artifact

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/ulikunitz/xz"
)

// IsBinary reports whether a file name follows the platform-binary extension
// convention shared by the scanner and the tarball checks.
func IsBinary(name, binaryExt string) bool {
	return binaryExt != "" && strings.HasSuffix(name, binaryExt)
}

// ListTarball returns the entry names of a packed sub-package tarball.
// Supported encodings are the ones the pack step produces: gzip (.tgz,
// .tar.gz) and xz (.tar.xz).
func ListTarball(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tarball %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader
	switch {
	case strings.HasSuffix(path, ".tgz"), strings.HasSuffix(path, ".tar.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading gzip stream of %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(path, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading xz stream of %s: %w", path, err)
		}
		reader = xzr
	default:
		return nil, fmt.Errorf("unsupported tarball encoding: %s", path)
	}

	var names []string
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entries of %s: %w", path, err)
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

// tarballPatterns matches the artifacts `npm pack` and the release pipeline
// drop next to a sub-package.
var tarballPatterns = []string{"*.tgz", "*.tar.gz", "*.tar.xz"}

// findTarballs lists the packed tarballs inside a sub-package directory.
func findTarballs(dir string) ([]string, error) {
	var tarballs []string
	for _, pattern := range tarballPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %s in %s: %w", pattern, dir, err)
		}
		for _, m := range matches {
			// *.tar.gz also matches *.tgz globs on some layouts; dedupe.
			if !contains(tarballs, m) {
				tarballs = append(tarballs, m)
			}
		}
	}
	return tarballs, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// VerifyPackedTarballs checks that every packed tarball found in dir actually
// ships at least one binary entry. A directory without tarballs passes: the
// pack step may not have run for this target yet.
func VerifyPackedTarballs(dir, binaryExt string) error {
	log := logger.Logger()

	tarballs, err := findTarballs(dir)
	if err != nil {
		return err
	}

	for _, tarball := range tarballs {
		entries, err := ListTarball(tarball)
		if err != nil {
			return err
		}

		found := false
		for _, entry := range entries {
			if IsBinary(entry, binaryExt) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("tarball %s contains no %s artifact", tarball, binaryExt)
		}
		log.Debugf("Tarball %s ships a %s artifact (%d entries)", tarball, binaryExt, len(entries))
	}

	return nil
}
