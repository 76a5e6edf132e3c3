package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// VerifyDetachedSignature checks artifactPath against the armored detached
// signature at sigPath using the armored keyring at keyringPath.
func VerifyDetachedSignature(artifactPath, sigPath, keyringPath string) error {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return fmt.Errorf("opening public key: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		return fmt.Errorf("loading keyring: %w", err)
	}

	signed, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer signed.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("opening signature: %w", err)
	}
	defer sig.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, signed, sig, nil); err != nil {
		return fmt.Errorf("signature check failed for %s: %w", artifactPath, err)
	}

	return nil
}

// VerifySignedBinaries requires every binary artifact in dir to carry a valid
// detached signature `<file>.asc`, checked against keyringPath.
func VerifySignedBinaries(dir, binaryExt, keyringPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading package directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsBinary(entry.Name(), binaryExt) {
			continue
		}

		artifactPath := filepath.Join(dir, entry.Name())
		sigPath := artifactPath + ".asc"
		if _, err := os.Stat(sigPath); err != nil {
			return fmt.Errorf("binary %s has no detached signature (%s)", artifactPath, sigPath)
		}

		if err := VerifyDetachedSignature(artifactPath, sigPath, keyringPath); err != nil {
			return err
		}
	}

	return nil
}
