package registry

import (
	"fmt"
	"time"

	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
)

// ProbeConfig bounds the availability probing budget per package. The
// worst-case wait per package is roughly (Retries-1) * DelaySeconds.
type ProbeConfig struct {
	Retries      int
	DelaySeconds int
}

// DefaultProbeConfig matches the registry's typical propagation lag.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{Retries: 18, DelaySeconds: 10}
}

// Prober repeatedly asks the registry to resolve a package/version pair
// until the resolved version matches or the retry budget is exhausted.
type Prober struct {
	Config ProbeConfig
	Lookup Lookup
}

// NewProber returns a prober backed by the npm resolver.
func NewProber(cfg ProbeConfig) *Prober {
	return &Prober{Config: cfg, Lookup: NPMLookup}
}

// Probe attempts up to Retries lookups for name@version, sleeping
// DelaySeconds between attempts. A resolved-but-wrong version, an empty
// result, and a failed lookup are all equally retryable: the registry is
// eventually consistent and a stale resolver response is common. Only the
// final attempt's diagnostic is surfaced.
func (p *Prober) Probe(name, version string) error {
	log := logger.Logger()

	retries := p.Config.Retries
	if retries < 1 {
		retries = 1
	}

	var lastDetail string
	for attempt := 1; attempt <= retries; attempt++ {
		raw, err := p.Lookup(name, version)
		if err != nil {
			lastDetail = err.Error()
		} else {
			resolved := normalizeVersion(raw)
			switch {
			case resolved == version:
				log.Debugf("%s@%s resolved on attempt %d/%d", name, version, attempt, retries)
				return nil
			case resolved == "":
				lastDetail = "no version returned"
			default:
				lastDetail = fmt.Sprintf("resolved version %s", resolved)
			}
		}

		if attempt < retries {
			log.Debugf("Attempt %d/%d for %s@%s failed (%s); retrying in %ds",
				attempt, retries, name, version, lastDetail, p.Config.DelaySeconds)
			time.Sleep(time.Duration(p.Config.DelaySeconds) * time.Second)
		}
	}

	return fmt.Errorf("package %s@%s not available after %d attempts: %s",
		name, version, retries, lastDetail)
}
