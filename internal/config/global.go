package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/logger"
	"github.com/open-edge-platform/npm-dist-verifier/internal/utils/security"
	"github.com/open-edge-platform/npm-dist-verifier/internal/validate"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// GlobalConfig holds essential tool-level configuration parameters
type GlobalConfig struct {
	// Core tool settings
	ManifestPath    string `yaml:"manifest_path" json:"manifest_path"`       // Path to the root package.json (default: ./package.json)
	PackagesDir     string `yaml:"packages_dir" json:"packages_dir"`         // Directory holding the generated per-platform sub-packages (default: ./npm)
	BinaryExtension string `yaml:"binary_extension" json:"binary_extension"` // File extension that marks a compiled native artifact (default: .node)

	// Registry probing configuration
	Registry RegistryConfig `yaml:"registry" json:"registry"` // Registry availability probing settings

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"` // Logging behavior settings
}

// RegistryConfig controls the registry availability probing budget
type RegistryConfig struct {
	Retries      int `yaml:"retries" json:"retries"`             // Lookup attempts per package before giving up (1-1000, default: 18)
	DelaySeconds int `yaml:"delay_seconds" json:"delay_seconds"` // Fixed delay between attempts in seconds (default: 10)
}

// LoggingConfig controls basic logging behavior
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`                   // Log verbosity level: debug (most verbose), info (default), warn (warnings only), error (errors only)
	File  string `yaml:"file,omitempty" json:"file,omitempty"` // Optional log file path for teeing output to disk
}

// Global singleton variables
var (
	globalInstance *GlobalConfig
	globalMutex    sync.RWMutex
	once           sync.Once
)

// SetGlobal sets the global config instance (call once at startup in main.go)
func SetGlobal(config *GlobalConfig) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalInstance = config
}

// Global returns the global config instance
func Global() *GlobalConfig {
	once.Do(func() {
		globalMutex.Lock()
		defer globalMutex.Unlock()
		if globalInstance == nil {
			globalInstance = DefaultGlobalConfig()
		}
	})

	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalInstance
}

// DefaultGlobalConfig returns a GlobalConfig with sensible defaults
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ManifestPath:    "package.json",
		PackagesDir:     "npm",
		BinaryExtension: ".node",

		Registry: RegistryConfig{
			Retries:      18,
			DelaySeconds: 10,
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "npm-dist-verifier.log",
		},
	}
}

// FindConfigFile searches the conventional config file locations and returns
// the first one that exists, or an empty string when none is present.
func FindConfigFile() string {
	candidates := []string{"npm-dist-verifier.yml", "npm-dist-verifier.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".npm-dist-verifier", "config.yml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadGlobalConfig loads configuration from the specified path
func LoadGlobalConfig(configPath string) (*GlobalConfig, error) {
	log := logger.Logger()

	// Start with defaults
	config := DefaultGlobalConfig()

	// If no config file specified or doesn't exist, return defaults
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return config, nil // Return defaults if file doesn't exist
		}
		if errors.Is(err, os.ErrPermission) {
			log.Warnf("Config file %s is not accessible (%v); using defaults", configPath, err)
			return config, nil
		}
		log.Errorf("Error accessing config file %s: %v", configPath, err)
		return nil, fmt.Errorf("accessing config file %s: %w", configPath, err)
	}

	// Load and merge config file values with symlink protection
	data, err := security.SafeReadFile(configPath, security.RejectSymlinks)
	if err != nil {
		log.Errorf("Error reading config file %s: %v", configPath, err)
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	// Determine format by extension
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		// Validate the raw document against the schema first so unknown
		// keys are reported instead of silently dropped.
		jsonData, err := sigsyaml.YAMLToJSON(data)
		if err != nil {
			log.Errorf("Error converting config to JSON for validation: %v", err)
			return nil, fmt.Errorf("converting config to JSON for validation: %w", err)
		}
		if err := validate.ValidateConfigJSON(jsonData); err != nil {
			log.Errorf("Schema validation failed: %v", err)
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			log.Errorf("Error parsing YAML config: %v", err)
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}

	default:
		log.Errorf("Unsupported config file format: %s", ext)
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml)", ext)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		log.Errorf("Config validation failed: %v", err)
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for semantic errors
func (gc *GlobalConfig) Validate() error {
	if gc.ManifestPath == "" {
		return fmt.Errorf("manifest_path must not be empty")
	}
	if gc.PackagesDir == "" {
		return fmt.Errorf("packages_dir must not be empty")
	}
	if !strings.HasPrefix(gc.BinaryExtension, ".") {
		return fmt.Errorf("binary_extension must start with a dot, got %q", gc.BinaryExtension)
	}
	if gc.Registry.Retries < 1 {
		return fmt.Errorf("registry.retries must be at least 1, got %d", gc.Registry.Retries)
	}
	if gc.Registry.DelaySeconds < 0 {
		return fmt.Errorf("registry.delay_seconds must not be negative, got %d", gc.Registry.DelaySeconds)
	}

	if err := security.ValidateStructStrings(gc, security.DefaultLimits()); err != nil {
		return fmt.Errorf("configuration string validation failed: %w", err)
	}

	return nil
}

// SaveGlobalConfigWithComments saves the configuration with descriptive
// comments, used by `config init` to produce a self-documenting file.
func (gc *GlobalConfig) SaveGlobalConfigWithComments(configPath string) error {
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}

	content := fmt.Sprintf(`# npm-dist-verifier - Global Configuration
#
# Verifies that a multi-platform native npm distribution is internally
# consistent before publishing and resolvable on the registry afterwards.

# Path to the root package.json whose optionalDependencies pin the
# per-platform sub-packages.
manifest_path: %q

# Directory holding the generated per-platform sub-package directories.
packages_dir: %q

# File extension that marks a compiled native artifact inside a sub-package.
binary_extension: %q

# Registry availability probing budget. Worst-case wait per package is
# roughly (retries-1) * delay_seconds.
registry:
  retries: %d
  delay_seconds: %d

# Logging behavior.
logging:
  level: %q
  file: %q
`,
		gc.ManifestPath, gc.PackagesDir, gc.BinaryExtension,
		gc.Registry.Retries, gc.Registry.DelaySeconds,
		gc.Logging.Level, gc.Logging.File)

	if err := security.SafeWriteFile(configPath, []byte(content), 0o644, security.RejectSymlinks); err != nil {
		return fmt.Errorf("writing config file %s: %w", configPath, err)
	}

	return nil
}

// Convenience accessors over the global singleton

func ManifestPath() string {
	return Global().ManifestPath
}

func PackagesDir() string {
	return Global().PackagesDir
}

func BinaryExtension() string {
	return Global().BinaryExtension
}

func RegistryRetries() int {
	return Global().Registry.Retries
}

func RegistryDelaySeconds() int {
	return Global().Registry.DelaySeconds
}
