// Package config resolves which tracker field labels a run reads and writes.
// Values are resolved from: flag > env var > config file > compiled-in defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/handleui/compute-risk/internal/risk"
)

const (
	// ConfigEnv names a config file when --config is not given.
	ConfigEnv = "COMPUTE_RISK_CONFIG"
	// VariantEnv selects a compiled-in variant when --variant is not given.
	VariantEnv = "COMPUTE_RISK_VARIANT"

	// maxConfigSizeBytes bounds the config file read (64KB)
	maxConfigSizeBytes = 64 * 1024
)

// --- Value Source Tracking ---

// ValueSource indicates where a configuration value originated.
type ValueSource int

// Value sources indicate where configuration values originated.
const (
	SourceDefault ValueSource = iota // SourceDefault indicates the value is compiled in.
	SourceFile                       // SourceFile indicates the value comes from the config file.
	SourceEnv                        // SourceEnv indicates the value comes from an environment variable.
	SourceFlag                       // SourceFlag indicates the value comes from a command-line flag.
)

// String returns the display name for a value source.
func (s ValueSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFile:
		return "config"
	case SourceEnv:
		return "env"
	case SourceFlag:
		return "flag"
	}
	return "unknown"
}

// ConfigValue holds a resolved value with its source.
type ConfigValue[T any] struct {
	Value  T
	Source ValueSource
}

// --- Structs ---

// PhaseLabels is the on-disk form of a risk.Phase.
type PhaseLabels struct {
	Name          string `yaml:"name"`
	Severity      string `yaml:"severity"`
	Probability   string `yaml:"probability"`
	Detectability string `yaml:"detectability"`
	Risk          string `yaml:"risk"`

	// Diagnostic overrides; empty keeps the shared message.
	FieldNotFoundMessage  string `yaml:"field_not_found_message,omitempty"`
	ValuesNotFoundMessage string `yaml:"values_not_found_message,omitempty"`
}

// File is the raw structure of a config file.
type File struct {
	// Requires is a semver constraint the binary version must satisfy.
	Requires string        `yaml:"requires,omitempty"`
	Variant  string        `yaml:"variant,omitempty"`
	Phases   []PhaseLabels `yaml:"phases,omitempty"`
}

// Options carries the command-line inputs to Load.
type Options struct {
	Path    string // --config; empty falls back to ConfigEnv
	Variant string // --variant; empty means not set
	Version string // running binary version, checked against File.Requires
}

// Config is the resolved configuration for one run.
type Config struct {
	Path    ConfigValue[string]
	Variant ConfigValue[risk.Variant]
	Phases  ConfigValue[[]risk.Phase]
}

// --- Loading ---

// Load resolves the configuration for a run.
func Load(opts Options) (*Config, error) {
	cfg := &Config{
		Variant: ConfigValue[risk.Variant]{Value: risk.DefaultVariant, Source: SourceDefault},
	}

	switch {
	case opts.Path != "":
		cfg.Path = ConfigValue[string]{Value: opts.Path, Source: SourceFlag}
	case os.Getenv(ConfigEnv) != "":
		cfg.Path = ConfigValue[string]{Value: os.Getenv(ConfigEnv), Source: SourceEnv}
	}

	var file *File
	if cfg.Path.Value != "" {
		f, err := ReadFile(cfg.Path.Value)
		if err != nil {
			return nil, err
		}
		if err := f.checkRequires(opts.Version); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Path.Value, err)
		}
		file = f
	}

	if file != nil && file.Variant != "" {
		v, err := risk.ParseVariant(file.Variant)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Path.Value, err)
		}
		cfg.Variant = ConfigValue[risk.Variant]{Value: v, Source: SourceFile}
	}
	if env := os.Getenv(VariantEnv); env != "" {
		v, err := risk.ParseVariant(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", VariantEnv, err)
		}
		cfg.Variant = ConfigValue[risk.Variant]{Value: v, Source: SourceEnv}
	}
	if opts.Variant != "" {
		v, err := risk.ParseVariant(opts.Variant)
		if err != nil {
			return nil, err
		}
		cfg.Variant = ConfigValue[risk.Variant]{Value: v, Source: SourceFlag}
	}

	// Custom phases apply unless a variant was chosen explicitly above the file.
	if file != nil && len(file.Phases) > 0 && cfg.Variant.Source <= SourceFile {
		cfg.Phases = ConfigValue[[]risk.Phase]{Value: file.phases(), Source: SourceFile}
	} else {
		cfg.Phases = ConfigValue[[]risk.Phase]{Value: cfg.Variant.Value.Phases(), Source: cfg.Variant.Source}
	}

	return cfg, nil
}

// ReadFile reads and validates a config file. Unknown keys are rejected.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > maxConfigSizeBytes {
		return nil, fmt.Errorf("config file exceeds maximum size of %d bytes", maxConfigSizeBytes)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates config file content.
func Parse(data []byte) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file for unusable values.
func (f *File) Validate() error {
	if f.Requires != "" {
		if _, err := semver.NewConstraint(f.Requires); err != nil {
			return fmt.Errorf("invalid requires constraint %q: %w", f.Requires, err)
		}
	}
	if f.Variant != "" {
		if _, err := risk.ParseVariant(f.Variant); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(f.Phases))
	for _, p := range f.phases() {
		if seen[p.Name] {
			return fmt.Errorf("duplicate phase name %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// checkRequires verifies version against the file's constraint.
// Development builds (non-semver versions such as "dev") are not checked.
func (f *File) checkRequires(version string) error {
	if f.Requires == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	c, err := semver.NewConstraint(f.Requires)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", f.Requires, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("config requires compute-risk %s, running %s", f.Requires, version)
	}
	return nil
}

func (f *File) phases() []risk.Phase {
	out := make([]risk.Phase, 0, len(f.Phases))
	for i, p := range f.Phases {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("phase %d", i+1)
		}
		out = append(out, risk.Phase{
			Name:          name,
			Severity:      p.Severity,
			Probability:   p.Probability,
			Detectability: p.Detectability,
			Risk:          p.Risk,

			FieldNotFoundMessage:  p.FieldNotFoundMessage,
			ValuesNotFoundMessage: p.ValuesNotFoundMessage,
		})
	}
	return out
}

// --- Output ---

// File returns the effective label set in config file form.
func (c *Config) File() *File {
	f := &File{Variant: string(c.Variant.Value)}
	for _, p := range c.Phases.Value {
		f.Phases = append(f.Phases, PhaseLabels{
			Name:          p.Name,
			Severity:      p.Severity,
			Probability:   p.Probability,
			Detectability: p.Detectability,
			Risk:          p.Risk,

			FieldNotFoundMessage:  p.FieldNotFoundMessage,
			ValuesNotFoundMessage: p.ValuesNotFoundMessage,
		})
	}
	return f
}

// MarshalFile encodes f as YAML.
func MarshalFile(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}
