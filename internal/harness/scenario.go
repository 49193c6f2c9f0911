package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a sequence of codec operations
// against one union type, with expectations on each.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Union names the target union in the harness catalog (e.g. "classes").
	Union string `yaml:"union"`

	// Mode is the codec mode: "envelope" (default) or "transparent".
	Mode string `yaml:"mode,omitempty"`

	// Steps run in order against a fresh codec.
	Steps []Step `yaml:"steps"`
}

// Step is one codec operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Type is the alternative's type identifier (roundtrip, bson).
	Type string `yaml:"type,omitempty"`

	// Value is the payload, as YAML, decoded into Type (roundtrip, bson).
	Value any `yaml:"value,omitempty"`

	// Input is raw envelope JSON text (decode).
	Input string `yaml:"input,omitempty"`

	// Expect holds the checks for this step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Output is the expected serialized JSON, compared structurally.
	Output string `yaml:"output,omitempty"`

	// Error is the expected codec error code (e.g. "MISSING_TYPE").
	Error string `yaml:"error,omitempty"`

	// Type is the expected type identifier of the decoded alternative.
	Type string `yaml:"type,omitempty"`
}

// Step operations.
const (
	// OpRoundTrip wraps Value as Type, serializes it and, in envelope
	// mode, deserializes it back.
	OpRoundTrip = "roundtrip"

	// OpBSON is OpRoundTrip through BSON documents.
	OpBSON = "bson"

	// OpDecode deserializes Input.
	OpDecode = "decode"
)

var validOps = []string{OpRoundTrip, OpBSON, OpDecode}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML text.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml / *.yml file in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Union == "" {
		return fmt.Errorf("union is required")
	}

	switch strings.ToLower(s.Mode) {
	case "", "envelope", "transparent":
	default:
		return fmt.Errorf("invalid mode %q", s.Mode)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, st *Step) error {
	if !slices.Contains(validOps, st.Op) {
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	switch st.Op {
	case OpRoundTrip, OpBSON:
		if st.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for %s", index, st.Op)
		}
	case OpDecode:
		if st.Input == "" {
			return fmt.Errorf("steps[%d]: input is required for decode", index)
		}
		if st.Expect == nil {
			return fmt.Errorf("steps[%d]: expect is required for decode", index)
		}
	}

	return nil
}
