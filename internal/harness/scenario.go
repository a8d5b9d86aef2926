package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lmoretti/petrivet/internal/grammar"
)

// Scenario defines a conformance test scenario.
// Scenarios feed one trace through the reducer and assert on the
// outcome: verdict, completed invariants, residue, and route counts.
type Scenario struct {
	// Name uniquely identifies this scenario.
	// It doubles as the golden file name for snapshot comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Trace is the firing trace to reduce, given inline.
	// Mutually exclusive with TraceFile. An empty inline trace is
	// valid and reduces to an immediate success with zero invariants.
	Trace string `yaml:"trace,omitempty"`

	// TraceFile names a trace file whose first line is the trace.
	// Relative paths resolve against the scenario file location.
	TraceFile string `yaml:"trace_file,omitempty"`

	// Expect specifies the required reduction outcome.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies the expected reduction outcome.
// Verdict is mandatory; the remaining fields are checked only when
// present, so scenarios pin exactly as much as they care about.
type ExpectClause struct {
	// Verdict is "success" or "failure".
	Verdict string `yaml:"verdict"`

	// Invariants is the expected number of completed invariants.
	Invariants *int `yaml:"invariants,omitempty"`

	// Residue is the exact leftover trace expected on failure.
	// On success it can pin the empty string.
	Residue *string `yaml:"residue,omitempty"`

	// Passes is the expected number of reduction passes.
	Passes *int `yaml:"passes,omitempty"`

	// Routes is the expected per-route completion count,
	// indexed like the reducer's route table.
	Routes []int `yaml:"routes,omitempty"`
}

// Verdict name constants accepted in expect clauses.
const (
	VerdictSuccess = "success"
	VerdictFailure = "failure"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative trace_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the trace file relative to the scenario location BEFORE validation
	if scenario.TraceFile != "" && !filepath.IsAbs(scenario.TraceFile) {
		scenario.TraceFile = filepath.Join(filepath.Dir(path), scenario.TraceFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in a directory, sorted by
// file name so runners see a stable order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, scenario)
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

	if s.Trace != "" && s.TraceFile != "" {
		return fmt.Errorf("trace and trace_file are mutually exclusive")
	}

	if s.TraceFile != "" {
		if _, err := os.Stat(s.TraceFile); os.IsNotExist(err) {
			return fmt.Errorf("trace file not found: %s", s.TraceFile)
		}
	}

	switch s.Expect.Verdict {
	case VerdictSuccess, VerdictFailure:
	case "":
		return fmt.Errorf("expect.verdict is required")
	default:
		return fmt.Errorf("expect.verdict must be %q or %q, got %q",
			VerdictSuccess, VerdictFailure, s.Expect.Verdict)
	}

	if s.Expect.Invariants != nil && *s.Expect.Invariants < 0 {
		return fmt.Errorf("expect.invariants must be non-negative")
	}

	if s.Expect.Passes != nil && *s.Expect.Passes < 1 {
		return fmt.Errorf("expect.passes must be at least 1")
	}

	if s.Expect.Routes != nil && len(s.Expect.Routes) != grammar.NumPaths {
		return fmt.Errorf("expect.routes must list %d counts, got %d",
			grammar.NumPaths, len(s.Expect.Routes))
	}
	for i, n := range s.Expect.Routes {
		if n < 0 {
			return fmt.Errorf("expect.routes[%d] must be non-negative", i)
		}
	}

	return nil
}
