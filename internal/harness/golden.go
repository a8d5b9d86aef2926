package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lmoretti/petrivet/internal/reduce"
)

// Snapshot captures the complete reduction outcome for a scenario.
// Field order is fixed so the JSON form is deterministic.
type Snapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Verdict      string        `json:"verdict"`
	Invariants   int           `json:"invariants"`
	Residue      string        `json:"residue"`
	Routes       []int         `json:"routes"`
	Passes       []reduce.Pass `json:"passes"`
}

// SnapshotJSON renders a reduction outcome as indented JSON suitable
// for golden comparison. Traces contain only transition tokens and
// spaces, so no escaping ambiguity arises.
func SnapshotJSON(scenarioName string, out reduce.Outcome) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Verdict:      out.Verdict.String(),
		Invariants:   out.Invariants,
		Residue:      out.Residue,
		Routes:       out.Paths[:],
		Passes:       out.Passes,
	}
	return json.MarshalIndent(snapshot, "", "  ")
}

// RunWithGolden executes a scenario and compares the outcome snapshot
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be executed or snapshotted.
// Snapshot mismatches fail the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := SnapshotJSON(scenario.Name, result.Outcome)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
