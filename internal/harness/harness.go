package harness

import (
	"fmt"
	"slices"

	"github.com/lmoretti/petrivet/internal/reduce"
	"github.com/lmoretti/petrivet/internal/tracelog"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation in the expect clause matched.
	Pass bool `json:"pass"`

	// Outcome is the full reduction outcome, kept for golden
	// snapshots and reporting.
	Outcome reduce.Outcome `json:"-"`

	// Errors contains one message per failed expectation.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario: it resolves the trace, reduces it, and
// checks the outcome against the expect clause. A non-nil error means
// the scenario could not be executed at all (for example an unreadable
// trace file); expectation mismatches are reported through the result.
func Run(scenario *Scenario) (*Result, error) {
	trace := scenario.Trace
	if scenario.TraceFile != "" {
		loaded, err := tracelog.ReadTrace(scenario.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		trace = loaded
	}

	result := NewResult()
	result.Outcome = reduce.Run(trace)
	checkExpectations(result, &scenario.Expect)
	return result, nil
}

// checkExpectations compares the reduction outcome against the expect
// clause, recording every mismatch rather than stopping at the first.
func checkExpectations(result *Result, expect *ExpectClause) {
	out := result.Outcome

	if got := out.Verdict.String(); got != expect.Verdict {
		result.AddError(fmt.Sprintf("verdict is %q, want %q", got, expect.Verdict))
	}

	if expect.Invariants != nil && out.Invariants != *expect.Invariants {
		result.AddError(fmt.Sprintf("completed %d invariants, want %d",
			out.Invariants, *expect.Invariants))
	}

	if expect.Residue != nil && out.Residue != *expect.Residue {
		result.AddError(fmt.Sprintf("residue is %q, want %q",
			out.Residue, *expect.Residue))
	}

	if expect.Passes != nil && len(out.Passes) != *expect.Passes {
		result.AddError(fmt.Sprintf("reduction took %d passes, want %d",
			len(out.Passes), *expect.Passes))
	}

	if expect.Routes != nil && !slices.Equal(out.Paths[:], expect.Routes) {
		result.AddError(fmt.Sprintf("route counts are %v, want %v",
			out.Paths[:], expect.Routes))
	}
}
