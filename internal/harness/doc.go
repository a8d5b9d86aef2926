// Package harness runs scenario-driven conformance tests against the
// trace reducer.
//
// A scenario is a YAML file describing one trace and the outcome its
// reduction must produce:
//
//	name: single_visit
//	description: One complete visit reduces to an empty trace.
//	trace: "T0 T1 T3 T4 T7 T8 T11 "
//	expect:
//	  verdict: success
//	  invariants: 1
//
// The trace is given inline or loaded from a file next to the scenario
// via trace_file. The expect clause always names a verdict; invariants,
// residue, passes, and routes are checked only when present, so a
// scenario can pin exactly as much of the outcome as it cares about.
//
// Run executes one scenario and reports every expectation that failed.
// RunWithGolden additionally snapshots the full reduction outcome as
// canonical JSON and compares it against a golden file, so fixture
// drift shows up as a diff rather than a silent behavior change.
package harness
