package reduce

import (
	"log/slog"
	"strings"

	"github.com/lmoretti/petrivet/internal/grammar"
)

// Verdict is the terminal state of a reduction run.
type Verdict int

const (
	// Success means the trace reduced to nothing: every token belonged to a
	// complete invariant block.
	Success Verdict = iota
	// Failure means a pass made no progress while text remained.
	Failure
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Pass records one iteration of the loop.
type Pass struct {
	Seq     int    `json:"seq"`     // 1-based pass number
	Matches int    `json:"matches"` // blocks stripped in this pass
	Residue string `json:"residue"` // trace after this pass
}

// Outcome is the result of a full reduction run.
type Outcome struct {
	Verdict    Verdict
	Invariants int    // cumulative blocks stripped across all passes
	Residue    string // leftover text on failure, empty on success
	// Paths counts stripped blocks per route through the block pattern,
	// indexed by grammar path order. Summing Paths gives Invariants.
	Paths  [grammar.NumPaths]int
	Passes []Pass
}

// Option configures a reduction run.
type Option func(*runner)

// WithObserver registers a callback invoked after every pass, in order.
// The callback sees the same Pass values that end up in Outcome.Passes.
func WithObserver(fn func(Pass)) Option {
	return func(r *runner) {
		r.observe = fn
	}
}

type runner struct {
	observe func(Pass)
}

// Run reduces trace to a verdict. The input is one line of text; callers
// that start from a log file extract the first line before calling.
//
// Every pass rewrites the whole trace through the grammar and is recorded,
// including the final unproductive or emptying one, so the outcome carries
// the complete derivation.
func Run(trace string, opts ...Option) Outcome {
	var r runner
	for _, opt := range opts {
		opt(&r)
	}

	out := Outcome{Verdict: Failure}
	for seq := 1; ; seq++ {
		next, matches := grammar.Reduce(trace)
		out.Invariants += len(matches)
		for _, m := range matches {
			out.Paths[m.PathIndex()]++
		}

		pass := Pass{Seq: seq, Matches: len(matches), Residue: next}
		out.Passes = append(out.Passes, pass)
		if r.observe != nil {
			r.observe(pass)
		}
		slog.Debug("reduction pass",
			"seq", seq,
			"matches", len(matches),
			"residue_len", len(next))

		// Emptiness wins over lack of progress: validating nothing is a
		// success with zero blocks.
		if strings.TrimSpace(next) == "" {
			out.Verdict = Success
			out.Residue = ""
			break
		}
		if len(matches) == 0 {
			out.Verdict = Failure
			out.Residue = next
			break
		}
		trace = next
	}

	slog.Info("reduction finished",
		"verdict", out.Verdict.String(),
		"invariants", out.Invariants,
		"passes", len(out.Passes))
	return out
}
