package tracelog

import (
	"fmt"
	"strings"

	"github.com/lmoretti/petrivet/internal/petri"
)

// Report is the run summary written next to the raw trace: the firing line
// first, then per-transition counts and the completed-invariant tally.
type Report struct {
	Sequence    []int
	Firings     []int
	Completions []int
	Invariants  []petri.TransitionInvariant
}

// Render lays the report out as text. The first line is the verbatim
// firing line, so ReadTrace can recover it from the written file.
func (r Report) Render() string {
	var b strings.Builder
	b.WriteString(FormatSequence(r.Sequence))
	b.WriteString("\n\nFirings by transition:\n")
	for t, n := range r.Firings {
		fmt.Fprintf(&b, "  T%d: %d\n", t, n)
	}

	b.WriteString("\nCompleted invariants:\n")
	total := 0
	for i, inv := range r.Invariants {
		labels := make([]string, len(inv))
		for j, t := range inv {
			labels[j] = fmt.Sprintf("T%d", t)
		}
		count := 0
		if i < len(r.Completions) {
			count = r.Completions[i]
		}
		total += count
		fmt.Fprintf(&b, "  [%s]: %d\n", strings.Join(labels, " "), count)
	}
	fmt.Fprintf(&b, "Total completed: %d\n", total)
	return b.String()
}
