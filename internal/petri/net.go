package petri

import (
	"fmt"
	"slices"
)

// ErrNotEnabled is returned by Fire for a transition whose input places
// cannot cover it under the current marking.
var ErrNotEnabled = fmt.Errorf("transition not enabled")

// Net is a place/transition net with an integer marking. All mutation goes
// through Fire; accessors return copies so callers cannot corrupt state.
type Net struct {
	incidence   [][]int // rows = places, cols = transitions
	marking     []int
	initial     []int
	firings     []int
	sequence    []int
	placeNames  []string
	transNames  []string
	invariants  []PlaceInvariant
}

// Option configures a Net at construction.
type Option func(*Net)

// WithNames attaches human-readable place and transition names, used by
// reports. Lengths must match the net dimensions; New validates them.
func WithNames(places, transitions []string) Option {
	return func(n *Net) {
		n.placeNames = places
		n.transNames = transitions
	}
}

// WithPlaceInvariants declares token-conservation sets checked after every
// firing.
func WithPlaceInvariants(invs []PlaceInvariant) Option {
	return func(n *Net) {
		n.invariants = invs
	}
}

// New builds a net from an incidence matrix and an initial marking.
// The matrix is row-per-place; every row must have the same number of
// transition columns.
func New(incidence [][]int, initial []int, opts ...Option) (*Net, error) {
	if len(incidence) == 0 {
		return nil, fmt.Errorf("petri: empty incidence matrix")
	}
	if len(incidence) != len(initial) {
		return nil, fmt.Errorf("petri: %d incidence rows for %d places", len(incidence), len(initial))
	}
	cols := len(incidence[0])
	for p, row := range incidence {
		if len(row) != cols {
			return nil, fmt.Errorf("petri: row %d has %d columns, want %d", p, len(row), cols)
		}
	}
	for p, tokens := range initial {
		if tokens < 0 {
			return nil, fmt.Errorf("petri: negative initial marking at place %d", p)
		}
	}

	n := &Net{
		incidence: incidence,
		marking:   slices.Clone(initial),
		initial:   slices.Clone(initial),
		firings:   make([]int, cols),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.placeNames != nil && len(n.placeNames) != len(initial) {
		return nil, fmt.Errorf("petri: %d place names for %d places", len(n.placeNames), len(initial))
	}
	if n.transNames != nil && len(n.transNames) != cols {
		return nil, fmt.Errorf("petri: %d transition names for %d transitions", len(n.transNames), cols)
	}
	for _, inv := range n.invariants {
		for _, p := range inv.Places {
			if p < 0 || p >= len(initial) {
				return nil, fmt.Errorf("petri: place invariant references place %d", p)
			}
		}
	}
	if err := CheckPlaceInvariants(n.marking, n.invariants); err != nil {
		return nil, fmt.Errorf("petri: initial marking: %w", err)
	}
	return n, nil
}

// NumPlaces returns the place count.
func (n *Net) NumPlaces() int { return len(n.marking) }

// NumTransitions returns the transition count.
func (n *Net) NumTransitions() int { return len(n.firings) }

// PlaceName returns the name of place p, or a positional fallback.
func (n *Net) PlaceName(p int) string {
	if n.placeNames != nil {
		return n.placeNames[p]
	}
	return fmt.Sprintf("P%d", p)
}

// TransitionName returns the name of transition t, or a positional fallback.
func (n *Net) TransitionName(t int) string {
	if n.transNames != nil {
		return n.transNames[t]
	}
	return fmt.Sprintf("T%d", t)
}

// Marking returns a copy of the current marking.
func (n *Net) Marking() []int { return slices.Clone(n.marking) }

// InitialMarking returns a copy of the marking the net started from.
func (n *Net) InitialMarking() []int { return slices.Clone(n.initial) }

// Firings returns a copy of the per-transition firing counts.
func (n *Net) Firings() []int { return slices.Clone(n.firings) }

// Sequence returns a copy of the firing order so far.
func (n *Net) Sequence() []int { return slices.Clone(n.sequence) }

// AtInitial reports whether the current marking equals the initial one.
func (n *Net) AtInitial() bool { return slices.Equal(n.marking, n.initial) }

// PlaceInvariants returns the declared conservation sets.
func (n *Net) PlaceInvariants() []PlaceInvariant { return slices.Clone(n.invariants) }

// CanFire reports whether transition t is enabled: applying its incidence
// column leaves every place non-negative.
func (n *Net) CanFire(t int) bool {
	if t < 0 || t >= n.NumTransitions() {
		return false
	}
	for p := range n.marking {
		if n.marking[p]+n.incidence[p][t] < 0 {
			return false
		}
	}
	return true
}

// Enabled returns the enabled transitions as a vector aligned with the
// incidence columns.
func (n *Net) Enabled() []bool {
	out := make([]bool, n.NumTransitions())
	for t := range out {
		out[t] = n.CanFire(t)
	}
	return out
}

// Fire applies the state equation for transition t. The new marking is
// computed and invariant-checked before anything is committed, so a failed
// firing leaves the net untouched.
func (n *Net) Fire(t int) error {
	if t < 0 || t >= n.NumTransitions() {
		return fmt.Errorf("fire: transition %d out of range", t)
	}
	next := make([]int, len(n.marking))
	for p := range n.marking {
		next[p] = n.marking[p] + n.incidence[p][t]
		if next[p] < 0 {
			return fmt.Errorf("fire %s: %w", n.TransitionName(t), ErrNotEnabled)
		}
	}
	if err := CheckPlaceInvariants(next, n.invariants); err != nil {
		return fmt.Errorf("fire %s: %w", n.TransitionName(t), err)
	}

	n.marking = next
	n.firings[t]++
	n.sequence = append(n.sequence, t)
	return nil
}
