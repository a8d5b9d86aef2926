package petri

import (
	"fmt"
	"slices"
)

// PlaceInvariant is a token-conservation law: the markings of Places must
// always sum to Sum.
type PlaceInvariant struct {
	Places []int
	Sum    int
}

// TransitionInvariant is a set of transitions that, fired once each, returns
// the net to the marking it started from. One completed invariant is one
// client's full trip.
type TransitionInvariant []int

// InvariantViolationError reports a broken place invariant together with the
// marking sum that was found.
type InvariantViolationError struct {
	Invariant PlaceInvariant
	Got       int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("place invariant %v: tokens sum to %d, want %d", e.Invariant.Places, e.Got, e.Invariant.Sum)
}

// CheckPlaceInvariants verifies every conservation set against a marking and
// returns an InvariantViolationError for the first broken one.
func CheckPlaceInvariants(marking []int, invs []PlaceInvariant) error {
	for _, inv := range invs {
		sum := 0
		for _, p := range inv.Places {
			sum += marking[p]
		}
		if sum != inv.Sum {
			return &InvariantViolationError{Invariant: inv, Got: sum}
		}
	}
	return nil
}

// CountCompletions distributes a per-transition firing-count vector over the
// given transition invariants and reports how many times each one completed.
//
// The assignment is round-robin: every round, each invariant in declaration
// order takes one completion if all its member counts are still positive.
// Rounds repeat until none can take. The result does not depend on firing
// order, only on the counts, which makes it an independent cross-check of
// the reduction loop's block total.
func CountCompletions(firings []int, invs []TransitionInvariant) []int {
	remaining := slices.Clone(firings)
	counts := make([]int, len(invs))
	for {
		changed := false
		for i, inv := range invs {
			if !covers(remaining, inv) {
				continue
			}
			for _, t := range inv {
				remaining[t]--
			}
			counts[i]++
			changed = true
		}
		if !changed {
			return counts
		}
	}
}

func covers(remaining []int, inv TransitionInvariant) bool {
	for _, t := range inv {
		if remaining[t] <= 0 {
			return false
		}
	}
	return true
}
