package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/lmoretti/petrivet/internal/petri"
)

// Policy resolves conflicts: given the eligible transitions of the current
// step and the firing counts so far, it picks the transition to fire.
// The scheduler guarantees at least one eligible entry.
type Policy interface {
	Pick(eligible []bool, firings []int) int
}

// Balanced picks the eligible transition with the fewest previous firings,
// lowest index on ties, keeping the load even across the net.
type Balanced struct{}

func (Balanced) Pick(eligible []bool, firings []int) int {
	best := -1
	for t, ok := range eligible {
		if !ok {
			continue
		}
		if best < 0 || firings[t] < firings[best] {
			best = t
		}
	}
	return best
}

// Prioritized steers the agency toward target service ratios: the superior
// agent should take SuperiorShare of the bookings and ConfirmShare of the
// payment decisions should confirm. Transitions outside those two conflicts
// fall back to a fixed preference order.
type Prioritized struct {
	SuperiorShare float64
	ConfirmShare  float64
}

// NewPrioritized returns the policy at its standard ratios: 75% superior
// agent, 80% confirmed payments.
func NewPrioritized() *Prioritized {
	return &Prioritized{SuperiorShare: 0.75, ConfirmShare: 0.80}
}

func (p *Prioritized) Pick(eligible []bool, firings []int) int {
	// Booking conflict: compare the superior agent's current share of takes
	// against its target.
	if eligible[petri.TTakeSuperior] || eligible[petri.TTakeRegular] {
		taken := firings[petri.TTakeSuperior] + firings[petri.TTakeRegular]
		if taken == 0 {
			taken = 1
		}
		share := float64(firings[petri.TTakeSuperior]) / float64(taken)
		if share <= p.SuperiorShare && eligible[petri.TTakeSuperior] {
			return petri.TTakeSuperior
		}
		if share > p.SuperiorShare && eligible[petri.TTakeRegular] {
			return petri.TTakeRegular
		}
	}

	// Payment conflict: same scheme for confirmations versus cancellations.
	if eligible[petri.TConfirm] || eligible[petri.TCancel] {
		decided := firings[petri.TConfirm] + firings[petri.TCancel]
		if decided == 0 {
			decided = 1
		}
		share := float64(firings[petri.TConfirm]) / float64(decided)
		if share <= p.ConfirmShare && eligible[petri.TConfirm] {
			return petri.TConfirm
		}
		if share > p.ConfirmShare && eligible[petri.TCancel] {
			return petri.TCancel
		}
	}

	// Everything else in fixed preference order.
	for _, t := range []int{petri.TArrive, petri.TAdmit, petri.TFinishRegular, petri.TFinishSuperior,
		petri.TCancelDone, petri.TProcess, petri.TConfirmDone, petri.TExit} {
		if eligible[t] {
			return t
		}
	}

	// A conflict transition whose ratio branch declined is still a valid
	// pick when nothing else is; take the first eligible one.
	for t, ok := range eligible {
		if ok {
			return t
		}
	}
	return -1
}

// Random picks uniformly among the eligible transitions from a seeded
// generator, for producing varied but reproducible traces.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random policy seeded deterministically.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (r *Random) Pick(eligible []bool, firings []int) int {
	var candidates []int
	for t, ok := range eligible {
		if ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[r.rng.IntN(len(candidates))]
}

// PolicyFor maps a config name to a policy. The seed only matters for
// "random".
func PolicyFor(name string, seed uint64) (Policy, error) {
	switch name {
	case "balanced":
		return Balanced{}, nil
	case "prioritized", "":
		return NewPrioritized(), nil
	case "random":
		return NewRandom(seed), nil
	}
	return nil, fmt.Errorf("unknown policy %q", name)
}
