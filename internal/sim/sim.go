package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmoretti/petrivet/internal/petri"
)

// DefaultExitTarget is the number of completed visits a standard run aims
// for before winding down.
const DefaultExitTarget = 186

// ErrDeadlock reports a marking with no enabled transition before the run
// reached its exit target.
var ErrDeadlock = errors.New("no enabled transition")

// Simulator drives the travel-agency net step by step on a virtual clock.
// Each step picks one fireable transition through the configured policy and
// fires it; the clock only advances when every candidate is still inside
// its firing delay.
type Simulator struct {
	net    *petri.Net
	policy Policy
	alphas []time.Duration
	target int
	drain  bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithNet substitutes a prepared net instance. Callers keep their handle,
// so the marking can be inspected after the run.
func WithNet(n *petri.Net) Option {
	return func(s *Simulator) { s.net = n }
}

// WithPolicy sets the conflict-resolution policy.
func WithPolicy(p Policy) Option {
	return func(s *Simulator) { s.policy = p }
}

// WithTiming sets the per-transition firing delays. The vector must have
// one entry per transition; a zero entry makes the transition immediate.
func WithTiming(alphas []time.Duration) Option {
	return func(s *Simulator) {
		s.alphas = make([]time.Duration, len(alphas))
		copy(s.alphas, alphas)
	}
}

// WithExitTarget sets how many clients must leave before the run winds
// down.
func WithExitTarget(n int) Option {
	return func(s *Simulator) { s.target = n }
}

// WithDrain controls what happens once the exit target is reached. When
// on, arrivals stop and the run continues until every client in flight has
// left and the net is back at its initial marking. When off, the run stops
// at the target-th exit, leaving any in-flight clients mid-visit.
func WithDrain(on bool) Option {
	return func(s *Simulator) { s.drain = on }
}

// Result captures a finished run.
type Result struct {
	// Sequence lists the fired transitions in order.
	Sequence []int
	// Firings counts fires per transition.
	Firings []int
	// Completions counts full client visits per route.
	Completions []int
	// Marking is the final token distribution.
	Marking []int
	// Elapsed is the virtual time the run covered.
	Elapsed time.Duration
	// Drained reports whether the net ended back at its initial marking.
	Drained bool
}

// New builds a Simulator over a fresh agency net with the prioritized
// policy, immediate transitions, drain mode on, and the default exit
// target.
func New(opts ...Option) (*Simulator, error) {
	s := &Simulator{
		net:    petri.Agency(),
		policy: NewPrioritized(),
		target: DefaultExitTarget,
		drain:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.net == nil {
		return nil, errors.New("nil net")
	}
	if s.policy == nil {
		return nil, errors.New("nil policy")
	}
	if s.target < 0 {
		return nil, fmt.Errorf("exit target %d is negative", s.target)
	}
	if s.alphas == nil {
		s.alphas = make([]time.Duration, s.net.NumTransitions())
	}
	if len(s.alphas) != s.net.NumTransitions() {
		return nil, fmt.Errorf("timing vector has %d entries, net has %d transitions",
			len(s.alphas), s.net.NumTransitions())
	}
	return s, nil
}

// Run executes the simulation to completion and reports the outcome. It
// advances the underlying net, so a Simulator is good for one run.
func (s *Simulator) Run() (*Result, error) {
	var (
		now    time.Duration
		stamps = make([]time.Duration, s.net.NumTransitions())
		exits  int
	)
	enabled := s.net.Enabled()
	for {
		if !s.drain && exits >= s.target {
			break
		}
		// Once the target is met in drain mode, arrivals stop and the
		// clients already inside work their way out.
		barArrival := s.drain && exits >= s.target
		candidates := 0
		for t, ok := range enabled {
			if ok && !(barArrival && t == petri.TArrive) {
				candidates++
			}
		}
		if candidates == 0 {
			if barArrival && s.net.AtInitial() {
				break
			}
			return nil, fmt.Errorf("after %d firings: %w", len(s.net.Sequence()), ErrDeadlock)
		}

		eligible := make([]bool, len(enabled))
		ready := 0
		mark := func() {
			for t, ok := range enabled {
				if !ok || (barArrival && t == petri.TArrive) {
					continue
				}
				if now >= stamps[t]+s.alphas[t] {
					eligible[t] = true
					ready++
				}
			}
		}
		mark()
		if ready == 0 {
			// Everything fireable is still inside its delay; jump the
			// clock to the earliest window.
			next := time.Duration(-1)
			for t, ok := range enabled {
				if !ok || (barArrival && t == petri.TArrive) {
					continue
				}
				if due := stamps[t] + s.alphas[t]; next < 0 || due < next {
					next = due
				}
			}
			now = next
			mark()
		}

		pick := s.policy.Pick(eligible, s.net.Firings())
		if pick < 0 || pick >= len(eligible) || !eligible[pick] {
			return nil, fmt.Errorf("policy picked ineligible transition %d", pick)
		}
		if err := s.net.Fire(pick); err != nil {
			return nil, fmt.Errorf("fire %s: %w", s.net.TransitionName(pick), err)
		}
		slog.Debug("fired", "transition", s.net.TransitionName(pick), "clock", now)

		// A delay runs from the moment its transition becomes fireable, so
		// transitions flipping on get stamped with the current clock.
		after := s.net.Enabled()
		for t, ok := range after {
			if ok && !enabled[t] {
				stamps[t] = now
			}
		}
		enabled = after
		if pick == petri.TExit {
			exits++
		}
	}

	firings := s.net.Firings()
	res := &Result{
		Sequence:    s.net.Sequence(),
		Firings:     firings,
		Completions: petri.CountCompletions(firings, petri.AgencyInvariants()),
		Marking:     s.net.Marking(),
		Elapsed:     now,
		Drained:     s.drain && s.net.AtInitial(),
	}
	slog.Info("simulation finished",
		"firings", len(res.Sequence),
		"exits", exits,
		"elapsed", res.Elapsed,
		"drained", res.Drained)
	return res, nil
}
