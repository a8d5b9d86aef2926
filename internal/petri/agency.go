package petri

import (
	"fmt"
	"time"
)

// Transition indexes of the agency net. The trace labels T0..T11 are these
// indexes with a "T" prefix.
const (
	TArrive         = 0  // client takes the entry slot
	TAdmit          = 1  // client is inside, joins the waiting room
	TTakeSuperior   = 2  // superior agent takes the booking
	TTakeRegular    = 3  // regular agent takes the booking
	TFinishRegular  = 4  // regular agent finishes the booking
	TFinishSuperior = 5  // superior agent finishes the booking
	TConfirm        = 6  // client decides to pay
	TCancel         = 7  // client decides to cancel
	TCancelDone     = 8  // cancellation settled, desk released
	TProcess        = 9  // payment processed
	TConfirmDone    = 10 // confirmation settled, desk released
	TExit           = 11 // client leaves, returns to the idle pool
)

// NumTransitions is the transition count of the agency net.
const NumTransitions = 12

// NumPlaces is the place count of the agency net.
const NumPlaces = 15

// agencyIncidence is the incidence matrix, one row per place in the order
// of agencyPlaceNames, one column per transition. Negative entries consume,
// positive produce.
var agencyIncidence = [][]int{
	{-1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
	{-1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{1, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 1, -1, -1, 0, 0, 0, 0, 0, 0, 0, 0},
	{-1, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 1, 0, 0, -1, 0, 0, 0, 0, 0, 0},
	{0, 0, -1, 0, 0, 1, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, -1, 1, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, -1, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 1, -1, -1, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, -1, -1, 1, 0, 1, 0},
	{0, 0, 0, 0, 0, 0, 1, 0, 0, -1, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 1, -1, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, -1, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, -1},
}

// agencyInitial is the starting marking: five idle clients, one entry slot,
// room for five inside, both agents and the payment desk free.
var agencyInitial = []int{5, 1, 0, 0, 5, 0, 1, 1, 0, 0, 1, 0, 0, 0, 0}

var agencyPlaceNames = []string{
	"idle clients",
	"entry free",
	"entering",
	"waiting for agent",
	"agency capacity",
	"with superior agent",
	"superior agent free",
	"regular agent free",
	"with regular agent",
	"awaiting payment decision",
	"payment desk free",
	"confirming payment",
	"cancelling payment",
	"processing payment",
	"leaving",
}

var agencyTransitionNames = []string{
	"arrive",
	"admit",
	"superior agent takes booking",
	"regular agent takes booking",
	"regular agent finishes",
	"superior agent finishes",
	"confirm payment",
	"cancel payment",
	"cancellation settled",
	"process payment",
	"confirmation settled",
	"exit",
}

// agencyPlaceInvariants are the token-conservation laws of the net: the
// entry slot, the capacity of the building, each agent, the payment desk,
// and the client population.
var agencyPlaceInvariants = []PlaceInvariant{
	{Places: []int{1, 2}, Sum: 1},
	{Places: []int{2, 3, 4}, Sum: 5},
	{Places: []int{5, 6}, Sum: 1},
	{Places: []int{7, 8}, Sum: 1},
	{Places: []int{10, 11, 12, 13}, Sum: 1},
	{Places: []int{0, 2, 3, 5, 8, 9, 11, 12, 13, 14}, Sum: 5},
}

// agencyTransitionInvariants are the four cycles a client can close. Their
// declaration order matches the route order of the block pattern: regular
// then superior agent, cancelled then confirmed payment.
var agencyTransitionInvariants = []TransitionInvariant{
	{TArrive, TAdmit, TTakeRegular, TFinishRegular, TCancel, TCancelDone, TExit},
	{TArrive, TAdmit, TTakeRegular, TFinishRegular, TConfirm, TProcess, TConfirmDone, TExit},
	{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TCancel, TCancelDone, TExit},
	{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TConfirm, TProcess, TConfirmDone, TExit},
}

// Agency constructs a fresh travel-agency net at its initial marking.
func Agency() *Net {
	n, err := New(agencyIncidence, agencyInitial,
		WithNames(agencyPlaceNames, agencyTransitionNames),
		WithPlaceInvariants(agencyPlaceInvariants))
	if err != nil {
		panic(fmt.Sprintf("petri: agency net: %v", err))
	}
	return n
}

// AgencyInvariants returns the four transition invariants in route order.
func AgencyInvariants() []TransitionInvariant {
	out := make([]TransitionInvariant, len(agencyTransitionInvariants))
	for i, inv := range agencyTransitionInvariants {
		out[i] = append(TransitionInvariant(nil), inv...)
	}
	return out
}

// TimedTransitions are the transitions that carry a sensitization window.
var TimedTransitions = []int{TAdmit, TFinishRegular, TFinishSuperior, TCancelDone, TProcess, TConfirmDone}

// Timing returns the minimum sensitization times by transition index for a
// named profile. The zero profile "none" removes all timing constraints.
func Timing(profile string) ([]time.Duration, error) {
	switch profile {
	case "none", "":
		return make([]time.Duration, NumTransitions), nil
	case "fast":
		return alphas(0, 3, 0, 0, 5, 5, 0, 0, 7, 3, 3, 0), nil
	case "medium":
		return alphas(0, 10, 0, 0, 15, 15, 0, 0, 20, 10, 12, 0), nil
	case "slow":
		return alphas(0, 30, 0, 0, 50, 50, 0, 0, 70, 30, 35, 0), nil
	}
	return nil, fmt.Errorf("unknown timing profile %q", profile)
}

func alphas(ms ...int) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, v := range ms {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}
