// Package petri models the travel-agency place/transition net whose firing
// language the rest of the toolchain produces and validates.
//
// Net is a plain incidence-matrix net: firing applies the state equation
// M' = M + W*s and refuses any firing that would drive a place negative or
// break a declared place invariant. The net is pure state; it knows nothing
// about time or scheduling, which belong to the simulator.
//
// Agency constructs the concrete net: 15 places, 12 transitions, five
// clients cycling through entry, one of two booking agents, a payment that
// is either confirmed or cancelled, and exit. Its four transition
// invariants are the cycles a single client can close, and they are, path
// for path, the four routes through the block pattern the validator strips.
// CountCompletions replays a firing-count vector against those invariants,
// which gives an invariant total independent of the reduction loop.
package petri
