// Package sim drives the agency net to produce firing traces.
//
// The scheduler is strictly sequential and runs on a virtual clock. Each
// step computes the enabled transitions, narrows them to the ones whose
// sensitization window has elapsed, asks the policy to pick one, and fires
// it. When every enabled transition is still inside its window, the clock
// jumps straight to the earliest eligibility instant; nothing ever sleeps.
// Two runs with the same policy, timing, and seed produce byte-identical
// traces.
//
// Sensitization timestamps follow the net: whenever a firing flips a
// transition between enabled and disabled, that transition's stamp is reset
// to the current virtual time, and its window starts over.
//
// A run fires until the exit transition has fired the target number of
// times. By default the scheduler then bars the entry transition and keeps
// going until every in-flight client has left and the marking is back at
// the initial one, which yields a trace of complete blocks only. With
// draining off the run stops at the target immediately, leaving whatever
// partial trips were in progress in the trace.
package sim
