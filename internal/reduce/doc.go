// Package reduce runs the iterative reduction loop that decides whether a
// firing trace consists entirely of complete invariant blocks.
//
// Each pass hands the whole trace to the grammar, strips every block it
// finds, and carries the rewritten string into the next pass. Interleaved
// blocks shield each other inside captured gaps, so a concurrent trace
// typically needs several passes before it empties. The loop terminates on
// one of two conditions, checked in this order:
//
//  1. the trace is empty or whitespace-only: SUCCESS, with the cumulative
//     block count
//  2. a pass stripped nothing and text remains: FAILURE, with the count and
//     the leftover reported verbatim
//
// The order matters: an empty trace that matched nothing is a successful
// validation of zero blocks, not a failure.
//
// Termination needs no quota. Every productive pass strictly shrinks the
// trace and an unproductive pass exits, so the loop is bounded by the input
// length. The loop is a pure synchronous computation: no goroutines, no
// cancellation, no suspension between passes.
package reduce
