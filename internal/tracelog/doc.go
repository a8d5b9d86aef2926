// Package tracelog reads and writes the artifacts of a simulation run: the
// firing line, the run report, and the content-addressed fingerprint that
// identifies a trace in storage.
//
// The firing line is the wire format shared with the reducer: every fired
// transition as "T<index>" followed by a single space, in firing order.
// The report wraps that line with per-transition counts and the completed
// invariant tally, which is what operators actually read.
package tracelog
