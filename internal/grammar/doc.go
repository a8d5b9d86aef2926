// Package grammar defines the transition-invariant block pattern and the
// matcher that strips complete blocks out of a firing trace.
//
// A trace is one line of text: structural tokens T0..T11 with arbitrary
// material between them. A complete block is one client's trip through the
// net, entry to exit:
//
//	Block := "T0" gap "T1" gap
//	         ( "T3" gap "T4" gap | "T2" gap "T5" gap )
//	         ( "T7" gap "T8" gap | "T6" gap "T9" gap "T10" gap )
//	         "T11"
//
// Each gap is a lazy span of arbitrary material, captured. Replacing a match
// with the concatenation of its captured gaps deletes the block's structural
// tokens while preserving everything that sat between them, in order. The
// gaps of interleaved blocks swallow each other's tokens, which is why
// reduction takes multiple passes over a concurrent trace.
//
// MATCHING RULES:
//
// Structural literals are recognized at the byte level: the token text
// followed by a single space separator, or the bare token at end of input.
// "T1" never matches inside "T10" or "T11" because the separator is part of
// the literal. Material is opaque and never reinterpreted.
//
// The matcher is a small backtracking recursive descent over the fixed
// element sequence, not a regex engine:
//   - candidate starts are occurrences of the opening literal, left to right;
//     the reported match is the leftmost start where the whole block matches
//   - gaps try lengths shortest-first and extend on continuation failure
//   - alternatives are ordered and exclusive: the first branch that lets the
//     rest of the block match wins
//   - matches never overlap; scanning resumes at the end of the previous
//     match, always against the same pass input
//
// The pattern is a fixed value. There is deliberately no pattern language,
// compiler, or tokenizer abstraction around it.
package grammar
