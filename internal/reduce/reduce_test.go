package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SingleBlockWithMaterial(t *testing.T) {
	// One complete block around real material. The block is stripped in pass
	// one; the material survives and can never match, so the run fails with
	// the material as residue.
	out := Run("T0 a T1 b T3 c T4 d T7 e T8 f T11")

	assert.Equal(t, Failure, out.Verdict)
	assert.Equal(t, 1, out.Invariants)
	assert.Equal(t, "a b c d e f ", out.Residue)

	require.Len(t, out.Passes, 2)
	assert.Equal(t, Pass{Seq: 1, Matches: 1, Residue: "a b c d e f "}, out.Passes[0])
	assert.Equal(t, Pass{Seq: 2, Matches: 0, Residue: "a b c d e f "}, out.Passes[1])
}

func TestRun_TwoBlocksOnePass(t *testing.T) {
	// Two back-to-back blocks with nothing between tokens reduce in a single
	// pass: both matches are found against the same pass input.
	out := Run("T0 T1 T3 T4 T7 T8 T11 T0 T1 T2 T5 T6 T9 T10 T11")

	assert.Equal(t, Success, out.Verdict)
	assert.Equal(t, 2, out.Invariants)
	assert.Equal(t, "", out.Residue)
	require.Len(t, out.Passes, 1)
	assert.Equal(t, 2, out.Passes[0].Matches)
	assert.Equal(t, [4]int{1, 0, 0, 1}, [4]int(out.Paths))
}

func TestRun_UnknownTokenFailsWithVerbatimResidue(t *testing.T) {
	out := Run("T0 a T1 b T99 garbage")

	assert.Equal(t, Failure, out.Verdict)
	assert.Equal(t, 0, out.Invariants)
	assert.Equal(t, "T0 a T1 b T99 garbage", out.Residue)
	assert.Len(t, out.Passes, 1)
}

func TestRun_EmptyInputIsSuccess(t *testing.T) {
	tests := []struct {
		name  string
		trace string
	}{
		{name: "empty string", trace: ""},
		{name: "whitespace only", trace: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Run(tt.trace)

			// Emptiness is checked before progress: zero matches on an
			// already-empty trace is a successful validation of zero blocks.
			assert.Equal(t, Success, out.Verdict)
			assert.Equal(t, 0, out.Invariants)
			assert.Equal(t, "", out.Residue)
			assert.Len(t, out.Passes, 1)
		})
	}
}

func TestRun_InterleavedBlocksTakeMultiplePasses(t *testing.T) {
	// Fully interleaved pair: pass one peels the outer block whose gaps
	// captured the inner one's tokens, pass two consumes what emerged.
	out := Run("T0 T0 T1 T1 T3 T3 T4 T4 T7 T7 T8 T8 T11 T11 ")

	assert.Equal(t, Success, out.Verdict)
	assert.Equal(t, 2, out.Invariants)
	require.Len(t, out.Passes, 2)
	assert.Equal(t, 1, out.Passes[0].Matches)
	assert.Equal(t, "T0 T1 T3 T4 T7 T8 T11 ", out.Passes[0].Residue)
	assert.Equal(t, 1, out.Passes[1].Matches)
	assert.Equal(t, "", out.Passes[1].Residue)
}

func TestRun_StragglerTailFails(t *testing.T) {
	// A complete block followed by a client that entered but never finished.
	out := Run("T0 T1 T3 T4 T7 T8 T11 T0 T1 ")

	assert.Equal(t, Failure, out.Verdict)
	assert.Equal(t, 1, out.Invariants)
	assert.Equal(t, "T0 T1 ", out.Residue)
}

func TestRun_MonotonicShrinkage(t *testing.T) {
	out := Run("T0 T0 T0 T1 T1 T1 T3 T3 T3 T4 T4 T4 T7 T7 T7 T8 T8 T8 T11 T11 T11 ")

	assert.Equal(t, Success, out.Verdict)
	assert.Equal(t, 3, out.Invariants)

	prev := len("T0 T0 T0 T1 T1 T1 T3 T3 T3 T4 T4 T4 T7 T7 T7 T8 T8 T8 T11 T11 T11 ")
	for _, p := range out.Passes {
		if p.Matches > 0 {
			assert.Less(t, len(p.Residue), prev, "pass %d must shrink the trace", p.Seq)
		}
		prev = len(p.Residue)
	}
}

func TestRun_CountConservation(t *testing.T) {
	out := Run("T0 T0 T1 T1 T2 T3 T5 T4 T6 T7 T9 T8 T10 T11 T11 ")

	sum := 0
	for _, p := range out.Passes {
		sum += p.Matches
	}
	assert.Equal(t, out.Invariants, sum)

	pathSum := 0
	for _, n := range out.Paths {
		pathSum += n
	}
	assert.Equal(t, out.Invariants, pathSum)
}

func TestRun_TerminalStatesAreIdempotent(t *testing.T) {
	t.Run("success residue stays success", func(t *testing.T) {
		first := Run("T0 T1 T2 T5 T7 T8 T11 ")
		require.Equal(t, Success, first.Verdict)

		again := Run(first.Residue)
		assert.Equal(t, Success, again.Verdict)
	})

	t.Run("failure residue stays failure", func(t *testing.T) {
		first := Run("T0 a T1 b T99 garbage")
		require.Equal(t, Failure, first.Verdict)

		again := Run(first.Residue)
		assert.Equal(t, Failure, again.Verdict)
		assert.Equal(t, first.Residue, again.Residue)
	})
}

func TestRun_ObserverSeesEveryPass(t *testing.T) {
	var seen []Pass
	out := Run("T0 T0 T1 T1 T3 T3 T4 T4 T7 T7 T8 T8 T11 T11 ",
		WithObserver(func(p Pass) { seen = append(seen, p) }))

	assert.Equal(t, out.Passes, seen)
}
