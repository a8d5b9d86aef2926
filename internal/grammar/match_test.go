package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind_AllFourPaths(t *testing.T) {
	tests := []struct {
		name      string
		trace     string
		spans     []string
		pathIndex int
	}{
		{
			name:      "regular agent, cancelled payment",
			trace:     "T0 a T1 b T3 c T4 d T7 e T8 f T11 ",
			spans:     []string{"a ", "b ", "c ", "d ", "e ", "f "},
			pathIndex: 0,
		},
		{
			name:      "regular agent, confirmed payment",
			trace:     "T0 a T1 b T3 c T4 d T6 e T9 f T10 g T11 ",
			spans:     []string{"a ", "b ", "c ", "d ", "e ", "f ", "g "},
			pathIndex: 1,
		},
		{
			name:      "superior agent, cancelled payment",
			trace:     "T0 a T1 b T2 c T5 d T7 e T8 f T11 ",
			spans:     []string{"a ", "b ", "c ", "d ", "e ", "f "},
			pathIndex: 2,
		},
		{
			name:      "superior agent, confirmed payment",
			trace:     "T0 a T1 b T2 c T5 d T6 e T9 f T10 g T11 ",
			spans:     []string{"a ", "b ", "c ", "d ", "e ", "f ", "g "},
			pathIndex: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Find(tt.trace, 0)
			require.True(t, ok, "expected a complete block")

			assert.Equal(t, 0, m.Start)
			assert.Equal(t, len(tt.trace), m.End, "match should consume the whole trace")
			assert.Equal(t, tt.spans, m.Spans())
			assert.Equal(t, tt.pathIndex, m.PathIndex())
			assert.Equal(t, strings.Join(tt.spans, ""), m.Residue())
		})
	}
}

func TestFind_ClosingTokenAtEndOfInput(t *testing.T) {
	// No trailing separator after the closing token.
	m, ok := Find("T0 a T1 b T3 c T4 d T7 e T8 f T11", 0)
	require.True(t, ok)
	assert.Equal(t, len("T0 a T1 b T3 c T4 d T7 e T8 f T11"), m.End)
	assert.Equal(t, "a b c d e f ", m.Residue())
}

func TestFind_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		trace string
	}{
		{name: "empty input", trace: ""},
		{name: "material only", trace: "completely arbitrary material"},
		{name: "partial block", trace: "T0 x T1 y"},
		{name: "opening token missing", trace: "T1 a T3 b T4 c T7 d T8 e T11 "},
		{name: "middle branch mixed", trace: "T0 a T1 b T3 c T5 d T7 e T8 f T11 "},
		{name: "tail truncated", trace: "T0 a T1 b T3 c T4 d T6 e T9 f T11 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Find(tt.trace, 0)
			assert.False(t, ok)
		})
	}
}

func TestFind_TokenIdentity(t *testing.T) {
	// "T11" and "T10" must not be readable as "T1"; the trace below has no
	// real T1 and therefore no block.
	_, ok := Find("T0 a T11 b T10 c", 0)
	assert.False(t, ok)

	// A real T1 after a T10 still closes normally.
	m, ok := Find("T0 a T1 b T3 c T4 d T6 e T9 f T10 g T11 ", 0)
	require.True(t, ok)
	assert.Equal(t, 1, m.PathIndex())
}

func TestFind_LeftBoundaryNotRequired(t *testing.T) {
	// Structural literals are recognized at any byte offset; only the
	// trailing separator is part of the literal.
	m, ok := Find("xT0 a T1 b T3 c T4 d T7 e T8 f T11 ", 0)
	require.True(t, ok)
	assert.Equal(t, 1, m.Start)
}

func TestFind_FromOffset(t *testing.T) {
	trace := "T0 a T1 b T3 c T4 d T7 e T8 f T11 T0 g T1 h T3 i T4 j T7 k T8 l T11 "

	first, ok := Find(trace, 0)
	require.True(t, ok)

	second, ok := Find(trace, first.End)
	require.True(t, ok)
	assert.Equal(t, first.End, second.Start)
	assert.Equal(t, []string{"g ", "h ", "i ", "j ", "k ", "l "}, second.Spans())

	_, ok = Find(trace, second.End)
	assert.False(t, ok)
}

func TestFind_LazyClosing(t *testing.T) {
	// Two closing tokens: the match must stop at the first one.
	trace := "T0 T1 T3 T4 T7 T8 T11 T11 "
	m, ok := Find(trace, 0)
	require.True(t, ok)
	assert.Equal(t, len("T0 T1 T3 T4 T7 T8 T11 "), m.End)
	assert.Equal(t, "", m.Residue())
}

func TestReduce_SingleBlock(t *testing.T) {
	out, matches := Reduce("T0 a T1 b T3 c T4 d T7 e T8 f T11")
	assert.Len(t, matches, 1)
	assert.Equal(t, "a b c d e f ", out)
}

func TestReduce_TwoAdjacentBlocks(t *testing.T) {
	trace := "T0 a T1 b T3 c T4 d T7 e T8 f T11 T0 g T1 h T2 i T5 j T6 k T9 l T10 m T11 "

	out, matches := Reduce(trace)
	require.Len(t, matches, 2)
	assert.Equal(t, "a b c d e f g h i j k l m ", out)
	assert.Equal(t, 0, matches[0].PathIndex())
	assert.Equal(t, 3, matches[1].PathIndex())
}

func TestReduce_UnmatchedTextCopiedVerbatim(t *testing.T) {
	trace := "noise T0 a T1 b T3 c T4 d T7 e T8 f T11 tail"

	out, matches := Reduce(trace)
	require.Len(t, matches, 1)
	assert.Equal(t, "noise a b c d e f tail", out)
}

func TestReduce_NoMatchReturnsInputUnchanged(t *testing.T) {
	out, matches := Reduce("T0 orphan T1 opening")
	assert.Nil(t, matches)
	assert.Equal(t, "T0 orphan T1 opening", out)
}

func TestReduce_InterleavedBlocksNeedSecondPass(t *testing.T) {
	// Two fully interleaved blocks: the outer match's gaps swallow the inner
	// block's tokens, so one pass peels one block and leaves the other whole.
	trace := "T0 T0 T1 T1 T3 T3 T4 T4 T7 T7 T8 T8 T11 T11 "

	out, matches := Reduce(trace)
	require.Len(t, matches, 1)
	assert.Equal(t, "T0 T1 T3 T4 T7 T8 T11 ", out)

	out, matches = Reduce(out)
	require.Len(t, matches, 1)
	assert.Equal(t, "", out)
}

func TestReduce_OutputNeverGrows(t *testing.T) {
	traces := []string{
		"",
		"material",
		"T0 a T1 b T3 c T4 d T7 e T8 f T11 ",
		"T0 T0 T1 T1 T2 T2 T5 T5 T6 T6 T9 T9 T10 T10 T11 T11 ",
		"T0 a T1 b T3 c T4 d T7 e T8 f T11 leftover T0 x T1 y",
	}

	for _, trace := range traces {
		out, matches := Reduce(trace)
		if len(matches) > 0 {
			assert.Less(t, len(out), len(trace))
		} else {
			assert.Equal(t, trace, out)
		}
	}
}

func TestLitAt(t *testing.T) {
	tests := []struct {
		name string
		s    string
		pos  int
		tok  string
		n    int
		ok   bool
	}{
		{name: "token with separator", s: "T0 rest", pos: 0, tok: "T0", n: 3, ok: true},
		{name: "token at end of input", s: "tail T11", pos: 5, tok: "T11", n: 3, ok: true},
		{name: "prefix of longer token", s: "T10 ", pos: 0, tok: "T1", n: 0, ok: false},
		{name: "no separator", s: "T0x", pos: 0, tok: "T0", n: 0, ok: false},
		{name: "past end", s: "T", pos: 0, tok: "T0", n: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := litAt(tt.s, tt.pos, tt.tok)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.n, n)
		})
	}
}
