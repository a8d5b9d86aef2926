package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoretti/petrivet/internal/petri"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{
			name:    "nil net",
			opts:    []Option{WithNet(nil)},
			wantErr: "nil net",
		},
		{
			name:    "nil policy",
			opts:    []Option{WithPolicy(nil)},
			wantErr: "nil policy",
		},
		{
			name:    "negative exit target",
			opts:    []Option{WithExitTarget(-1)},
			wantErr: "negative",
		},
		{
			name:    "timing vector length mismatch",
			opts:    []Option{WithTiming(make([]time.Duration, 3))},
			wantErr: "timing vector",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_DrainsBackToInitialMarking(t *testing.T) {
	s, err := New(WithExitTarget(3))
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.True(t, res.Drained)
	assert.Equal(t, petri.Agency().InitialMarking(), res.Marking)
	assert.GreaterOrEqual(t, res.Firings[petri.TExit], 3)
	assert.Equal(t, res.Firings[petri.TArrive], res.Firings[petri.TExit])

	completed := 0
	for _, c := range res.Completions {
		completed += c
	}
	assert.Equal(t, res.Firings[petri.TExit], completed)

	fired := 0
	for _, n := range res.Firings {
		fired += n
	}
	assert.Len(t, res.Sequence, fired)
}

func TestRun_NoDrainStopsAtTargetExit(t *testing.T) {
	s, err := New(WithExitTarget(5), WithDrain(false))
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.False(t, res.Drained)
	assert.Equal(t, 5, res.Firings[petri.TExit])
	require.NotEmpty(t, res.Sequence)
	assert.Equal(t, petri.TExit, res.Sequence[len(res.Sequence)-1])
}

func TestRun_ZeroTargetIsAnEmptyRun(t *testing.T) {
	s, err := New(WithExitTarget(0))
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.Empty(t, res.Sequence)
	assert.True(t, res.Drained)
	assert.Equal(t, time.Duration(0), res.Elapsed)
}

func TestRun_DefaultTargetCompletes(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.True(t, res.Drained)
	assert.GreaterOrEqual(t, res.Firings[petri.TExit], DefaultExitTarget)
	assert.Equal(t, petri.Agency().InitialMarking(), res.Marking)
}

func TestRun_PrioritizedFavorsSuperiorAgent(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	superior := res.Firings[petri.TTakeSuperior]
	regular := res.Firings[petri.TTakeRegular]
	require.Positive(t, superior+regular)
	assert.Greater(t, superior, regular)

	share := float64(superior) / float64(superior+regular)
	assert.Greater(t, share, 0.6)
	assert.Less(t, share, 0.9)
}

func TestRun_TimedRunAdvancesVirtualClock(t *testing.T) {
	alphas, err := petri.Timing("fast")
	require.NoError(t, err)

	s, err := New(WithExitTarget(2), WithTiming(alphas))
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.True(t, res.Drained)
	assert.GreaterOrEqual(t, res.Elapsed, 3*time.Millisecond)
}

func TestRun_DeterministicForSamePolicy(t *testing.T) {
	run := func() []int {
		s, err := New(WithExitTarget(8))
		require.NoError(t, err)
		res, err := s.Run()
		require.NoError(t, err)
		return res.Sequence
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)

	// The opening moves are forced: one client enters, and the superior
	// agent takes the first booking.
	require.GreaterOrEqual(t, len(first), 3)
	assert.Equal(t, []int{petri.TArrive, petri.TAdmit, petri.TTakeSuperior}, first[:3])
}

func TestRun_RandomSeedReproducible(t *testing.T) {
	run := func() []int {
		s, err := New(WithExitTarget(4), WithPolicy(NewRandom(7)))
		require.NoError(t, err)
		res, err := s.Run()
		require.NoError(t, err)
		return res.Sequence
	}

	assert.Equal(t, run(), run())
}

func TestRun_BalancedUsesBothAgents(t *testing.T) {
	s, err := New(WithExitTarget(6), WithPolicy(Balanced{}))
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)

	assert.True(t, res.Drained)
	assert.Positive(t, res.Firings[petri.TTakeSuperior])
	assert.Positive(t, res.Firings[petri.TTakeRegular])
}

func TestRun_DeadlockedNetReportsError(t *testing.T) {
	// One place, one transition that needs a token the place never holds.
	dead, err := petri.New([][]int{{-1}}, []int{0})
	require.NoError(t, err)

	s, err := New(WithNet(dead), WithExitTarget(1), WithDrain(false))
	require.NoError(t, err)

	_, err = s.Run()
	require.ErrorIs(t, err, ErrDeadlock)
}
