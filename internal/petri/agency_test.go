package petri

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgency_Structure(t *testing.T) {
	n := Agency()

	assert.Equal(t, NumPlaces, n.NumPlaces())
	assert.Equal(t, NumTransitions, n.NumTransitions())
	assert.Equal(t, []int{5, 1, 0, 0, 5, 0, 1, 1, 0, 0, 1, 0, 0, 0, 0}, n.Marking())
	assert.True(t, n.AtInitial())
	assert.Equal(t, "idle clients", n.PlaceName(0))
	assert.Equal(t, "exit", n.TransitionName(TExit))
}

func TestAgency_OnlyArrivalEnabledInitially(t *testing.T) {
	n := Agency()

	enabled := n.Enabled()
	for tr, ok := range enabled {
		if tr == TArrive {
			assert.True(t, ok)
		} else {
			assert.False(t, ok, "transition %d should be blocked at the initial marking", tr)
		}
	}
}

func TestAgency_ClientCycles(t *testing.T) {
	tests := []struct {
		name  string
		cycle []int
	}{
		{name: "regular agent, cancelled", cycle: []int{TArrive, TAdmit, TTakeRegular, TFinishRegular, TCancel, TCancelDone, TExit}},
		{name: "regular agent, confirmed", cycle: []int{TArrive, TAdmit, TTakeRegular, TFinishRegular, TConfirm, TProcess, TConfirmDone, TExit}},
		{name: "superior agent, cancelled", cycle: []int{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TCancel, TCancelDone, TExit}},
		{name: "superior agent, confirmed", cycle: []int{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TConfirm, TProcess, TConfirmDone, TExit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Agency()
			for _, tr := range tt.cycle {
				require.NoError(t, n.Fire(tr), "firing %s", n.TransitionName(tr))
			}

			// A completed cycle is a transition invariant: the marking is
			// back where it started.
			assert.True(t, n.AtInitial())
			assert.Equal(t, tt.cycle, n.Sequence())
		})
	}
}

func TestAgency_InvariantsMatchRoutes(t *testing.T) {
	invs := AgencyInvariants()
	require.Len(t, invs, 4)

	for i, inv := range invs {
		has := func(tr int) bool {
			for _, x := range inv {
				if x == tr {
					return true
				}
			}
			return false
		}
		// Route order: regular before superior, cancelled before confirmed.
		assert.Equal(t, i < 2, has(TTakeRegular), "invariant %d", i)
		assert.Equal(t, i >= 2, has(TTakeSuperior), "invariant %d", i)
		assert.Equal(t, i%2 == 0, has(TCancel), "invariant %d", i)
		assert.Equal(t, i%2 == 1, has(TConfirm), "invariant %d", i)
	}
}

func TestAgency_Timing(t *testing.T) {
	fast, err := Timing("fast")
	require.NoError(t, err)
	require.Len(t, fast, NumTransitions)

	timed := make(map[int]bool)
	for _, tr := range TimedTransitions {
		timed[tr] = true
	}
	for tr, alpha := range fast {
		if timed[tr] {
			assert.Positive(t, alpha, "transition %d carries a window", tr)
		} else {
			assert.Zero(t, alpha, "transition %d is immediate", tr)
		}
	}

	none, err := Timing("none")
	require.NoError(t, err)
	for _, alpha := range none {
		assert.Zero(t, alpha)
	}

	slow, err := Timing("slow")
	require.NoError(t, err)
	assert.Equal(t, 70*time.Millisecond, slow[TCancelDone])

	_, err = Timing("glacial")
	assert.Error(t, err)
}

func TestCountCompletions_SingleCycle(t *testing.T) {
	firings := make([]int, NumTransitions)
	for _, tr := range []int{TArrive, TAdmit, TTakeRegular, TFinishRegular, TCancel, TCancelDone, TExit} {
		firings[tr]++
	}

	counts := CountCompletions(firings, AgencyInvariants())
	assert.Equal(t, []int{1, 0, 0, 0}, counts)
}

func TestCountCompletions_MixedCycles(t *testing.T) {
	firings := make([]int, NumTransitions)
	cycles := [][]int{
		{TArrive, TAdmit, TTakeRegular, TFinishRegular, TCancel, TCancelDone, TExit},
		{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TConfirm, TProcess, TConfirmDone, TExit},
		{TArrive, TAdmit, TTakeSuperior, TFinishSuperior, TConfirm, TProcess, TConfirmDone, TExit},
	}
	for _, c := range cycles {
		for _, tr := range c {
			firings[tr]++
		}
	}

	counts := CountCompletions(firings, AgencyInvariants())
	assert.Equal(t, []int{1, 0, 0, 2}, counts)

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, firings[TExit], total, "every exit closes exactly one invariant")
}

func TestCountCompletions_LeftoverFirings(t *testing.T) {
	// A straggler that entered and was admitted but went no further.
	firings := make([]int, NumTransitions)
	for _, tr := range []int{TArrive, TAdmit, TTakeRegular, TFinishRegular, TCancel, TCancelDone, TExit, TArrive, TAdmit} {
		firings[tr]++
	}

	counts := CountCompletions(firings, AgencyInvariants())
	assert.Equal(t, []int{1, 0, 0, 0}, counts)
}
