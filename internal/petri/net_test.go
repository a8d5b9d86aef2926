package petri

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		incidence [][]int
		initial   []int
		opts      []Option
	}{
		{
			name:      "empty matrix",
			incidence: nil,
			initial:   nil,
		},
		{
			name:      "row count mismatch",
			incidence: [][]int{{-1}, {1}},
			initial:   []int{1},
		},
		{
			name:      "ragged rows",
			incidence: [][]int{{-1, 1}, {1}},
			initial:   []int{1, 0},
		},
		{
			name:      "negative initial marking",
			incidence: [][]int{{-1}, {1}},
			initial:   []int{1, -1},
		},
		{
			name:      "place name count mismatch",
			incidence: [][]int{{-1}, {1}},
			initial:   []int{1, 0},
			opts:      []Option{WithNames([]string{"only one"}, []string{"t"})},
		},
		{
			name:      "invariant references unknown place",
			incidence: [][]int{{-1}, {1}},
			initial:   []int{1, 0},
			opts:      []Option{WithPlaceInvariants([]PlaceInvariant{{Places: []int{9}, Sum: 1}})},
		},
		{
			name:      "invariant broken at initial marking",
			incidence: [][]int{{-1}, {1}},
			initial:   []int{1, 0},
			opts:      []Option{WithPlaceInvariants([]PlaceInvariant{{Places: []int{0, 1}, Sum: 2}})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.incidence, tt.initial, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestFire_StateEquation(t *testing.T) {
	n, err := New([][]int{{-1}, {1}}, []int{1, 0})
	require.NoError(t, err)

	require.True(t, n.CanFire(0))
	require.NoError(t, n.Fire(0))
	assert.Equal(t, []int{0, 1}, n.Marking())
	assert.Equal(t, []int{1}, n.Firings())
	assert.Equal(t, []int{0}, n.Sequence())

	err = n.Fire(0)
	assert.ErrorIs(t, err, ErrNotEnabled)
	assert.Equal(t, []int{0, 1}, n.Marking(), "failed firing must not change the marking")
}

func TestFire_OutOfRange(t *testing.T) {
	n, err := New([][]int{{-1}, {1}}, []int{1, 0})
	require.NoError(t, err)

	assert.Error(t, n.Fire(-1))
	assert.Error(t, n.Fire(1))
	assert.False(t, n.CanFire(5))
}

func TestFire_RejectsInvariantViolation(t *testing.T) {
	// A source transition that mints a token would break the declared
	// conservation law.
	n, err := New([][]int{{1}}, []int{0},
		WithPlaceInvariants([]PlaceInvariant{{Places: []int{0}, Sum: 0}}))
	require.NoError(t, err)

	err = n.Fire(0)
	var viol *InvariantViolationError
	require.ErrorAs(t, err, &viol)
	assert.Equal(t, 1, viol.Got)
	assert.Equal(t, []int{0}, n.Marking())
	assert.Empty(t, n.Sequence())
}

func TestEnabled_Vector(t *testing.T) {
	// Two places, two transitions: move a token forth, move it back.
	n, err := New([][]int{{-1, 1}, {1, -1}}, []int{1, 0})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, n.Enabled())
	require.NoError(t, n.Fire(0))
	assert.Equal(t, []bool{false, true}, n.Enabled())
}

func TestAccessors_ReturnCopies(t *testing.T) {
	n, err := New([][]int{{-1}, {1}}, []int{1, 0})
	require.NoError(t, err)

	n.Marking()[0] = 99
	n.Firings()[0] = 99
	assert.Equal(t, []int{1, 0}, n.Marking())
	assert.Equal(t, []int{0}, n.Firings())
}

func TestCheckPlaceInvariants(t *testing.T) {
	invs := []PlaceInvariant{{Places: []int{0, 1}, Sum: 3}}

	assert.NoError(t, CheckPlaceInvariants([]int{1, 2}, invs))

	err := CheckPlaceInvariants([]int{1, 1}, invs)
	var viol *InvariantViolationError
	require.True(t, errors.As(err, &viol))
	assert.Equal(t, 2, viol.Got)
	assert.Contains(t, viol.Error(), "want 3")
}
