package grammar

// element is one step of the block pattern. The three kinds are a structural
// literal, a captured lazy gap, and an ordered choice between branches.
type element interface {
	isElement()
}

// lit is a structural token literal, without its separator.
type lit string

// gap is a lazy captured span of arbitrary material.
type gap struct{}

// choice is an ordered list of alternative branches. Exactly one branch
// participates in a match; branches are tried in declaration order.
type choice [][]element

func (lit) isElement()    {}
func (gap) isElement()    {}
func (choice) isElement() {}

// openTok anchors the candidate-start scan. Every block begins here.
const openTok = "T0"

// block is the complete invariant pattern. The middle choice is which agent
// handled the reservation, the tail choice is how the payment ended. This is
// the only pattern the package knows; it is data so the matcher stays
// generic, but it is not configurable.
var block = []element{
	lit("T0"), gap{}, lit("T1"), gap{},
	choice{
		{lit("T3"), gap{}, lit("T4"), gap{}},
		{lit("T2"), gap{}, lit("T5"), gap{}},
	},
	choice{
		{lit("T7"), gap{}, lit("T8"), gap{}},
		{lit("T6"), gap{}, lit("T9"), gap{}, lit("T10"), gap{}},
	},
	lit("T11"),
}

// NumPaths is the number of distinct routes through the block: two middle
// alternatives times two tail alternatives.
const NumPaths = 4
