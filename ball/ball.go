// Package ball composes d independent ibdcf interval comparators into the
// L∞-ball membership predicate: a client's d-dimensional location falls
// inside the ball exactly when every one of its axes falls inside that
// axis's [left, right] interval. The composition follows the same
// fan-out-over-many-keys shape as this codebase's distributed
// sum-of-point-functions, generalized from "one key per special point" to
// "one interval key pair per axis".
package ball

import (
	"errors"
	"fmt"

	"heavyhitters/ibdcf"
)

// Key is one server's share of an L∞-ball key: one IntervalKeyPair per
// axis, in axis order.
type Key struct {
	Axes []ibdcf.IntervalKeyPair
}

// Dimension returns the number of axes this key covers.
func (k Key) Dimension() int {
	return len(k.Axes)
}

// GenBall builds the two server shares of an L∞-ball key from explicit
// per-axis (left, right) inclusive bounds.
func GenBall(leftBits, rightBits [][]bool) (Key, Key, error) {
	if len(leftBits) != len(rightBits) {
		return Key{}, Key{}, errors.New("ball: left and right bound count must match")
	}
	d := len(leftBits)
	k0 := Key{Axes: make([]ibdcf.IntervalKeyPair, d)}
	k1 := Key{Axes: make([]ibdcf.IntervalKeyPair, d)}
	for i := 0; i < d; i++ {
		if len(leftBits[i]) != len(rightBits[i]) {
			return Key{}, Key{}, fmt.Errorf("ball: axis %d bound length mismatch", i)
		}
		ivl := ibdcf.GenInterval(leftBits[i], rightBits[i])
		// The two server shares for axis i are already split across
		// ivl.Less[0]/ivl.Less[1] and ivl.Greater[0]/ivl.Greater[1];
		// server j's axis key bundles the j-th half of each.
		k0.Axes[i] = ibdcf.IntervalKeyPair{
			Less:    [2]ibdcf.Key{ivl.Less[0], ivl.Less[0]},
			Greater: [2]ibdcf.Key{ivl.Greater[0], ivl.Greater[0]},
		}
		k1.Axes[i] = ibdcf.IntervalKeyPair{
			Less:    [2]ibdcf.Key{ivl.Less[1], ivl.Less[1]},
			Greater: [2]ibdcf.Key{ivl.Greater[1], ivl.Greater[1]},
		}
	}
	return k0, k1, nil
}

// GenBallAroundPoint builds the two server shares of an L∞-ball of the
// given radius centered on alpha, saturating each axis at the domain
// boundary rather than wrapping.
func GenBallAroundPoint(alpha [][]bool, radius int) (Key, Key, error) {
	left := make([][]bool, len(alpha))
	right := make([][]bool, len(alpha))
	for i, axis := range alpha {
		left[i] = ibdcf.ClampedOffset(axis, -radius)
		right[i] = ibdcf.ClampedOffset(axis, radius)
	}
	return GenBall(left, right)
}

// AxisEvalState is one axis's pair of evaluation cursors, for the
// interval's "<" comparator and its ">" comparator.
type AxisEvalState struct {
	Less    ibdcf.EvalState
	Greater ibdcf.EvalState
}

// EvalState is a client's full evaluation cursor across all d axes.
type EvalState []AxisEvalState

// EvalInit builds the root evaluation cursor for a ball key.
func EvalInit(key Key) EvalState {
	state := make(EvalState, len(key.Axes))
	for i, axis := range key.Axes {
		state[i] = AxisEvalState{
			Less:    ibdcf.EvalInit(axis.Less[0]),
			Greater: ibdcf.EvalInit(axis.Greater[0]),
		}
	}
	return state
}

// EvalBit advances every axis's cursor by one bit in direction dirs[i].
func EvalBit(key Key, state EvalState, dirs []bool) (EvalState, error) {
	if len(dirs) != len(state) {
		return nil, errors.New("ball: direction vector length mismatch")
	}
	next := make(EvalState, len(state))
	for i, axis := range key.Axes {
		next[i] = AxisEvalState{
			Less:    ibdcf.EvalBit(axis.Less[0], state[i].Less, dirs[i]),
			Greater: ibdcf.EvalBit(axis.Greater[0], state[i].Greater, dirs[i]),
		}
	}
	return next, nil
}

// Evidence flattens a client's current per-axis cursors into the 2d-bit
// vector the garbled equality test consumes: the "<" share for every
// axis, followed by the ">" share for every axis.
func Evidence(state EvalState) []bool {
	out := make([]bool, 0, 2*len(state))
	for _, axis := range state {
		out = append(out, ibdcf.Share(axis.Less))
	}
	for _, axis := range state {
		out = append(out, ibdcf.Share(axis.Greater))
	}
	return out
}
