package ball_test

import (
	"testing"

	"heavyhitters/ball"

	"github.com/stretchr/testify/require"
)

func toBits(v uint, l int) []bool {
	bits := make([]bool, l)
	for i := l - 1; i >= 0; i-- {
		bits[i] = v&1 == 1
		v >>= 1
	}
	return bits
}

func evalPoint(t *testing.T, k0, k1 ball.Key, point []uint, l int) bool {
	t.Helper()
	s0 := ball.EvalInit(k0)
	s1 := ball.EvalInit(k1)
	for level := 0; level < l; level++ {
		dirs := make([]bool, len(point))
		for i, p := range point {
			dirs[i] = toBits(p, l)[level]
		}
		var err error
		s0, err = ball.EvalBit(k0, s0, dirs)
		require.NoError(t, err)
		s1, err = ball.EvalBit(k1, s1, dirs)
		require.NoError(t, err)
	}
	e0 := ball.Evidence(s0)
	e1 := ball.Evidence(s1)
	for i := range e0 {
		if e0[i] != e1[i] {
			return false
		}
	}
	return true
}

func TestGenBallAroundPointMembership(t *testing.T) {
	const l = 4
	center := []uint{5, 9}
	alpha := [][]bool{toBits(center[0], l), toBits(center[1], l)}
	k0, k1, err := ball.GenBallAroundPoint(alpha, 1)
	require.NoError(t, err)

	inside := evalPoint(t, k0, k1, []uint{5, 9}, l)
	require.True(t, inside)

	outside := evalPoint(t, k0, k1, []uint{5, 12}, l)
	require.False(t, outside)
}

func TestGenBallDimensionMismatchErrors(t *testing.T) {
	_, _, err := ball.GenBall([][]bool{{true}}, [][]bool{{true}, {false}})
	require.Error(t, err)
}
