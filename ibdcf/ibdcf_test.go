package ibdcf_test

import (
	"testing"

	"heavyhitters/ibdcf"

	"github.com/stretchr/testify/assert"
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

// reconstruct walks both key shares over idx and XORs their boolean
// outputs, mirroring how the two servers' shares combine in the clear
// for testing purposes only.
func reconstruct(k0, k1 ibdcf.Key, idx []bool) bool {
	return ibdcf.EvalFull(k0, idx) != ibdcf.EvalFull(k1, idx)
}

func TestGenEvalFullDomain(t *testing.T) {
	const l = 5
	alpha := toBits(21, l)
	k0, k1 := ibdcf.Gen(alpha, true)

	for x := uint(0); x < (1 << l); x++ {
		idx := toBits(x, l)
		got := reconstruct(k0, k1, idx)
		want := x < 21
		assert.Equalf(t, want, got, "x=%d", x)
	}
}

func TestGenEvalFullGreaterSide(t *testing.T) {
	const l = 5
	alpha := toBits(21, l)
	k0, k1 := ibdcf.Gen(alpha, false)

	for x := uint(0); x < (1 << l); x++ {
		idx := toBits(x, l)
		got := reconstruct(k0, k1, idx)
		want := x > 21
		assert.Equalf(t, want, got, "x=%d", x)
	}
}

func TestEvalBitIncrementalMatchesEvalFull(t *testing.T) {
	const l = 6
	alpha := toBits(40, l)
	k0, k1 := ibdcf.Gen(alpha, true)

	idx := toBits(17, l)

	s0 := ibdcf.EvalInit(k0)
	s1 := ibdcf.EvalInit(k1)
	for _, dir := range idx {
		s0 = ibdcf.EvalBit(k0, s0, dir)
		s1 = ibdcf.EvalBit(k1, s1, dir)
	}

	incremental := ibdcf.Share(s0) != ibdcf.Share(s1)
	full := ibdcf.EvalFull(k0, idx) != ibdcf.EvalFull(k1, idx)
	assert.Equal(t, full, incremental)
}

func TestGenIntervalMembership(t *testing.T) {
	const l = 5
	left := toBits(10, l)
	right := toBits(20, l)
	ivl := ibdcf.GenInterval(left, right)

	for x := uint(0); x < (1 << l); x++ {
		idx := toBits(x, l)
		lessShare := reconstruct(ivl.Less[0], ivl.Less[1], idx)
		greaterShare := reconstruct(ivl.Greater[0], ivl.Greater[1], idx)
		inRange := !lessShare && !greaterShare
		want := x >= 10 && x <= 20
		assert.Equalf(t, want, inRange, "x=%d", x)
	}
}

func TestClampedOffsetSaturates(t *testing.T) {
	alpha := toBits(2, 4)
	below := ibdcf.ClampedOffset(alpha, -10)
	above := ibdcf.ClampedOffset(alpha, 20)

	require.Equal(t, toBits(0, 4), below)
	require.Equal(t, toBits(15, 4), above)
}

func TestGenLInfBallAroundPointProducesOneKeyPairPerAxis(t *testing.T) {
	const l = 4
	point := [][]bool{toBits(5, l), toBits(9, l), toBits(2, l)}
	keys := ibdcf.GenLInfBallAroundPoint(point, 1)
	require.Len(t, keys, 3)
}
