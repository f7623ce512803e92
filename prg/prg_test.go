package prg_test

import (
	"testing"

	"heavyhitters/prg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandIsDeterministic(t *testing.T) {
	seed := prg.NewSeed()
	a := prg.Expand(seed)
	b := prg.Expand(seed)
	assert.Equal(t, a, b)
}

func TestExpandDiffersAcrossSeeds(t *testing.T) {
	a := prg.Expand(prg.NewSeed())
	b := prg.Expand(prg.NewSeed())
	assert.NotEqual(t, a, b)
}

func TestSidePicksCorrectHalf(t *testing.T) {
	exp := prg.Expand(prg.NewSeed())
	leftSeed, leftT, leftY := exp.Side(false)
	rightSeed, rightT, rightY := exp.Side(true)

	require.Equal(t, exp.LeftSeed, leftSeed)
	require.Equal(t, exp.LeftT, leftT)
	require.Equal(t, exp.LeftY, leftY)
	require.Equal(t, exp.RightSeed, rightSeed)
	require.Equal(t, exp.RightT, rightT)
	require.Equal(t, exp.RightY, rightY)
}

func TestXORSeedsSelfCancels(t *testing.T) {
	s := prg.NewSeed()
	zero := prg.XORSeeds(s, s)
	assert.Equal(t, prg.Seed{}, zero)
}

func TestNewSeedDiffersAcrossCalls(t *testing.T) {
	a := prg.NewSeed()
	b := prg.NewSeed()
	assert.NotEqual(t, a, b, "NewSeed produced the same seed twice, which is extremely unlikely")
}

func TestRandomBitVaries(t *testing.T) {
	seenTrue, seenFalse := false, false
	for i := 0; i < 64 && !(seenTrue && seenFalse); i++ {
		if prg.RandomBit() {
			seenTrue = true
		} else {
			seenFalse = true
		}
	}
	assert.True(t, seenTrue && seenFalse, "RandomBit returned the same value 64 times in a row")
}
