package field_test

import (
	"testing"

	"heavyhitters/field"

	"github.com/stretchr/testify/assert"
)

func TestTAddSubRoundtrip(t *testing.T) {
	a := field.FromBool(true)
	b := field.FromBool(true)
	sum := a.Add(b)
	back := sum.Sub(b)
	assert.True(t, back.Equal(a))
}

func TestTNegateIsInverse(t *testing.T) {
	a := field.FromBlock([16]byte{1, 2, 3})
	neg := a.Negate()
	assert.True(t, a.Add(neg).IsZero())
}

func TestUBlockRoundtrip(t *testing.T) {
	var blocks [2][16]byte
	blocks[0][0] = 0xAB
	blocks[1][15] = 0xCD
	u := field.FromBlocks(blocks)
	assert.Equal(t, blocks, u.Blocks())
}

func TestUAddSub(t *testing.T) {
	a := field.FromBoolU(true)
	b := field.OneU().Add(field.OneU())
	assert.True(t, b.Sub(a).Equal(field.OneU()))
}

func TestUWrapsModulus(t *testing.T) {
	var blocks [2][16]byte
	for i := range blocks[0] {
		blocks[0][i] = 0xFF
	}
	for i := range blocks[1] {
		blocks[1][i] = 0xFF
	}
	max := field.FromBlocks(blocks)
	wrapped := max.Add(field.OneU())
	assert.True(t, wrapped.IsZero())
}
