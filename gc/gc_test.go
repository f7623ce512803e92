package gc_test

import (
	"sync"
	"testing"

	"heavyhitters/gc"
	"heavyhitters/mpcchannel"

	"github.com/stretchr/testify/require"
)

func TestEqualityTestRevealsXORMaskedMatch(t *testing.T) {
	gCh, eCh := mpcchannel.NewPipePair()

	garblerEvidence := [][]bool{
		{false, false, false, false}, // all match -> row is "equal to zero vector"
		{true, false, false, false},  // no match
		{false, false, false, false}, // evaluator's row differs in the last bit -> no match
	}
	evaluatorEvidence := [][]bool{
		{false, false, false, false},
		{false, false, false, false},
		{false, false, false, true},
	}

	garbler := gc.Garbler{Channel: gCh}
	evaluator := gc.Evaluator{Channel: eCh}

	var wg sync.WaitGroup
	var masks, shares []bool
	var gErr, eErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		masks, gErr = garbler.Run(garblerEvidence)
	}()
	go func() {
		defer wg.Done()
		shares, eErr = evaluator.Run(evaluatorEvidence)
	}()
	wg.Wait()

	require.NoError(t, gErr)
	require.NoError(t, eErr)
	require.Len(t, masks, 3)
	require.Len(t, shares, 3)

	wantAllZero := []bool{true, false, false}
	for i := range wantAllZero {
		reconstructed := masks[i] != shares[i]
		require.Equalf(t, wantAllZero[i], reconstructed, "row %d", i)
	}
}
