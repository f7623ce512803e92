package samplingutil_test

import (
	"testing"

	"heavyhitters/samplingutil"

	"github.com/stretchr/testify/require"
)

func TestRandomPointShape(t *testing.T) {
	rng, err := samplingutil.NewRNG()
	require.NoError(t, err)

	point, err := samplingutil.RandomPoint(rng, 3, 16)
	require.NoError(t, err)
	require.Len(t, point, 3)
	for _, axis := range point {
		require.Len(t, axis, 16)
	}
}

func TestRandomPointRejectsOversizeBitLen(t *testing.T) {
	rng, err := samplingutil.NewRNG()
	require.NoError(t, err)
	_, err = samplingutil.RandomPoint(rng, 1, 257)
	require.Error(t, err)
}

func TestClientIDStableForSamePoint(t *testing.T) {
	point := [][]bool{{true, false, true}, {false, false, true}}
	id1 := samplingutil.ClientID(point)
	id2 := samplingutil.ClientID(point)
	require.Equal(t, id1, id2)

	other := [][]bool{{true, false, false}, {false, false, true}}
	idOther := samplingutil.ClientID(other)
	require.NotEqual(t, id1, idOther)
}

func TestRandomClientsCount(t *testing.T) {
	rng, err := samplingutil.NewRNG()
	require.NoError(t, err)

	clients, err := samplingutil.RandomClients(rng, 5, 2, 8)
	require.NoError(t, err)
	require.Len(t, clients, 5)
	for _, c := range clients {
		require.Len(t, c, 2)
	}
}
