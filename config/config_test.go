package config_test

import (
	"testing"

	"heavyhitters/config"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaultsAndOptions(t *testing.T) {
	c := config.New(100, config.WithDimension(4), config.WithDepth(16))
	require.Equal(t, 128, c.Lambda)
	require.Equal(t, 16, c.Depth)
	require.Equal(t, 4, c.Dimension)
	require.Equal(t, 100, c.NumClients)
	require.NoError(t, c.Validate())
}

func TestThresholdRoundsUpToAtLeastOne(t *testing.T) {
	c := config.New(10, config.WithThresholdRatio(0.01))
	require.Equal(t, 1, c.Threshold())

	c2 := config.New(1000, config.WithThresholdRatio(0.05))
	require.Equal(t, 50, c2.Threshold())
}

func TestValidateRejectsBadRatio(t *testing.T) {
	c := config.New(10, config.WithThresholdRatio(0))
	require.Error(t, c.Validate())

	c2 := config.New(10, config.WithThresholdRatio(1.5))
	require.Error(t, c2.Validate())
}
