package collector_test

import (
	"sync"
	"testing"

	"heavyhitters/ball"
	"heavyhitters/collector"
	"heavyhitters/field"
	"heavyhitters/mpcchannel"

	"github.com/stretchr/testify/require"
)

type crawlResult struct {
	vals []field.T
	err  error
}

func TestServerEndToEndSingleLevel(t *testing.T) {
	// One axis, one crawl level (a 1-bit domain): client A sits at bit 1,
	// client B at bit 0, both with radius-0 balls (exact point match).
	aKey0, aKey1, err := ball.GenBallAroundPoint([][]bool{{true}}, 0)
	require.NoError(t, err)
	bKey0, bKey1, err := ball.GenBallAroundPoint([][]bool{{false}}, 0)
	require.NoError(t, err)

	srv0 := collector.NewServer(true, 1)
	srv1 := collector.NewServer(false, 1)

	srv0.AddKeys([]ball.Key{aKey0, bKey0})
	srv1.AddKeys([]ball.Key{aKey1, bKey1})

	require.NoError(t, srv0.TreeInit())
	require.NoError(t, srv1.TreeInit())

	ch0a, ch1a := mpcchannel.NewPipePair()
	ch0b, ch1b := mpcchannel.NewPipePair()

	var wg sync.WaitGroup
	var r0, r1 crawlResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		v, e := srv0.TreeCrawl([]mpcchannel.Channel{ch0a, ch0b})
		r0 = crawlResult{v, e}
	}()
	go func() {
		defer wg.Done()
		v, e := srv1.TreeCrawl([]mpcchannel.Channel{ch1a, ch1b})
		r1 = crawlResult{v, e}
	}()
	wg.Wait()

	require.NoError(t, r0.err)
	require.NoError(t, r1.err)

	leader := collector.Leader{NumClients: 2, Threshold: 1}
	keep, err := leader.Reconstruct(r0.vals, r1.vals)
	require.NoError(t, err)
	require.True(t, keep.Test(0), "prefix 0 should count client B's match")
	require.True(t, keep.Test(1), "prefix 1 should count client A's match")

	require.NoError(t, srv0.TreePrune(keep))
	require.NoError(t, srv1.TreePrune(keep))
}
