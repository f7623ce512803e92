package ot_test

import (
	"sync"
	"testing"

	"heavyhitters/field"
	"heavyhitters/mpcchannel"
	"heavyhitters/ot"

	"github.com/stretchr/testify/require"
)

func TestSendReceiveSelectsChosenElement(t *testing.T) {
	senderCh, receiverCh := mpcchannel.NewPipePair()

	pairs := [][2]field.T{
		{field.FromBool(false), field.FromBool(true)},
		{field.FromBool(true), field.FromBool(false)},
		{field.FromBlock([16]byte{1, 2, 3}), field.FromBlock([16]byte{4, 5, 6})},
	}
	choices := []bool{true, false, true}

	var wg sync.WaitGroup
	var sendErr, recvErr error
	var got []field.T

	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = ot.Send(senderCh, pairs)
	}()
	go func() {
		defer wg.Done()
		got, recvErr = ot.Receive(receiverCh, choices)
	}()
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, recvErr)
	require.Len(t, got, len(pairs))
	for i, choice := range choices {
		want := pairs[i][0]
		if choice {
			want = pairs[i][1]
		}
		require.Truef(t, got[i].Equal(want), "index %d", i)
	}
}

func TestSendReceiveUSelectsChosenElement(t *testing.T) {
	senderCh, receiverCh := mpcchannel.NewPipePair()

	pairs := [][2]field.U{
		{field.FromBoolU(false), field.FromBoolU(true)},
		{field.OneU().Add(field.OneU()), field.FromBoolU(true)},
	}
	choices := []bool{false, true}

	var wg sync.WaitGroup
	var sendErr, recvErr error
	var got []field.U

	wg.Add(2)
	go func() {
		defer wg.Done()
		sendErr = ot.SendU(senderCh, pairs)
	}()
	go func() {
		defer wg.Done()
		got, recvErr = ot.ReceiveU(receiverCh, choices)
	}()
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, recvErr)
	for i, choice := range choices {
		want := pairs[i][0]
		if choice {
			want = pairs[i][1]
		}
		require.Truef(t, got[i].Equal(want), "index %d", i)
	}
}
