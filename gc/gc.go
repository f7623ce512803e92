// Package gc implements the batched garbled equality test: given a batch
// of bit-vectors, one per axis-comparator evidence row, it tells the two
// servers — without either learning the other's bits, or the bit-vector
// itself — whether all bits of each row were zero (i.e. the corresponding
// client prefix is inside the L∞ ball at this node), as a pair of masked
// boolean shares ready for the ot package to lift into an arithmetic
// field share. It follows the structure of a semi-honest Yao garbled
// circuit: point-and-permute garbled gates, one wire input owned directly
// by the garbler and one delivered to the evaluator via 1-out-of-2 OT, a
// final masked output decode, and an ACK handshake so the channel is
// drained before the caller starts an OT round of its own on it.
package gc

import (
	"errors"
	"fmt"

	"heavyhitters/field"
	"heavyhitters/mpcchannel"
	"heavyhitters/ot"
	"heavyhitters/prg"
)

func checkRectangular(evidence [][]bool) (n, l int, err error) {
	n = len(evidence)
	if n == 0 {
		return 0, 0, nil
	}
	l = len(evidence[0])
	for _, row := range evidence {
		if len(row) != l {
			return 0, 0, errors.New("gc: ragged evidence rows")
		}
	}
	return n, l, nil
}

// Garbler is the party that builds the circuit and chooses the random
// per-test masks.
type Garbler struct {
	Channel mpcchannel.Channel
}

// Run garbles and sends one equality test per row of evidence and returns
// the masks it chose, one per row; Evaluator.Run on the peer returns the
// corresponding masked shares such that mask XOR maskedShare equals
// "the garbler's row equals the evaluator's row" (their XOR is all false).
func (g Garbler) Run(evidence [][]bool) ([]bool, error) {
	n, l, err := checkRectangular(evidence)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	var gateID uint64
	next := func() uint64 {
		id := gateID
		gateID++
		return id
	}

	inA := make([][]wire, n)
	inB := make([][]wire, n)
	eq := make([][]wire, n)
	xnorTables := make([]garbledTable, 0, n*l)
	for i := 0; i < n; i++ {
		inA[i] = make([]wire, l)
		inB[i] = make([]wire, l)
		eq[i] = make([]wire, l)
		for j := 0; j < l; j++ {
			inA[i][j] = newWire()
			inB[i][j] = newWire()
			eq[i][j] = newWire()
			xnorTables = append(xnorTables, garbleGate(inA[i][j], inB[i][j], eq[i][j], next(), opXNOR))
		}
	}

	allEqual := make([]wire, n)
	andTables := make([]garbledTable, 0, n*l)
	for i := 0; i < n; i++ {
		acc := eq[i][0]
		for j := 1; j < l; j++ {
			out := newWire()
			andTables = append(andTables, garbleGate(acc, eq[i][j], out, next(), opAND))
			acc = out
		}
		allEqual[i] = acc
	}

	masks := make([]bool, n)
	maskWire := make([]wire, n)
	finalWire := make([]wire, n)
	xorTables := make([]garbledTable, n)
	for i := 0; i < n; i++ {
		masks[i] = prg.RandomBit()
		maskWire[i] = newWire()
		finalWire[i] = newWire()
		xorTables[i] = garbleGate(allEqual[i], maskWire[i], finalWire[i], next(), opXOR)
	}

	otPairs := make([][2]field.T, 0, n*l)
	for i := 0; i < n; i++ {
		for j := 0; j < l; j++ {
			otPairs = append(otPairs, [2]field.T{
				field.FromBlock(inB[i][j].zero),
				field.FromBlock(inB[i][j].one),
			})
		}
	}
	if err := ot.Send(g.Channel, otPairs); err != nil {
		return nil, fmt.Errorf("gc: deliver evaluator labels: %w", err)
	}

	ownLabels := make([]byte, 0, n*(l+1)*16)
	for i := 0; i < n; i++ {
		for j := 0; j < l; j++ {
			lab := inA[i][j].label(evidence[i][j])
			ownLabels = append(ownLabels, lab[:]...)
		}
		mlab := maskWire[i].label(masks[i])
		ownLabels = append(ownLabels, mlab[:]...)
	}
	if err := mpcchannel.WriteFrame(g.Channel, ownLabels); err != nil {
		return nil, fmt.Errorf("gc: send own labels: %w", err)
	}

	allTables := make([]garbledTable, 0, len(xnorTables)+len(andTables)+len(xorTables))
	allTables = append(allTables, xnorTables...)
	allTables = append(allTables, andTables...)
	allTables = append(allTables, xorTables...)
	tableBytes := make([]byte, 0, len(allTables)*64)
	for _, tbl := range allTables {
		for _, row := range tbl {
			tableBytes = append(tableBytes, row[:]...)
		}
	}
	if err := mpcchannel.WriteFrame(g.Channel, tableBytes); err != nil {
		return nil, fmt.Errorf("gc: send tables: %w", err)
	}

	decode := make([]byte, n)
	for i := 0; i < n; i++ {
		decode[i] = byte(pointBit(finalWire[i].one))
	}
	if err := mpcchannel.WriteFrame(g.Channel, decode); err != nil {
		return nil, fmt.Errorf("gc: send decode: %w", err)
	}

	ack, err := mpcchannel.ReadFrame(g.Channel)
	if err != nil {
		return nil, fmt.Errorf("gc: read ack: %w", err)
	}
	if len(ack) != 1 || ack[0] != 1 {
		return nil, errors.New("gc: evaluator did not acknowledge")
	}

	return masks, nil
}

// Evaluator is the party that evaluates the garbled circuit and never
// sees either side's bits in the clear.
type Evaluator struct {
	Channel mpcchannel.Channel
}

// Run evaluates the equality test batch sent by the matching Garbler.Run
// call and returns the masked shares, one per evidence row.
func (e Evaluator) Run(evidence [][]bool) ([]bool, error) {
	n, l, err := checkRectangular(evidence)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	var gateID uint64
	next := func() uint64 {
		id := gateID
		gateID++
		return id
	}

	choices := make([]bool, 0, n*l)
	for i := 0; i < n; i++ {
		choices = append(choices, evidence[i]...)
	}
	inBElems, err := ot.Receive(e.Channel, choices)
	if err != nil {
		return nil, fmt.Errorf("gc: receive own labels via ot: %w", err)
	}

	ownLabelsBytes, err := mpcchannel.ReadFrame(e.Channel)
	if err != nil {
		return nil, fmt.Errorf("gc: read garbler labels: %w", err)
	}
	if len(ownLabelsBytes) != n*(l+1)*16 {
		return nil, errors.New("gc: malformed garbler-label frame")
	}

	tableBytes, err := mpcchannel.ReadFrame(e.Channel)
	if err != nil {
		return nil, fmt.Errorf("gc: read tables: %w", err)
	}
	if len(tableBytes)%64 != 0 {
		return nil, errors.New("gc: malformed table frame")
	}
	tables := make([]garbledTable, len(tableBytes)/64)
	for t := range tables {
		for r := 0; r < 4; r++ {
			copy(tables[t][r][:], tableBytes[t*64+r*16:t*64+r*16+16])
		}
	}

	decode, err := mpcchannel.ReadFrame(e.Channel)
	if err != nil {
		return nil, fmt.Errorf("gc: read decode: %w", err)
	}
	if len(decode) != n {
		return nil, errors.New("gc: malformed decode frame")
	}

	inALabels := make([][]label, n)
	maskLabels := make([]label, n)
	pos := 0
	for i := 0; i < n; i++ {
		inALabels[i] = make([]label, l)
		for j := 0; j < l; j++ {
			copy(inALabels[i][j][:], ownLabelsBytes[pos:pos+16])
			pos += 16
		}
		copy(maskLabels[i][:], ownLabelsBytes[pos:pos+16])
		pos += 16
	}

	tablePos := 0
	elemPos := 0
	eqLabels := make([][]label, n)
	for i := 0; i < n; i++ {
		eqLabels[i] = make([]label, l)
		for j := 0; j < l; j++ {
			inBLabel := label(inBElems[elemPos].Block())
			elemPos++
			eqLabels[i][j] = evalGate(tables[tablePos], inALabels[i][j], inBLabel, next())
			tablePos++
		}
	}

	allEqualLabels := make([]label, n)
	for i := 0; i < n; i++ {
		acc := eqLabels[i][0]
		for j := 1; j < l; j++ {
			acc = evalGate(tables[tablePos], acc, eqLabels[i][j], next())
			tablePos++
		}
		allEqualLabels[i] = acc
	}

	results := make([]bool, n)
	for i := 0; i < n; i++ {
		finalLabel := evalGate(tables[tablePos], allEqualLabels[i], maskLabels[i], next())
		tablePos++
		results[i] = pointBit(finalLabel) == int(decode[i])
	}

	if err := mpcchannel.WriteFrame(e.Channel, []byte{1}); err != nil {
		return nil, fmt.Errorf("gc: send ack: %w", err)
	}

	return results, nil
}
