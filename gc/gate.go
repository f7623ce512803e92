package gc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
)

// label is a wire label: a random 128-bit string whose least-significant
// bit doubles as the point-and-permute bit, so the evaluator can route a
// received label to the right garbled-table row without learning the
// truth value it encodes.
type label [16]byte

func randomLabel() label {
	var l label
	if _, err := rand.Read(l[:]); err != nil {
		panic(err)
	}
	return l
}

func pointBit(l label) int {
	if l[15]&1 == 1 {
		return 1
	}
	return 0
}

func xorLabel(a, b label) label {
	var out label
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// wire holds the two labels representing a boolean wire's two possible
// values. The two point bits are always distinct by construction.
type wire struct {
	zero label
	one  label
}

func newWire() wire {
	z := randomLabel()
	o := randomLabel()
	for pointBit(z) == pointBit(o) {
		o = randomLabel()
	}
	return wire{zero: z, one: o}
}

func (w wire) label(bit bool) label {
	if bit {
		return w.one
	}
	return w.zero
}

// decode reports which boolean value a received label represents,
// according to the wire's own zero/one point bits.
func (w wire) decode(l label) bool {
	return pointBit(l) == pointBit(w.one)
}

// gateHash is the correlation-robust hash used to derive the one-time pad
// for a garbled table row, keyed by the two input labels actually used
// and the gate's position in the circuit so identical label pairs at
// different gates never collide.
func gateHash(a, b label, gateID uint64) label {
	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], gateID)
	h.Write(idBuf[:])
	sum := h.Sum(nil)
	var out label
	copy(out[:], sum[:16])
	return out
}

// gateOp is the 2-input truth table a garbled gate implements.
type gateOp func(x, y bool) bool

func opXNOR(x, y bool) bool { return x == y }
func opAND(x, y bool) bool  { return x && y }
func opXOR(x, y bool) bool  { return x != y }

// garbledTable is a 4-row point-and-permute garbled gate table, one row
// per combination of the two input wires' point bits.
type garbledTable [4]label

// garbleGate builds the table for a 2-input gate given the gate's two
// input wires, its (freshly drawn) output wire and its truth table.
func garbleGate(in0, in1, out wire, gateID uint64, op gateOp) garbledTable {
	var table garbledTable
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			lx := in0.label(x == 1)
			ly := in1.label(y == 1)
			row := pointBit(lx)*2 + pointBit(ly)
			outLabel := out.label(op(x == 1, y == 1))
			table[row] = xorLabel(outLabel, gateHash(lx, ly, gateID))
		}
	}
	return table
}

// evalGate decrypts the row selected by the two labels the evaluator
// actually holds.
func evalGate(table garbledTable, lx, ly label, gateID uint64) label {
	row := pointBit(lx)*2 + pointBit(ly)
	return xorLabel(table[row], gateHash(lx, ly, gateID))
}
