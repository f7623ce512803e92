// Package ot implements a 1-out-of-2 oblivious transfer used two ways in
// this system: internally by gc to deliver garbled wire labels to the
// circuit evaluator without revealing its input bit, and at the frontier
// level to lift a masked boolean share into an additive field share
// (spec'd as the "bit to field" conversion). Both uses share the same
// base primitive, a Chou-Orlandi-style OT built on the secp256k1 group
// (the same curve library samplingutil uses for client IDs).
package ot

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"heavyhitters/field"
	"heavyhitters/mpcchannel"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func randomScalar() *secp256k1.ModNScalar {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(buf[:])
	return s
}

func scalarBaseMult(k *secp256k1.ModNScalar) secp256k1.JacobianPoint {
	var p secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &p)
	p.ToAffine()
	return p
}

func scalarMult(k *secp256k1.ModNScalar, p secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var out secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(k, &p, &out)
	out.ToAffine()
	return out
}

func addPoints(a, b secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a, &b, &out)
	out.ToAffine()
	return out
}

func negatePoint(p secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	neg := p
	neg.Y.Negate(1)
	neg.Y.Normalize()
	return neg
}

func serializePoint(p secp256k1.JacobianPoint) []byte {
	pub := secp256k1.NewPublicKey(&p.X, &p.Y)
	return pub.SerializeCompressed()
}

func deserializePoint(data []byte) (secp256k1.JacobianPoint, error) {
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return secp256k1.JacobianPoint{}, fmt.Errorf("ot: parse point: %w", err)
	}
	var p secp256k1.JacobianPoint
	if err := pub.AsJacobian(&p); err != nil {
		return secp256k1.JacobianPoint{}, fmt.Errorf("ot: point to jacobian: %w", err)
	}
	return p, nil
}

// deriveMask hashes a curve point down to a 16-byte one-time pad, the
// width of field.T's block representation.
func deriveMask(p secp256k1.JacobianPoint) [16]byte {
	sum := sha256.Sum256(serializePoint(p))
	var mask [16]byte
	copy(mask[:], sum[:16])
	return mask
}

func xorBlock(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Send runs the sender side of a batch of 1-out-of-2 OTs over field.T
// pairs, one base-OT instance per pair.
func Send(ch mpcchannel.Channel, pairs [][2]field.T) error {
	for _, pair := range pairs {
		a := randomScalar()
		A := scalarBaseMult(a)
		if err := mpcchannel.WriteFrame(ch, serializePoint(A)); err != nil {
			return err
		}

		bBytes, err := mpcchannel.ReadFrame(ch)
		if err != nil {
			return err
		}
		B, err := deserializePoint(bBytes)
		if err != nil {
			return err
		}

		k0 := deriveMask(scalarMult(a, B))
		k1 := deriveMask(scalarMult(a, addPoints(B, negatePoint(A))))

		c0 := xorBlock(pair[0].Block(), k0)
		c1 := xorBlock(pair[1].Block(), k1)

		msg := append(append([]byte{}, c0[:]...), c1[:]...)
		if err := mpcchannel.WriteFrame(ch, msg); err != nil {
			return err
		}
	}
	return nil
}

// Receive runs the receiver side, recovering exactly the field.T element
// selected by each choice bit.
func Receive(ch mpcchannel.Channel, choices []bool) ([]field.T, error) {
	out := make([]field.T, len(choices))
	for i, choice := range choices {
		aBytes, err := mpcchannel.ReadFrame(ch)
		if err != nil {
			return nil, err
		}
		A, err := deserializePoint(aBytes)
		if err != nil {
			return nil, err
		}

		beta := randomScalar()
		betaG := scalarBaseMult(beta)
		B := betaG
		if choice {
			B = addPoints(A, betaG)
		}
		if err := mpcchannel.WriteFrame(ch, serializePoint(B)); err != nil {
			return nil, err
		}

		k := deriveMask(scalarMult(beta, A))

		msg, err := mpcchannel.ReadFrame(ch)
		if err != nil {
			return nil, err
		}
		if len(msg) != 32 {
			return nil, errors.New("ot: malformed sender message")
		}
		var c0, c1 [16]byte
		copy(c0[:], msg[0:16])
		copy(c1[:], msg[16:32])

		var chosen [16]byte
		if choice {
			chosen = c1
		} else {
			chosen = c0
		}
		out[i] = field.FromBlock(xorBlock(chosen, k))
	}
	return out, nil
}

// SendU runs Send twice, once per 16-byte half of a field.U pair, so the
// two-block leaf field can be transferred through the same base OT.
func SendU(ch mpcchannel.Channel, pairs [][2]field.U) error {
	hi := make([][2]field.T, len(pairs))
	lo := make([][2]field.T, len(pairs))
	for i, pair := range pairs {
		b0 := pair[0].Blocks()
		b1 := pair[1].Blocks()
		hi[i] = [2]field.T{field.FromBlock(b0[0]), field.FromBlock(b1[0])}
		lo[i] = [2]field.T{field.FromBlock(b0[1]), field.FromBlock(b1[1])}
	}
	if err := Send(ch, hi); err != nil {
		return fmt.Errorf("ot: send high half: %w", err)
	}
	if err := Send(ch, lo); err != nil {
		return fmt.Errorf("ot: send low half: %w", err)
	}
	return nil
}

// ReceiveU mirrors SendU on the receiver side.
func ReceiveU(ch mpcchannel.Channel, choices []bool) ([]field.U, error) {
	hi, err := Receive(ch, choices)
	if err != nil {
		return nil, fmt.Errorf("ot: receive high half: %w", err)
	}
	lo, err := Receive(ch, choices)
	if err != nil {
		return nil, fmt.Errorf("ot: receive low half: %w", err)
	}
	out := make([]field.U, len(choices))
	for i := range out {
		out[i] = field.FromBlocks([2][16]byte{hi[i].Block(), lo[i].Block()})
	}
	return out, nil
}
