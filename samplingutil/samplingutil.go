// Package samplingutil generates synthetic client locations for tests and
// benchmarks; the ball around each location is built by the caller (see
// ball.GenBallAroundPoint). It plays the role sample_covid_data.rs
// and sample_driving_data.rs play in the reference implementation —
// turning raw coordinates into the points a key generator
// consumes — without reading any real dataset, since ingesting one is
// out of scope here. Pseudorandomness is drawn from
// bls12-381 scalar field elements the way pcg/frkey draws Shamir
// coefficients, seeded the way pcg.go seeds its own math/rand source.
package samplingutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"

	bls12381 "github.com/kilic/bls12-381"
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func bytesToInt64(b []byte) (int64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("samplingutil: seed too short")
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// NewRNG builds a math/rand source seeded from a fresh secure random
// 8-byte draw, matching pcg.go's NewPCG seeding idiom. The seed is not
// returned, so two calls give independent, non-repeatable streams.
func NewRNG() (*mathrand.Rand, error) {
	var seedBytes [8]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		return nil, fmt.Errorf("samplingutil: read seed: %w", err)
	}
	seed, err := bytesToInt64(seedBytes[:])
	if err != nil {
		return nil, err
	}
	return mathrand.New(mathrand.NewSource(seed)), nil
}

// randFr draws a uniformly random bls12-381 scalar from rng and returns
// its 32-byte big-endian encoding, used below as a source of uniformly
// distributed bits for synthetic coordinates.
func randFr(rng *mathrand.Rand) ([]byte, error) {
	fr := bls12381.NewFr()
	if _, err := fr.Rand(rng); err != nil {
		return nil, fmt.Errorf("samplingutil: draw random field element: %w", err)
	}
	return fr.ToBytes(), nil
}

// RandomPoint draws a uniformly random d-dimensional point, each axis
// represented as a bitLen-bit big-endian boolean vector (MSB first),
// following the f64-to-bitvector convention sample_covid_data.rs uses to
// turn a coordinate into ibDCF's bit-string domain.
func RandomPoint(rng *mathrand.Rand, d, bitLen int) ([][]bool, error) {
	if bitLen > 256 {
		return nil, fmt.Errorf("samplingutil: bitLen %d exceeds 256-bit field width", bitLen)
	}
	point := make([][]bool, d)
	for axis := 0; axis < d; axis++ {
		raw, err := randFr(rng)
		if err != nil {
			return nil, err
		}
		point[axis] = bytesToBits(raw, bitLen)
	}
	return point, nil
}

// bytesToBits extracts the low bitLen bits of a big-endian byte slice,
// most significant bit first.
func bytesToBits(raw []byte, bitLen int) []bool {
	bits := make([]bool, bitLen)
	total := len(raw) * 8
	for i := 0; i < bitLen; i++ {
		bitIndex := total - bitLen + i
		byteIdx := bitIndex / 8
		bitOffset := 7 - (bitIndex % 8)
		bits[i] = (raw[byteIdx]>>bitOffset)&1 == 1
	}
	return bits
}

// ClientID derives a stable, collision-resistant label for a synthetic
// client from its raw point bits, the way a real deployment would
// derive a pseudonymous client fingerprint: hash the point down with
// secp256k1's group (already a dependency for OT) instead of rolling a
// bespoke hash-to-id scheme.
func ClientID(point [][]bool) [33]byte {
	var buf []byte
	for _, axis := range point {
		b := make([]byte, (len(axis)+7)/8)
		for i, bit := range axis {
			if bit {
				b[i/8] |= 1 << uint(7-i%8)
			}
		}
		buf = append(buf, b...)
	}
	digest := sha256.Sum256(buf)
	priv := secp256k1.PrivKeyFromBytes(digest[:])
	var out [33]byte
	copy(out[:], priv.PubKey().SerializeCompressed())
	return out
}

// RandomClients draws n independent synthetic client points, the
// fixture a benchmark or integration test hands to ball.GenBallAroundPoint
// per client to build its ball key; mirrors sample_covid_data.rs's role
// of turning a dataset into a batch of (point) fixtures, minus the
// dataset.
func RandomClients(rng *mathrand.Rand, n, d, bitLen int) ([][][]bool, error) {
	clients := make([][][]bool, n)
	for i := range clients {
		p, err := RandomPoint(rng, d, bitLen)
		if err != nil {
			return nil, fmt.Errorf("samplingutil: client %d: %w", i, err)
		}
		clients[i] = p
	}
	return clients, nil
}
