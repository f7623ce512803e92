// Package field implements the two additive groups the frontier engine
// aggregates into: T, the node field used while crawling the prefix tree,
// and U, the leaf field used once the crawl reaches its last level. Both
// are fixed-width integers reduced modulo a power of two, following the
// group-element-from-PRG-output pattern used throughout this codebase's
// DPF constructions, generalized to a plain modular additive group since
// no multiplicative structure is required here.
package field

import (
	"crypto/rand"
	"math/big"
)

var modulusT = new(big.Int).Lsh(big.NewInt(1), 128)
var modulusU = new(big.Int).Lsh(big.NewInt(1), 256)

// T is the node field: one AES block wide.
type T struct {
	v *big.Int
}

// ZeroT returns the additive identity of T.
func ZeroT() T {
	return T{v: big.NewInt(0)}
}

// OneT returns the multiplicative identity of T used as a unit increment.
func OneT() T {
	return T{v: big.NewInt(1)}
}

// FromBlock builds a T element from a 16-byte block.
func FromBlock(block [16]byte) T {
	t := T{v: new(big.Int).SetBytes(block[:])}
	t.Reduce()
	return t
}

// FromBool builds a T element with value 0 or 1.
func FromBool(b bool) T {
	if b {
		return OneT()
	}
	return ZeroT()
}

// RandomT draws a uniformly random element of T.
func RandomT() T {
	var block [16]byte
	if _, err := rand.Read(block[:]); err != nil {
		panic(err)
	}
	return FromBlock(block)
}

// Block returns the element as a 16-byte big-endian block.
func (t T) Block() [16]byte {
	var out [16]byte
	t.v.FillBytes(out[:])
	return out
}

// Add returns t+other mod 2^128.
func (t T) Add(other T) T {
	r := new(big.Int).Add(t.v, other.v)
	r.Mod(r, modulusT)
	return T{v: r}
}

// Sub returns t-other mod 2^128.
func (t T) Sub(other T) T {
	r := new(big.Int).Sub(t.v, other.v)
	r.Mod(r, modulusT)
	return T{v: r}
}

// Negate returns -t mod 2^128.
func (t T) Negate() T {
	r := new(big.Int).Neg(t.v)
	r.Mod(r, modulusT)
	return T{v: r}
}

// Reduce normalizes the internal representative into [0, 2^128).
func (t *T) Reduce() {
	t.v.Mod(t.v, modulusT)
}

// Equal reports whether t and other represent the same residue.
func (t T) Equal(other T) bool {
	return t.v.Cmp(other.v) == 0
}

// IsZero reports whether t is the additive identity.
func (t T) IsZero() bool {
	return t.v.Sign() == 0
}

// U is the leaf field: two AES blocks wide.
type U struct {
	v *big.Int
}

// ZeroU returns the additive identity of U.
func ZeroU() U {
	return U{v: big.NewInt(0)}
}

// OneU returns the multiplicative identity of U used as a unit increment.
func OneU() U {
	return U{v: big.NewInt(1)}
}

// FromBlocks builds a U element from two 16-byte blocks, high block first.
func FromBlocks(blocks [2][16]byte) U {
	buf := make([]byte, 32)
	copy(buf[0:16], blocks[0][:])
	copy(buf[16:32], blocks[1][:])
	u := U{v: new(big.Int).SetBytes(buf)}
	u.Reduce()
	return u
}

// FromBoolU builds a U element with value 0 or 1.
func FromBoolU(b bool) U {
	if b {
		return OneU()
	}
	return ZeroU()
}

// RandomU draws a uniformly random element of U.
func RandomU() U {
	var blocks [2][16]byte
	if _, err := rand.Read(blocks[0][:]); err != nil {
		panic(err)
	}
	if _, err := rand.Read(blocks[1][:]); err != nil {
		panic(err)
	}
	return FromBlocks(blocks)
}

// Blocks returns the element as two 16-byte big-endian blocks, high first.
func (u U) Blocks() [2][16]byte {
	buf := make([]byte, 32)
	u.v.FillBytes(buf)
	var out [2][16]byte
	copy(out[0][:], buf[0:16])
	copy(out[1][:], buf[16:32])
	return out
}

// Add returns u+other mod 2^256.
func (u U) Add(other U) U {
	r := new(big.Int).Add(u.v, other.v)
	r.Mod(r, modulusU)
	return U{v: r}
}

// Sub returns u-other mod 2^256.
func (u U) Sub(other U) U {
	r := new(big.Int).Sub(u.v, other.v)
	r.Mod(r, modulusU)
	return U{v: r}
}

// Negate returns -u mod 2^256.
func (u U) Negate() U {
	r := new(big.Int).Neg(u.v)
	r.Mod(r, modulusU)
	return U{v: r}
}

// Reduce normalizes the internal representative into [0, 2^256).
func (u *U) Reduce() {
	u.v.Mod(u.v, modulusU)
}

// Equal reports whether u and other represent the same residue.
func (u U) Equal(other U) bool {
	return u.v.Cmp(other.v) == 0
}

// IsZero reports whether u is the additive identity.
func (u U) IsZero() bool {
	return u.v.Sign() == 0
}

// Int exposes the underlying big.Int value, e.g. for threshold comparisons
// against a plain client count.
func (t T) Int() *big.Int { return new(big.Int).Set(t.v) }

// Int exposes the underlying big.Int value.
func (u U) Int() *big.Int { return new(big.Int).Set(u.v) }
