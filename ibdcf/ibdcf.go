// Package ibdcf implements the incremental bit-interval distributed
// comparison function: a two-party FSS primitive that, level by level,
// lets each server derive a secret share of "is this prefix above/below a
// threshold" without ever learning the threshold or the other share.
//
// The construction mirrors the reference ibDCF implementation this
// system was distilled from: a correction word is produced per tree
// level during Gen, and evaluation walks the tree one bit at a time via
// EvalBit, carrying an EvalState forward instead of restarting from the
// root for every new prefix — the "incremental" half of the name.
package ibdcf

import "heavyhitters/prg"

// CorWord is the per-level public correction word produced by Gen.
type CorWord struct {
	Seed  prg.Seed
	Bits  [2]bool // [left, right]
	YBits [2]bool // [left, right]
}

// Key is one party's half of an ibDCF. KeyIdx distinguishes the two
// parties (false for server 0, true for server 1); both parties hold the
// same CorWords, a public artifact of Gen.
type Key struct {
	KeyIdx   bool
	RootSeed prg.Seed
	CorWords []CorWord
}

// EvalState is the incremental evaluation cursor: the current tree level,
// the seed reached so far, and the running t-bit/y-bit pair.
type EvalState struct {
	Level int
	Seed  prg.Seed
	Bit   bool
	YBit  bool
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// genCorWord advances the simultaneous two-party simulation by one level
// and returns the correction word that reconciles both parties' paths.
// bit is the target prefix bit at this level; side selects which of the
// two complementary DCFs (the "<" half or the ">" half of an interval) is
// being generated, which only affects how the y-bit leaks the comparison
// direction.
func genCorWord(bit, side bool, bits *[2]bool, seeds *[2]prg.Seed) CorWord {
	data := [2]prg.Expansion{prg.Expand(seeds[0]), prg.Expand(seeds[1])}

	keep := bit
	lose := !keep

	loseSeed0, _, _ := data[0].Side(lose)
	loseSeed1, _, _ := data[1].Side(lose)

	_, leftT0, leftY0 := data[0].Side(false)
	_, leftT1, leftY1 := data[1].Side(false)
	_, rightT0, rightY0 := data[0].Side(true)
	_, rightT1, rightY1 := data[1].Side(true)

	cw := CorWord{
		Seed: prg.XORSeeds(loseSeed0, loseSeed1),
		Bits: [2]bool{
			leftT0 != leftT1 != bit != true,
			rightT0 != rightT1 != bit,
		},
		YBits: [2]bool{
			leftY0 != leftY1 != (bit && !side),
			rightY0 != rightY1 != (!bit && side),
		},
	}

	for b := 0; b < 2; b++ {
		keepSeed, keepT, _ := data[b].Side(keep)
		seed := keepSeed
		newBit := keepT
		if bits[b] {
			seed = prg.XORSeeds(seed, cw.Seed)
			newBit = newBit != cw.Bits[boolIdx(keep)]
		}
		seeds[b] = seed
		bits[b] = newBit
	}
	return cw
}

// Gen produces the two key shares of an ibDCF over alphaBits, for the
// given side ("<" when side is true, ">" when false — see GenInterval).
func Gen(alphaBits []bool, side bool) (Key, Key) {
	rootSeeds := [2]prg.Seed{prg.NewSeed(), prg.NewSeed()}
	seeds := rootSeeds
	bits := [2]bool{false, true}

	corWords := make([]CorWord, 0, len(alphaBits))
	for _, bit := range alphaBits {
		corWords = append(corWords, genCorWord(bit, side, &bits, &seeds))
	}

	return Key{KeyIdx: false, RootSeed: rootSeeds[0], CorWords: corWords},
		Key{KeyIdx: true, RootSeed: rootSeeds[1], CorWords: corWords}
}

// EvalInit returns the cursor at the root of the tree.
func EvalInit(key Key) EvalState {
	return EvalState{Level: 0, Seed: key.RootSeed, Bit: key.KeyIdx, YBit: key.KeyIdx}
}

// EvalBit advances state by one level in direction dir (false = left child,
// true = right child), applying the correction word for the level being
// left if the current t-bit says a correction is owed.
func EvalBit(key Key, state EvalState, dir bool) EvalState {
	tau := prg.Expand(state.Seed)
	seed, newBit, newYBit := tau.Side(dir)

	if state.Bit {
		cw := key.CorWords[state.Level]
		seed = prg.XORSeeds(seed, cw.Seed)
		newBit = newBit != cw.Bits[boolIdx(dir)]
		newYBit = newYBit != cw.YBits[boolIdx(dir)]
	}
	newYBit = newYBit != state.YBit

	return EvalState{Level: state.Level + 1, Seed: seed, Bit: newBit, YBit: newYBit}
}

// EvalFull walks state down a full bit string from the root and returns
// the boolean share y_bit XOR bit, matching a non-incremental evaluation.
func EvalFull(key Key, idxBits []bool) bool {
	state := EvalInit(key)
	for _, dir := range idxBits {
		state = EvalBit(key, state, dir)
	}
	return state.YBit != state.Bit
}

// Share extracts the boolean additive share carried by state at its
// current level, without advancing further.
func Share(state EvalState) bool {
	return state.YBit != state.Bit
}

// DomainSize returns 2^len(CorWords), the number of leaves addressable by
// this key.
func DomainSize(key Key) int {
	return 1 << len(key.CorWords)
}

// IntervalKeyPair is one axis's full interval comparator: a "<" half and
// a ">" half, each itself a pair of server key shares.
type IntervalKeyPair struct {
	Less    [2]Key // side = true ("<") key pair
	Greater [2]Key // side = false (">") key pair
}

// GenInterval builds the two complementary ibDCFs needed to test interval
// membership: leftBits encodes the inclusive lower bound (tested via the
// "<" comparator) and rightBits the inclusive upper bound (tested via the
// ">" comparator). A prefix lies in [leftBits, rightBits] exactly when
// neither comparator fires.
func GenInterval(leftBits, rightBits []bool) IntervalKeyPair {
	l0, l1 := Gen(leftBits, true)
	g0, g1 := Gen(rightBits, false)
	return IntervalKeyPair{
		Less:    [2]Key{l0, l1},
		Greater: [2]Key{g0, g1},
	}
}
