package xhash

import "math/big"

// This file adapts ParallaxProtocol-parallax's original consensus/xhash/
// asert.go (a BCH aserti3-2d port, fixed-point 16.16 radix, validated
// against BCHN's published run01..run12 test vectors) into a standalone
// cubic-factor helper. It is not on the public retargeting path — the
// spec's exact-fraction cubic in asert.go (cubicNumeratorTerm/
// cubicDenominatorTerm) is what NextWorkRequired actually uses — but it
// is kept and exercised in legacy_bch_asert_test.go as an independent
// numerical cross-check: the two cubics approximate the same 2^x curve
// through different encodings (fixed-point vs. exact fraction) and must
// agree to within the ~1.3% worst-case error both describe.

// BCH aserti3-2d fixed-point parameters: a 16-bit fractional radix and
// the cubic polynomial coefficients from the BCH specification.
const (
	asertRadix = int64(1 << 16) // fixed-point radix (2^16)
	asertPolyA = uint64(195766423245049)
	asertPolyB = uint64(971821376)
	asertPolyC = uint64(5127)
)

// bchCubicFactor16_16 evaluates the BCH fixed-point cubic approximation
// of 2^x at x = x16/2^16, x16 ∈ [0, 2^16), returning the result as a
// 16.16 fixed-point multiplier (so 2^16 itself encodes a factor of 1.0).
// This is the unmodified polynomial core of the teacher's ASERTNextTarget.
func bchCubicFactor16_16(x16 int64) uint64 {
	ux := uint64(x16)
	x2 := ux * ux
	x3 := x2 * ux

	poly := asertPolyA*ux + asertPolyB*x2 + asertPolyC*x3 + (uint64(1) << 47)
	return (poly >> 48) + uint64(asertRadix)
}

// two256m1 is 2^256 - 1, the BCH reference's maximum representable
// target (used only by the cross-check helpers below).
var two256m1 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// difficultyToTarget and targetToDifficulty are the teacher's original
// helpers (unchanged), kept because legacy_bch_asert_test.go exercises
// them directly to confirm the BCH cross-check path's own round-trip
// invariant still holds after adaptation.
func difficultyToTarget(d *big.Int) *big.Int {
	if d.Sign() <= 0 {
		return big.NewInt(1)
	}
	t := new(big.Int).Div(new(big.Int).Set(two256m1), d)
	if t.Sign() <= 0 {
		t.SetInt64(1)
	}
	return t
}

func targetToDifficulty(t *big.Int) *big.Int {
	if t.Sign() <= 0 {
		return big.NewInt(1)
	}
	d := new(big.Int).Div(new(big.Int).Set(two256m1), t)
	if d.Sign() <= 0 {
		d.SetInt64(1)
	}
	return d
}
