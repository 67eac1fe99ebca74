package xhash

import "github.com/holiman/uint256"

// CompactToU256 decodes a 32-bit compact ("nBits") encoding into its
// 256-bit value, following §4.1: high byte is the base-256 exponent E,
// low three bytes the 24-bit mantissa M. The decoded magnitude is
// M * 256^(E-3); the sign bit of the mantissa is recognized only to flag
// an invalid negative target, never folded into the returned value.
//
// negative is true iff the mantissa's sign bit is set and the mantissa is
// non-zero. overflow is true iff the represented value cannot fit in 256
// bits. Callers must treat negative || overflow || value.IsZero() as an
// invalid decode (spec §4.1, §7).
func CompactToU256(bits uint32) (value *uint256.Int, negative bool, overflow bool) {
	exponent := bits >> 24
	mantissa := bits & 0x007fffff
	negative = bits&0x00800000 != 0 && mantissa != 0

	value = new(uint256.Int)
	switch {
	case exponent <= 3:
		value.SetUint64(uint64(mantissa) >> (8 * (3 - exponent)))
	default:
		value.SetUint64(uint64(mantissa))
		shifted, of := shiftLeftOverflow(value, uint(8*(exponent-3)))
		*value = shifted
		overflow = of
	}
	return value, negative, overflow
}

// shiftLeftOverflow left-shifts x by n bits and reports whether any
// significant bit was shifted out past bit 255.
func shiftLeftOverflow(x *uint256.Int, n uint) (uint256.Int, bool) {
	if n == 0 {
		return *x, false
	}
	if n >= 256 {
		return uint256.Int{}, !x.IsZero()
	}
	shifted := new(uint256.Int).Lsh(x, n)
	// recover the original by shifting back right; if it doesn't match,
	// bits were lost off the top.
	back := new(uint256.Int).Rsh(shifted, n)
	return *shifted, back.Cmp(x) != 0
}

// U256ToCompact encodes v into the minimal-exponent compact form (§4.1).
// If setting the mantissa's MSB would flag the value as negative, the
// exponent is promoted by one and the mantissa shifted right to
// compensate.
func U256ToCompact(v *uint256.Int) uint32 {
	if v.IsZero() {
		return 0
	}
	size := uint((v.BitLen() + 7) / 8)

	var mantissa uint32
	if size <= 3 {
		mantissa = uint32(v.Uint64()) << (8 * (3 - size))
	} else {
		tmp := new(uint256.Int).Rsh(v, 8*(size-3))
		mantissa = uint32(tmp.Uint64())
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}

	return uint32(size)<<24 | mantissa&0x007fffff
}

// U256ToCompactRounded behaves like U256ToCompact, but if the bits
// truncated by the encoding amount to half or more of one mantissa LSB,
// the mantissa is incremented by one ULP before packing; a mantissa
// overflow from the increment renormalizes by shifting right and bumping
// the exponent, exactly mirroring U256ToCompact's own overflow handling
// (§4.1). Used only by WTEMA and ASERT results, which need the tighter
// target this produces.
func U256ToCompactRounded(v *uint256.Int) uint32 {
	if v.IsZero() {
		return 0
	}
	size := uint((v.BitLen() + 7) / 8)

	var mantissa uint64
	var roundUp bool
	if size <= 3 {
		mantissa = v.Uint64() << (8 * (3 - size))
	} else {
		shift := 8 * (size - 3)
		tmp := new(uint256.Int).Rsh(v, shift)
		mantissa = tmp.Uint64()

		// Half-ULP-or-more of the discarded low bits rounds up.
		discardMask := new(uint256.Int).Lsh(uint256.NewInt(1), shift)
		discardMask.Sub(discardMask, uint256.NewInt(1))
		discarded := new(uint256.Int).And(v, discardMask)
		half := new(uint256.Int).Lsh(uint256.NewInt(1), shift-1)
		roundUp = discarded.Cmp(half) >= 0
	}

	if roundUp {
		mantissa++
	}
	if mantissa > 0x00ffffff || mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}

	return uint32(size)<<24 | uint32(mantissa)&0x007fffff
}
