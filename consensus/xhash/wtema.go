package xhash

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Wtema implements the weighted-target EMA fallback used before a
// channel's asert_start_height is reached (spec §4.5). last is the chain
// tip the candidate extends; algo/isPos select the channel, whose latest
// block is found by walking back from last.
func Wtema(last *BlockIndex, algo Algo, isPos bool, params *Params) uint32 {
	limit := channelLimit(algo, isPos, params)

	prev := lastOfChannel(last, algo, isPos)
	if prev.Prev == nil {
		// Fewer than two in-channel predecessors exist.
		return U256ToCompact(limit)
	}
	prevPrev := lastOfChannel(prev.Prev, algo, isPos)
	if prevPrev.Prev == nil {
		// Fewer than two in-channel predecessors exist.
		return U256ToCompact(limit)
	}

	prevTarget, negative, overflow := CompactToU256(prev.Bits)
	if negative || overflow || prevTarget.IsZero() {
		return U256ToCompact(limit)
	}

	actualSpacing := prev.Time - prevPrev.Time
	targetSpacing := targetSpacingFor(algo, isPos, params)

	n := int64(params.PowTargetTimespan) / (targetSpacing * 2)
	if n <= 0 {
		n = 1
	}

	numerator := (n-1)*targetSpacing + actualSpacing
	if numerator < 1 {
		numerator = 1
	}
	denominator := n * targetSpacing

	// new = U512(prev_target) * numerator / denominator, computed in that
	// exact order with a wide intermediate (spec §4.5, §9: no compound
	// multiply-assign, 512-bit-or-wider product before the divide).
	wide := new(big.Int).Mul(prevTarget.ToBig(), big.NewInt(numerator))
	wide.Div(wide, big.NewInt(denominator))

	if wide.Sign() <= 0 || wide.BitLen() > 256 {
		return U256ToCompact(limit)
	}
	newTarget := new(uint256.Int).SetBytes(wide.Bytes())
	if newTarget.Cmp(limit) > 0 || newTarget.IsZero() {
		return U256ToCompact(limit)
	}
	return U256ToCompactRounded(newTarget)
}

// channelLimit resolves the pow_limit entry for a channel, folding
// AlgoNone to the PoS limit when isPos is set and to the SHA-256 limit
// otherwise.
func channelLimit(algo Algo, isPos bool, params *Params) *uint256.Int {
	if algo == AlgoNone {
		if isPos {
			return params.PowLimit[AlgoPOS]
		}
		return params.PowLimit[AlgoPOWSHA256]
	}
	return params.PowLimit[algo]
}
