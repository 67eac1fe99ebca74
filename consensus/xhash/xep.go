package xhash

import "github.com/holiman/uint256"

// NextWorkRequiredLegacy implements the legacy Bitcoin-style epoch
// retarget ("XEP"), applied while the chain operates in pre-hybrid
// SHA-256-only mode (spec §4.4). Grounded on copernet-copernicus's
// getNextEDAWorkRequired / calculateNextWorkRequired and on this same
// project's earlier CalcNakamotoDifficulty (rewrewby-parallax__
// difficulty.go), which clamps and scales the same way under a different
// name.
func NextWorkRequiredLegacy(last *BlockIndex, candidateTime int64, params *Params) uint32 {
	if last == nil {
		return U256ToCompact(params.PowLimit[AlgoPOWSHA256])
	}
	if params.PowNoRetargeting {
		return last.Bits
	}

	interval := params.DifficultyAdjustmentInterval()
	nextHeight := int64(last.Height) + 1

	if interval == 0 || nextHeight%interval != 0 {
		if !params.PowAllowMinDifficultyBlocks {
			return last.Bits
		}
		if candidateTime > last.Time+2*legacyPowSpacingSeconds {
			return U256ToCompact(params.PowLimit[AlgoPOWSHA256])
		}
		powLimitBits := U256ToCompact(params.PowLimit[AlgoPOWSHA256])
		cur := last
		for cur.Prev != nil && int64(cur.Height)%interval != 0 && cur.Bits == powLimitBits {
			cur = cur.Prev
		}
		return cur.Bits
	}

	first := last.Ancestor(uint32(int64(last.Height) - (interval - 1)))
	if first == nil {
		return U256ToCompact(params.PowLimit[AlgoPOWSHA256])
	}
	return calculateNextWork(last, first.Time, params)
}

// calculateNextWork scales the parent's target by the ratio of actual to
// nominal epoch timespan, clamped to [timespan/4, timespan*4], and caps
// the result at pow_limit (spec §4.4).
func calculateNextWork(last *BlockIndex, firstTime int64, params *Params) uint32 {
	timespan := int64(params.PowTargetTimespan)
	minSpan := timespan / 4
	maxSpan := timespan * 4

	actual := last.Time - firstTime
	if actual < minSpan {
		actual = minSpan
	} else if actual > maxSpan {
		actual = maxSpan
	}

	lastTarget, negative, overflow := CompactToU256(last.Bits)
	if negative || overflow || lastTarget.IsZero() {
		return U256ToCompact(params.PowLimit[AlgoPOWSHA256])
	}

	newTarget := new(uint256.Int).Mul(lastTarget, uint256.NewInt(uint64(actual)))
	newTarget.Div(newTarget, uint256.NewInt(uint64(timespan)))

	if newTarget.Cmp(params.PowLimit[AlgoPOWSHA256]) > 0 || newTarget.IsZero() {
		return U256ToCompact(params.PowLimit[AlgoPOWSHA256])
	}
	return U256ToCompact(newTarget)
}
