package xhash

// NextWorkRequired is the primary public dispatch entrypoint (spec §4.8):
// genesis/no-retarget shortcut, the testnet min-difficulty override, then
// a height-gated choice between WTEMA (before a channel's
// asert_start_height) and averaged-target ASERT (at or after it).
//
// last is the chain tip the candidate header extends; candidateVersion/
// candidateTime are the candidate header's version word (for algorithm/
// stake-flag decoding) and timestamp. Grounded on copernet-copernicus's
// GetNextWorkRequired top-level dispatch shape (nil-parent check,
// no-retarget check, min-difficulty branch, then delegate).
func NextWorkRequired(last *BlockIndex, candidateVersion int32, candidateTime int64, params *Params) uint32 {
	algo := AlgoOf(candidateVersion)
	isPos := IsPOS(candidateVersion)

	if last == nil || params.PowNoRetargeting {
		return U256ToCompact(channelLimit(algo, isPos, params))
	}

	if params.PowAllowMinDifficultyBlocks && algo != AlgoNone {
		if bits, handled := minDifficultyOverride(last, algo, candidateTime, params); handled {
			return bits
		}
	}

	// height is the candidate's prospective height, not last's own height
	// (ground truth computes nHeight = pindexLast->nHeight + 1 before
	// gating the WTEMA/ASERT transition on it).
	height := int64(last.Height) + 1
	if height >= params.AsertStartHeight {
		return AveragedTargetASERT(last, algo, isPos, params)
	}
	return Wtema(last, algo, isPos, params)
}

// minDifficultyOverride implements the testnet min-difficulty special
// case (spec §4.8, §6): if the candidate arrives more than 30 minutes
// after the channel's last block and that block is past height 10, the
// min-difficulty sentinel is allowed; if the channel's last block is
// itself a min-difficulty block, the search walks back to the most
// recent block that is neither off-algo nor min-difficulty, then looks
// up that block's own last-of-algo predecessor. That further predecessor
// must itself be past height 10 or the whole branch falls through to the
// normal dispatch; its bits are returned unless it is itself a
// min-difficulty block, in which case the originally found block's bits
// are returned instead. handled is false when no condition applies,
// signaling the caller to fall through to the normal WTEMA/ASERT
// dispatch.
func minDifficultyOverride(last *BlockIndex, algo Algo, candidateTime int64, params *Params) (bits uint32, handled bool) {
	predecessor := LastOfAlgo(last, algo)
	sentinel := bitsSentinel(params.PowLimit[algo])

	if candidateTime > predecessor.Time+30*60 && predecessor.Height > 10 {
		return sentinel, true
	}

	if predecessor.Bits == sentinel {
		cur := predecessor
		for cur.Prev != nil && (AlgoOf(cur.Version) != algo || cur.Bits == sentinel) {
			cur = cur.Prev
		}
		if cur.Prev == nil {
			return 0, false
		}
		further := LastOfAlgo(cur.Prev, algo)
		if further.Height <= 10 {
			return 0, false
		}
		if further.Bits != sentinel {
			return further.Bits, true
		}
		return cur.Bits, true
	}

	return 0, false
}
